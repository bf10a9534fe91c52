package archive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		command := rapid.String().Draw(rt, "command")
		timestamp := rapid.Int64Range(0, 1<<40).Draw(rt, "timestamp")

		record, err := Decode(Encode(command, timestamp))
		if err != nil {
			rt.Fatalf("Decode() error = %v", err)
		}
		if record.Command != command {
			rt.Fatalf("command = %q, want %q", record.Command, command)
		}
		if record.Timestamp != timestamp {
			rt.Fatalf("timestamp = %d, want %d", record.Timestamp, timestamp)
		}
	})
}

func TestEncodeDecodeRoundTripBytes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.SliceOf(rapid.Byte()).Draw(rt, "raw")

		record, err := Decode(Encode(string(raw), 1))
		if err != nil {
			rt.Fatalf("Decode() error = %v", err)
		}
		if record.Command != string(raw) {
			rt.Fatalf("command = %q, want %q", record.Command, raw)
		}
	})
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		command   string
		timestamp int64
		want      string
	}{
		{name: "simple", command: "ls -la", timestamp: 1590000000, want: "1590000000:bHMgLWxh"},
		{name: "empty", command: "", timestamp: 100, want: "100:"},
		{name: "newline", command: "echo a\necho b", timestamp: 200, want: "200:ZWNobyBhCmVjaG8gYg=="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.command, tt.timestamp); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
			if strings.Contains(Encode(tt.command, tt.timestamp), "\n") {
				t.Error("encoded line must not contain a newline")
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "no separator", line: "1590000000"},
		{name: "bad timestamp", line: "abc:bHM="},
		{name: "bad base64", line: "1590000000:!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.line); err == nil {
				t.Errorf("Decode(%q) expected error", tt.line)
			}
		})
	}
}

func TestOpen_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LATEST")

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := log.Append("echo a", 100); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	log.Close()

	// Reopening must not write the header again.
	log, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	if err := log.Append("echo b", 200); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}

	want := "version=1,encoder=base64\n---\n100:ZWNobyBh\n200:ZWNobyBi\n"
	if string(data) != want {
		t.Errorf("archive contents = %q, want %q", string(data), want)
	}
}

func TestOpen_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "LATEST")
	if _, err := Open(path); err == nil {
		t.Error("expected error when parent directory is missing")
	}
}

func TestRead(t *testing.T) {
	input := "version=1,encoder=base64\n---\n100:ZWNobyBh\n\n200:ZWNobyBhCmVjaG8gYg==\n300:ZWNobyBhYg=="

	var records []Record
	err := Read(strings.NewReader(input), "LATEST", func(r Record) error {
		records = append(records, r)
		return nil
	})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := []Record{
		{Command: "echo a", Timestamp: 100},
		{Command: "echo a\necho b", Timestamp: 200},
		{Command: "echo ab", Timestamp: 300},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestRead_MalformedLine(t *testing.T) {
	input := "version=1,encoder=base64\n---\n100:ZWNobyBh\nnot-a-record\n"

	err := Read(strings.NewReader(input), "LATEST", func(Record) error { return nil })

	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
	if encErr.Line != 4 {
		t.Errorf("Line = %d, want 4", encErr.Line)
	}
	if encErr.File != "LATEST" {
		t.Errorf("File = %q, want LATEST", encErr.File)
	}
}

func TestRead_BadHeader(t *testing.T) {
	err := Read(strings.NewReader("version=0\n---\n"), "old", func(Record) error { return nil })

	var encErr *EncodingError
	if !errors.As(err, &encErr) || encErr.Line != 1 {
		t.Fatalf("expected EncodingError at line 1, got %v", err)
	}
}

func TestRead_CallbackError(t *testing.T) {
	stop := errors.New("stop")
	input := "version=1,encoder=base64\n---\n100:ZWNobyBh\n200:ZWNobyBi\n"

	calls := 0
	err := Read(strings.NewReader(input), "LATEST", func(Record) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("callback called %d times, want 1", calls)
	}
}
