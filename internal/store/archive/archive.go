// Package archive implements the append-only history log that backs up
// the index. Each command is stored as one line, "<unix>:<base64(command)>",
// after a two line header written when the file is first created.
package archive

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	// Header is the first line of every archive file.
	Header = "version=1,encoder=base64"
	// Separator ends the header block.
	Separator = "---"
)

// Record is one decoded archive line.
type Record struct {
	Command   string
	Timestamp int64
}

// EncodingError reports an archive line that cannot be decoded.
type EncodingError struct {
	File string
	Line int
	Err  error
}

func (e *EncodingError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("malformed archive line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed archive line in %s at line %d: %v", e.File, e.Line, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Encode returns the archive line for a command, without the trailing newline.
func Encode(command string, timestamp int64) string {
	return strconv.FormatInt(timestamp, 10) + ":" + base64.StdEncoding.EncodeToString([]byte(command))
}

// Decode parses a single archive line produced by Encode.
func Decode(line string) (Record, error) {
	ts, encoded, ok := strings.Cut(line, ":")
	if !ok {
		return Record{}, errors.New("missing ':' separator")
	}

	timestamp, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}

	command, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Record{}, fmt.Errorf("invalid base64 payload: %w", err)
	}

	return Record{Command: string(command), Timestamp: timestamp}, nil
}

// Log is an open archive file. Writes always go to the end of the file.
type Log struct {
	file *os.File
	path string
}

// Open opens the archive at path for appending, creating it with the
// header if it does not exist yet. Opening an existing archive never
// writes a second header.
func Open(path string) (*Log, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	switch {
	case err == nil:
		// Single write so concurrent readers never see half a header.
		if _, err := file.WriteString(Header + "\n" + Separator + "\n"); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write archive header: %w", err)
		}
	case errors.Is(err, os.ErrExist):
		file, err = os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open archive: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	return &Log{file: file, path: path}, nil
}

// Path returns the archive file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes one record line.
func (l *Log) Append(command string, timestamp int64) error {
	if _, err := l.file.WriteString(Encode(command, timestamp) + "\n"); err != nil {
		return fmt.Errorf("failed to append to archive: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	return l.file.Close()
}

// Read decodes every record from r, calling fn for each one in file order.
// name is only used in error messages. Blank lines are skipped.
func Read(r io.Reader, name string, fn func(Record) error) error {
	reader := bufio.NewReader(r)

	line := 0
	for {
		text, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if text == "" && err == io.EOF {
			break
		}
		line++
		text = strings.TrimRight(text, "\r\n")

		switch {
		case line == 1:
			if text != Header {
				return &EncodingError{File: name, Line: line, Err: fmt.Errorf("unexpected header %q", text)}
			}
		case line == 2:
			if text != Separator {
				return &EncodingError{File: name, Line: line, Err: fmt.Errorf("unexpected separator %q", text)}
			}
		case text == "":
		default:
			record, decodeErr := Decode(text)
			if decodeErr != nil {
				return &EncodingError{File: name, Line: line, Err: decodeErr}
			}
			if err := fn(record); err != nil {
				return err
			}
		}

		if err == io.EOF {
			break
		}
	}

	return nil
}

// ReadFile decodes every record in the archive file at path.
func ReadFile(path string, fn func(Record) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return Read(file, path, fn)
}
