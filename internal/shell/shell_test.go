package shell

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yiblet/scribe/internal/record"
	"github.com/yiblet/scribe/internal/store"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		path    string
		want    Shell
		wantErr bool
	}{
		{path: "/bin/zsh", want: Zsh},
		{path: "/usr/local/bin/fish", want: Fish},
		{path: "/bin/bash", want: Bash},
		{path: "/opt/homebrew/bin/ZSH", want: Zsh},
		{path: "/bin/tcsh", wantErr: true},
		{path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Detect(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	s, err := Parse("Fish")
	require.NoError(t, err)
	assert.Equal(t, Fish, s)

	_, err = Parse("powershell")
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestScript(t *testing.T) {
	for _, s := range []Shell{Zsh, Bash, Fish} {
		t.Run(string(s), func(t *testing.T) {
			script, err := s.Script()
			require.NoError(t, err)
			assert.Contains(t, script, "scribe record --")
			assert.Contains(t, script, "scribe search --interactive")
		})
	}

	_, err := Shell("csh").Script()
	assert.Error(t, err)
}

func TestBashScript_KeepsLeadingWhitespace(t *testing.T) {
	script, err := Bash.Script()
	require.NoError(t, err)
	require.Contains(t, script, `^\ *([0-9]+)[\*\ ]\ (.*)$`)

	// Go spelling of the hook's pattern, applied to `history 1` output
	// ("%5d%c %s" with a '*' or ' ' modified flag).
	entry := regexp.MustCompile(`^ *([0-9]+)[* ] (.*)$`)

	tests := []struct {
		line    string
		num     string
		cmd     string
		verdict record.Verdict
	}{
		{line: "   12   secret-cmd", num: "12", cmd: " secret-cmd", verdict: record.Skip},
		{line: "   13* echo hi", num: "13", cmd: "echo hi", verdict: record.Append},
		{line: "    7  echo visible", num: "7", cmd: "echo visible", verdict: record.Append},
		{line: "  140 \tls -la", num: "140", cmd: "\tls -la", verdict: record.Skip},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m := entry.FindStringSubmatch(tt.line)
			require.NotNil(t, m)
			assert.Equal(t, tt.num, m[1])
			assert.Equal(t, tt.cmd, m[2])
			assert.Equal(t, tt.verdict, record.Classify(m[2]))
		})
	}
}

func TestHistoryFile(t *testing.T) {
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	assert.Equal(t, "/home/u/.zsh_history", Zsh.HistoryFile("/home/u", getenv))
	assert.Equal(t, "/home/u/.bash_history", Bash.HistoryFile("/home/u", getenv))
	assert.Equal(t, "/home/u/.local/share/fish/fish_history", Fish.HistoryFile("/home/u", getenv))

	env["HISTFILE"] = "/tmp/hist"
	env["XDG_DATA_HOME"] = "/data"
	assert.Equal(t, "/tmp/hist", Zsh.HistoryFile("/home/u", getenv))
	assert.Equal(t, "/data/fish/fish_history", Fish.HistoryFile("/home/u", getenv))
}

func TestReadHistory_Zsh(t *testing.T) {
	input := strings.Join([]string{
		": 1590000000:0;git status",
		"ls -la",
		": 1590000100:3;for i in 1 2\\",
		"do echo $i\\",
		"done",
		": 1590000200:0;echo caf\x83\xc9",
		"",
	}, "\n")

	entries, err := ReadHistory(Zsh, strings.NewReader(input), 42)
	require.NoError(t, err)

	assert.Equal(t, []store.Entry{
		{Command: "git status", Timestamp: 1590000000},
		{Command: "ls -la", Timestamp: 42},
		{Command: "for i in 1 2\ndo echo $i\ndone", Timestamp: 1590000100},
		{Command: "echo caf\xe9", Timestamp: 1590000200},
	}, entries)
}

func TestReadHistory_Bash(t *testing.T) {
	input := "#1590000000\ngit status\nls\n\n#not-a-time\n"

	entries, err := ReadHistory(Bash, strings.NewReader(input), 42)
	require.NoError(t, err)

	assert.Equal(t, []store.Entry{
		{Command: "git status", Timestamp: 1590000000},
		{Command: "ls", Timestamp: 42},
		{Command: "#not-a-time", Timestamp: 42},
	}, entries)
}

func TestReadHistory_Fish(t *testing.T) {
	input := `- cmd: git status
  when: 1590000000
- cmd: echo a\nb
  when: 1590000100
  paths:
    - src
- cmd: ls
`

	entries, err := ReadHistory(Fish, strings.NewReader(input), 42)
	require.NoError(t, err)

	assert.Equal(t, []store.Entry{
		{Command: "git status", Timestamp: 1590000000},
		{Command: "echo a\nb", Timestamp: 1590000100},
		{Command: "ls", Timestamp: 42},
	}, entries)

	_, err = ReadHistory(Fish, strings.NewReader("- cmd: ls\n  when: soon\n"), 42)
	assert.Error(t, err)
}

func TestReadHistoryFile_Missing(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	path := filepath.Join(t.TempDir(), "nope")

	entries, err := ReadHistoryFile(Zsh, path, 42, logger)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadHistoryFile(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	path := filepath.Join(t.TempDir(), ".bash_history")
	require.NoError(t, os.WriteFile(path, []byte("make\nmake test\n"), 0600))

	entries, err := ReadHistoryFile(Bash, path, 7, logger)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
