package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/yiblet/scribe/internal/store"
)

// zshMeta is the byte zsh puts in front of special bytes in its history
// file. The following byte is XORed with 32.
const zshMeta = 0x83

// maxLine bounds a single history line. Shell histories can hold very long
// pasted commands.
const maxLine = 1 << 20

// ReadHistoryFile parses the shell's history file at path. A missing file is
// not an error: it is logged and yields no entries. Entries without a
// timestamp of their own get now.
func ReadHistoryFile(s Shell, path string, now int64, logger *slog.Logger) ([]store.Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("shell history file not found, nothing to import", "shell", s, "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	entries, err := ReadHistory(s, f, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	logger.Info("read shell history", "shell", s, "path", path, "entries", len(entries))
	return entries, nil
}

// ReadHistory parses history in the shell's file format, oldest first.
func ReadHistory(s Shell, r io.Reader, now int64) ([]store.Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	switch s {
	case Zsh:
		return readZsh(scanner, now)
	case Bash:
		return readBash(scanner, now)
	case Fish:
		return readFish(scanner, now)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, s)
	}
}

// readZsh handles both the plain format and EXTENDED_HISTORY lines
// (": <start>:<elapsed>;<command>"). A line ending in a backslash continues
// the command on the next line.
func readZsh(scanner *bufio.Scanner, now int64) ([]store.Entry, error) {
	var entries []store.Entry
	var pending strings.Builder
	var ts int64
	continuing := false

	for scanner.Scan() {
		line := unmetafy(scanner.Text())

		if !continuing {
			ts = now
			if start, command, ok := parseExtended(line); ok {
				ts, line = start, command
			}
		}

		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			pending.WriteByte('\n')
			continuing = true
			continue
		}

		pending.WriteString(line)
		if command := pending.String(); command != "" {
			entries = append(entries, store.Entry{Command: command, Timestamp: ts})
		}
		pending.Reset()
		continuing = false
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if command := strings.TrimSuffix(pending.String(), "\n"); command != "" {
		entries = append(entries, store.Entry{Command: command, Timestamp: ts})
	}
	return entries, nil
}

func parseExtended(line string) (int64, string, bool) {
	rest, ok := strings.CutPrefix(line, ": ")
	if !ok {
		return 0, "", false
	}
	meta, command, ok := strings.Cut(rest, ";")
	if !ok {
		return 0, "", false
	}
	start, _, _ := strings.Cut(meta, ":")
	ts, err := strconv.ParseInt(strings.TrimSpace(start), 10, 64)
	if err != nil {
		return 0, "", false
	}
	return ts, command, true
}

func unmetafy(s string) string {
	if strings.IndexByte(s, zshMeta) < 0 {
		return s
	}

	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == zshMeta && i+1 < len(s) {
			i++
			b = append(b, s[i]^32)
			continue
		}
		b = append(b, s[i])
	}
	return string(b)
}

// readBash reads one command per line. With HISTTIMEFORMAT set bash writes
// a "#<unix time>" line before each command.
func readBash(scanner *bufio.Scanner, now int64) ([]store.Entry, error) {
	var entries []store.Entry
	ts := now

	for scanner.Scan() {
		line := scanner.Text()
		if stamp, ok := strings.CutPrefix(line, "#"); ok {
			if parsed, err := strconv.ParseInt(stamp, 10, 64); err == nil {
				ts = parsed
				continue
			}
		}
		if line == "" {
			continue
		}
		entries = append(entries, store.Entry{Command: line, Timestamp: ts})
		ts = now
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// readFish reads fish's YAML-like history, a sequence of "- cmd: <command>"
// items each followed by an indented "when: <unix seconds>" line and an
// optional paths list. It is not valid YAML (commands are not quoted), so it
// is parsed by line.
func readFish(scanner *bufio.Scanner, now int64) ([]store.Entry, error) {
	var entries []store.Entry

	for scanner.Scan() {
		line := scanner.Text()

		if command, ok := strings.CutPrefix(line, "- cmd: "); ok {
			entries = append(entries, store.Entry{Command: unescapeFish(command), Timestamp: now})
			continue
		}

		if when, ok := strings.CutPrefix(strings.TrimSpace(line), "when: "); ok && len(entries) > 0 {
			ts, err := strconv.ParseInt(strings.TrimSpace(when), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid fish timestamp %q: %w", when, err)
			}
			entries[len(entries)-1].Timestamp = ts
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// unescapeFish undoes fish's escaping of backslashes and newlines.
func unescapeFish(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
