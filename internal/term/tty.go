package term

import (
	"bufio"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// DevTTY is the controlling terminal. Using it instead of stdin/stdout
// keeps the interactive prompt working while stdout is captured by the
// shell hook.
const DevTTY = "/dev/tty"

// TTY is a Terminal over a real terminal device in raw mode.
type TTY struct {
	file  *os.File
	fd    int
	state *term.State

	out     *bufio.Writer
	in      *decoder
	pending []tea.Key
}

var _ Terminal = (*TTY)(nil)

// Open opens /dev/tty and switches it to raw mode. Close restores it.
func Open() (*TTY, error) {
	file, err := os.OpenFile(DevTTY, os.O_RDWR, 0)
	if err != nil {
		return nil, terminalError("open", err)
	}
	return NewTTY(file)
}

// NewTTY puts file, which must be a terminal, into raw mode.
func NewTTY(file *os.File) (*TTY, error) {
	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		file.Close()
		return nil, terminalError("open", fmt.Errorf("%s is not a terminal", file.Name()))
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		file.Close()
		return nil, terminalError("raw mode", err)
	}

	return &TTY{
		file:  file,
		fd:    fd,
		state: state,
		out:   bufio.NewWriter(file),
		in:    newDecoder(bufio.NewReader(file)),
	}, nil
}

// File returns the terminal device, for color profile detection.
func (t *TTY) File() *os.File {
	return t.file
}

// Size returns the window size of the terminal.
func (t *TTY) Size() (int, int, error) {
	cols, rows, err := term.GetSize(t.fd)
	if err != nil {
		return 0, 0, terminalError("size", err)
	}
	return rows, cols, nil
}

// CursorPosition asks the terminal where the cursor is (DSR 6) and waits for
// the report. Keys typed while waiting are kept for ReadKey.
func (t *TTY) CursorPosition() (int, int, error) {
	if err := t.Write(ansi.RequestCursorPositionReport); err != nil {
		return 0, 0, err
	}
	if err := t.flush(); err != nil {
		return 0, 0, err
	}

	for {
		ev, err := t.in.next()
		if err != nil {
			return 0, 0, terminalError("cursor position", err)
		}
		if ev.isReport {
			return ev.row, ev.col, nil
		}
		t.pending = append(t.pending, ev.key)
	}
}

// MoveTo places the cursor at row, col.
func (t *TTY) MoveTo(row, col int) error {
	return t.Write(ansi.CursorPosition(col, row))
}

// ClearBelow erases from the cursor to the end of the screen.
func (t *TTY) ClearBelow() error {
	return t.Write(ansi.EraseScreenBelow)
}

// Write buffers s. Output is flushed before every read.
func (t *TTY) Write(s string) error {
	if _, err := t.out.WriteString(s); err != nil {
		return terminalError("write", err)
	}
	return nil
}

// ReadKey flushes pending output and blocks for the next key.
func (t *TTY) ReadKey() (tea.Key, error) {
	if err := t.flush(); err != nil {
		return tea.Key{}, err
	}

	if len(t.pending) > 0 {
		key := t.pending[0]
		t.pending = t.pending[1:]
		return key, nil
	}

	for {
		ev, err := t.in.next()
		if err != nil {
			return tea.Key{}, terminalError("read key", err)
		}
		// A late position report is not a key.
		if !ev.isReport {
			return ev.key, nil
		}
	}
}

func (t *TTY) flush() error {
	return terminalError("flush", t.out.Flush())
}

// Close flushes output, restores the saved terminal mode and closes the
// device.
func (t *TTY) Close() error {
	flushErr := t.out.Flush()
	restoreErr := term.Restore(t.fd, t.state)
	closeErr := t.file.Close()

	switch {
	case restoreErr != nil:
		return terminalError("restore", restoreErr)
	case flushErr != nil:
		return terminalError("flush", flushErr)
	default:
		return terminalError("close", closeErr)
	}
}
