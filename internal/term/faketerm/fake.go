// Package faketerm provides a scripted term.Terminal for tests.
package faketerm

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yiblet/scribe/internal/term"
)

// Terminal replays a fixed list of keys and records everything drawn.
// Each ClearBelow starts a new frame.
type Terminal struct {
	mu sync.Mutex

	rows, cols int
	row, col   int
	keys       []tea.Key
	read       int

	frames []string
	moves  [][2]int

	// AfterKey, if set, runs after the n-th key (0-based) is handed out.
	// Tests use it to resize the window mid-session.
	AfterKey func(n int, t *Terminal)

	// SizeErr and PositionErr make the matching calls fail.
	SizeErr     error
	PositionErr error
}

var _ term.Terminal = (*Terminal)(nil)

// New returns a rows x cols terminal with the cursor at (row, col) that
// will return keys in order and then io.EOF.
func New(rows, cols, row, col int, keys ...tea.Key) *Terminal {
	return &Terminal{
		rows: rows,
		cols: cols,
		row:  row,
		col:  col,
		keys: keys,
	}
}

// Resize changes the window size reported by Size.
func (t *Terminal) Resize(rows, cols int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows, t.cols = rows, cols
}

func (t *Terminal) Size() (int, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.SizeErr != nil {
		return 0, 0, &term.TerminalError{Op: "size", Err: t.SizeErr}
	}
	return t.rows, t.cols, nil
}

func (t *Terminal) CursorPosition() (int, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.PositionErr != nil {
		return 0, 0, &term.TerminalError{Op: "cursor position", Err: t.PositionErr}
	}
	return t.row, t.col, nil
}

func (t *Terminal) MoveTo(row, col int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.row, t.col = row, col
	t.moves = append(t.moves, [2]int{row, col})
	return nil
}

func (t *Terminal) ClearBelow() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, "")
	return nil
}

func (t *Terminal) Write(s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.frames) == 0 {
		t.frames = append(t.frames, "")
	}
	t.frames[len(t.frames)-1] += s
	return nil
}

func (t *Terminal) ReadKey() (tea.Key, error) {
	t.mu.Lock()
	if t.read >= len(t.keys) {
		t.mu.Unlock()
		return tea.Key{}, &term.TerminalError{Op: "read key", Err: io.EOF}
	}
	n := t.read
	key := t.keys[n]
	t.read++
	hook := t.AfterKey
	t.mu.Unlock()

	if hook != nil {
		hook(n, t)
	}
	return key, nil
}

// Frames returns the text drawn after each ClearBelow, in order.
func (t *Terminal) Frames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.frames...)
}

// LastFrame returns the most recent frame, or "" if nothing was drawn.
func (t *Terminal) LastFrame() string {
	frames := t.Frames()
	if len(frames) == 0 {
		return ""
	}
	return frames[len(frames)-1]
}

// Moves returns every MoveTo target as {row, col}.
func (t *Terminal) Moves() [][2]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][2]int(nil), t.moves...)
}

// KeysRead returns how many keys were handed out.
func (t *Terminal) KeysRead() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.read
}

// Runes is a helper that builds a typed-text key.
func Runes(s string) tea.Key {
	return tea.Key{Type: tea.KeyRunes, Runes: []rune(s)}
}

// Key is a helper that builds a special key.
func Key(t tea.KeyType) tea.Key {
	return tea.Key{Type: t}
}
