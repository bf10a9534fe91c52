// Package term is the terminal capability the interactive search draws on:
// size, cursor position, cursor movement, clearing, writing and reading one
// key at a time.
package term

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Terminal is everything the renderer needs from a terminal. Rows and
// columns are 1-based.
type Terminal interface {
	// Size returns the current window size.
	Size() (rows, cols int, err error)
	// CursorPosition returns where the cursor is right now.
	CursorPosition() (row, col int, err error)
	// MoveTo places the cursor.
	MoveTo(row, col int) error
	// ClearBelow erases from the cursor to the end of the screen.
	ClearBelow() error
	// Write outputs s at the cursor.
	Write(s string) error
	// ReadKey blocks until one key (or one pasted run of text) arrives.
	ReadKey() (tea.Key, error)
}

// TerminalError reports a failed terminal operation.
type TerminalError struct {
	Op  string
	Err error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("terminal: %s: %v", e.Op, e.Err)
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

func terminalError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Op: op, Err: err}
}
