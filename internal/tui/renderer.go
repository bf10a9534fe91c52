// Package tui draws the interactive incremental search prompt directly on
// the terminal, below the shell's own prompt, without taking over the
// screen.
package tui

import (
	"context"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/yiblet/scribe/internal/search"
	"github.com/yiblet/scribe/internal/store"
	"github.com/yiblet/scribe/internal/term"
)

const (
	// DefaultPrompt is drawn in front of the query.
	DefaultPrompt = "(scribe): "
	// DefaultMatchWidth is the number of cells of a match shown before it is
	// cut off with an ellipsis.
	DefaultMatchWidth = 500

	marker      = "~ "
	placeholder = "<no match>"
	ellipsis    = "…"
)

// Options configures a Renderer. Zero values select the defaults.
type Options struct {
	Prompt     string
	MatchWidth int
	Styles     *Styles
	Logger     *slog.Logger
}

// Renderer runs one interactive search session on a terminal.
type Renderer struct {
	term   term.Terminal
	engine *search.Engine

	prompt     string
	matchWidth int
	styles     Styles
	logger     *slog.Logger
}

// NewRenderer returns a renderer drawing on t and querying engine.
func NewRenderer(t term.Terminal, engine *search.Engine, opts Options) *Renderer {
	r := &Renderer{
		term:       t,
		engine:     engine,
		prompt:     opts.Prompt,
		matchWidth: opts.MatchWidth,
		logger:     opts.Logger,
	}
	if r.prompt == "" {
		r.prompt = DefaultPrompt
	}
	if r.matchWidth <= 0 {
		r.matchWidth = DefaultMatchWidth
	}
	if opts.Styles != nil {
		r.styles = *opts.Styles
	} else {
		r.styles = PlainStyles()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// session is the state of one Run.
type session struct {
	query     string
	cursor    store.Cursor
	selection string

	anchorRow, anchorCol int
}

// Run draws the prompt at the current cursor position and handles keys until
// the user accepts or cancels. It returns the selected command and whether
// there was one. The block is erased before Run returns, on every path.
func (r *Renderer) Run(ctx context.Context, initialQuery string) (selection string, ok bool, err error) {
	row, col, err := r.term.CursorPosition()
	if err != nil {
		return "", false, err
	}

	s := &session{
		query:     initialQuery,
		cursor:    store.NewCursor(store.Older),
		anchorRow: row,
		anchorCol: col,
	}

	defer func() {
		clearErr := r.clear(s)
		if err == nil && clearErr != nil {
			selection, ok, err = "", false, clearErr
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		if err := r.draw(ctx, s); err != nil {
			return "", false, err
		}

		key, err := r.term.ReadKey()
		if err != nil {
			return "", false, err
		}

		if done, accept := r.handleKey(s, key); done {
			if !accept || s.selection == "" {
				return "", false, nil
			}
			return s.selection, true, nil
		}
	}
}

// draw renders one frame: prompt and query, then the match under the cursor,
// then parks the terminal cursor at the end of the query.
func (r *Renderer) draw(ctx context.Context, s *session) error {
	rows, cols, err := r.term.Size()
	if err != nil {
		return err
	}

	if err := r.term.MoveTo(s.anchorRow, s.anchorCol); err != nil {
		return err
	}
	if err := r.term.ClearBelow(); err != nil {
		return err
	}

	promptLine := r.prompt + s.query
	if err := r.term.Write(r.styles.Prompt.Render(r.prompt) + s.query + "\r\n"); err != nil {
		return err
	}

	entry, cursor, err := r.engine.Peek(ctx, s.query, s.cursor)
	if err != nil {
		return err
	}
	s.cursor = cursor

	var shown, styled string
	if entry != nil {
		s.selection = entry.Command
		shown = truncate(entry.Command, r.matchWidth)
		styled = strings.ReplaceAll(shown, "\n", "\r\n")
	} else {
		s.selection = ""
		shown = placeholder
		styled = r.styles.Placeholder.Render(placeholder)
	}
	if err := r.term.Write(r.styles.Marker.Render(marker) + styled); err != nil {
		return err
	}

	// Drawing past the last row scrolls the screen; follow it.
	height := BlockHeight(s.anchorCol, promptLine, marker+shown, cols)
	if adjusted := AdjustAnchor(s.anchorRow, height, rows); adjusted != s.anchorRow {
		r.logger.Debug("anchor moved", "from", s.anchorRow, "to", adjusted, "height", height, "rows", rows)
		s.anchorRow = adjusted
	}

	row, col := ParkPosition(s.anchorRow, s.anchorCol, ansi.StringWidth(promptLine), cols)
	return r.term.MoveTo(row, col)
}

// handleKey applies key to the session. done reports that the session is
// over; accept whether the current match should be returned.
func (r *Renderer) handleKey(s *session, key tea.Key) (done, accept bool) {
	switch key.Type {
	case tea.KeyEnter, tea.KeyEsc, tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd:
		return true, true
	case tea.KeyCtrlC, tea.KeyCtrlD:
		return true, false
	case tea.KeyUp, tea.KeyPgUp:
		s.cursor = search.Advance(s.cursor, store.Older)
	case tea.KeyDown, tea.KeyPgDown:
		s.cursor = search.Advance(s.cursor, store.Newer)
	case tea.KeyCtrlW, tea.KeyCtrlU:
		s.query = ""
	case tea.KeyBackspace:
		if runes := []rune(s.query); len(runes) > 0 {
			s.query = string(runes[:len(runes)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		if key.Alt {
			r.logger.Debug("ignoring key", "key", key.String())
			break
		}
		s.query += string(key.Runes)
	default:
		r.logger.Debug("ignoring key", "key", key.String())
	}
	return false, false
}

// truncate cuts s to width cells, ending in an ellipsis when anything was
// cut.
func truncate(s string, width int) string {
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, ellipsis)
}

// clear erases the block and leaves the cursor where the block started.
func (r *Renderer) clear(s *session) error {
	if err := r.term.MoveTo(s.anchorRow, s.anchorCol); err != nil {
		return err
	}
	return r.term.ClearBelow()
}
