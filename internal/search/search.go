// Package search implements incremental substring search over the history
// index: cursor navigation for the interactive prompt and a flat list of
// recent matches for batch output.
package search

import (
	"context"
	"math"

	"github.com/yiblet/scribe/internal/store"
)

// DefaultLimit is the number of results RecentMatches returns when the
// caller passes a non-positive limit.
const DefaultLimit = 20

// Source is the read side of the history the engine searches.
// *store.History and the index implementations all satisfy it.
type Source interface {
	Find(ctx context.Context, query string, cursor store.Cursor) (*store.Entry, error)
	Matches(ctx context.Context, query string, limit int) ([]store.Entry, error)
}

// Engine runs queries against a Source. It keeps no state of its own; the
// navigation state lives in the store.Cursor values passed in and out.
type Engine struct {
	src Source
}

// New returns an engine reading from src.
func New(src Source) *Engine {
	return &Engine{src: src}
}

// Next returns the first entry at or beyond cursor, in the cursor's
// direction, whose command contains query.
//
// When a match is found the returned cursor is anchored at its ID. When
// nothing matches, Next returns a nil entry and the cursor unchanged; that is
// not an error. An empty query never reaches the source.
func (e *Engine) Next(ctx context.Context, query string, cursor store.Cursor) (*store.Entry, store.Cursor, error) {
	if query == "" {
		return nil, cursor, nil
	}

	entry, err := e.src.Find(ctx, query, cursor)
	if err != nil {
		return nil, cursor, err
	}
	if entry == nil {
		return nil, cursor, nil
	}

	return entry, cursor.At(entry.ID), nil
}

// Peek is Next. It names the first half of the peek-then-advance protocol:
// Peek shows the match under the cursor without moving past it, Advance steps
// beyond it.
func (e *Engine) Peek(ctx context.Context, query string, cursor store.Cursor) (*store.Entry, store.Cursor, error) {
	return e.Next(ctx, query, cursor)
}

// Advance returns cursor pointed in direction d and, if it is anchored,
// stepped one ID past its anchor so the next Peek skips the current match.
// The step saturates at the int64 bounds. An unanchored cursor only changes
// direction.
func Advance(cursor store.Cursor, d store.Direction) store.Cursor {
	cursor = cursor.Toward(d)

	id, ok := cursor.ID()
	if !ok {
		return cursor
	}

	switch d {
	case store.Older:
		if id > math.MinInt64 {
			id--
		}
	case store.Newer:
		if id < math.MaxInt64 {
			id++
		}
	}
	return cursor.At(id)
}

// RecentMatches returns up to limit commands containing query, most recent
// first. A non-positive limit means DefaultLimit. An empty query returns
// nothing without reaching the source.
func (e *Engine) RecentMatches(ctx context.Context, query string, limit int) ([]string, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	entries, err := e.src.Matches(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	commands := make([]string, 0, len(entries))
	for _, entry := range entries {
		commands = append(commands, entry.Command)
	}
	return commands, nil
}
