// Package store defines scribe's persistence layer: the queryable history
// index, and the History handle that keeps the archive log and the index
// in step.
package store

import (
	"context"
)

// Index is the queryable side of the history.
// Implementations hold one row per command and assign IDs on insert.
type Index interface {
	// Insert stores a new command and returns it with its assigned ID.
	Insert(ctx context.Context, command string, timestamp int64) (Entry, error)

	// Import stores many entries at once, in order. Entry IDs are ignored
	// and assigned by the index. Returns the number of rows written.
	Import(ctx context.Context, entries []Entry) (int, error)

	// Find returns the single entry closest to the cursor that contains
	// query as a case-sensitive substring, or nil when nothing matches.
	//
	// For Older cursors this is the largest ID <= the anchor, for Newer
	// cursors the smallest ID >= the anchor. Unanchored cursors start
	// from the newest (Older) or oldest (Newer) entry.
	Find(ctx context.Context, query string, cursor Cursor) (*Entry, error)

	// Matches returns up to limit entries containing query, newest first.
	// If limit is 0, all matching entries are returned.
	Matches(ctx context.Context, query string, limit int) ([]Entry, error)

	// Count returns the number of rows in the index.
	Count(ctx context.Context) (int, error)

	// Reset removes every row. IDs handed out before the reset are not
	// reused afterwards.
	Reset(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
