package store

// Entry is one recorded shell command.
type Entry struct {
	// ID is assigned by the index on insert. IDs increase with insertion
	// order and are never reused; gaps only appear when rows are removed
	// outside of scribe.
	ID int64

	// Command is the raw command text and may span several lines.
	Command string

	// Timestamp is the capture time in Unix seconds.
	Timestamp int64
}

// Direction is the way a Cursor walks through history.
type Direction int

const (
	// Older walks toward smaller IDs (back in time).
	Older Direction = iota
	// Newer walks toward larger IDs.
	Newer
)

func (d Direction) String() string {
	switch d {
	case Older:
		return "older"
	case Newer:
		return "newer"
	default:
		return "unknown"
	}
}

// Cursor is the navigation state of an incremental search session.
// It is a plain value: every navigation step takes a Cursor and returns a
// new one, and a Cursor never refers back to the store it was used with.
//
// The zero value is an unanchored Older cursor, which starts at the newest
// entry.
type Cursor struct {
	Direction Direction

	id       int64
	anchored bool
}

// NewCursor returns an unanchored cursor walking in direction d.
func NewCursor(d Direction) Cursor {
	return Cursor{Direction: d}
}

// ID returns the anchor ID and whether the cursor is anchored at all.
func (c Cursor) ID() (int64, bool) {
	return c.id, c.anchored
}

// At returns a copy of c anchored at id.
func (c Cursor) At(id int64) Cursor {
	c.id = id
	c.anchored = true
	return c
}

// Toward returns a copy of c walking in direction d.
func (c Cursor) Toward(d Direction) Cursor {
	c.Direction = d
	return c
}
