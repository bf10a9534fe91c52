// Package clipboard defines the clipboard scribe copies selected commands
// to. Implementations live in sysboard (the system clipboard) and mockboard
// (tests).
package clipboard

import "io"

// Clipboard is a destination for copied text.
type Clipboard interface {
	// Write replaces the clipboard contents with everything read from r.
	Write(r io.Reader) error
	// IsSupported reports whether Write can work on this system.
	IsSupported() bool
}
