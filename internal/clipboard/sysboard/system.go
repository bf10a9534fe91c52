// Package sysboard implements the system clipboard. On macOS and Windows it
// writes through golang.design/x/clipboard; elsewhere through
// github.com/atotto/clipboard, which hands the text to xclip, xsel or
// wl-copy so it outlives the scribe process.
package sysboard

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/atotto/clipboard"
	nativeclip "golang.design/x/clipboard"
)

var (
	nativeOnce sync.Once
	nativeErr  error
)

// SystemClipboard implements Clipboard using the system clipboard
type SystemClipboard struct{}

// New creates a new SystemClipboard instance
func New() *SystemClipboard {
	return &SystemClipboard{}
}

// IsSupported returns true if clipboard operations are supported on this system
func (s *SystemClipboard) IsSupported() bool {
	if nativePersists() && initNative() == nil {
		return true
	}
	return !clipboard.Unsupported
}

// Write implements Clipboard.Write for SystemClipboard
func (s *SystemClipboard) Write(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read clipboard content: %w", err)
	}

	if nativePersists() {
		if err := initNative(); err == nil {
			nativeclip.Write(nativeclip.FmtText, data)
			return nil
		}
	}

	if clipboard.Unsupported {
		return fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// nativePersists reports whether the OS clipboard outlives the writing
// process. Under X11 and Wayland the owner must keep serving the selection.
func nativePersists() bool {
	return runtime.GOOS == "darwin" || runtime.GOOS == "windows"
}

func initNative() error {
	nativeOnce.Do(func() {
		nativeErr = nativeclip.Init()
	})
	return nativeErr
}
