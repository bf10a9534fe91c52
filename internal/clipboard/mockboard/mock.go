// Package mockboard provides a mock clipboard implementation for testing.
package mockboard

import (
	"io"
	"sync"

	"github.com/yiblet/scribe/internal/clipboard"
)

// MockClipboard implements Clipboard for testing
type MockClipboard struct {
	mu     sync.Mutex
	data   []byte
	writes int
	err    error

	unsupported bool
}

var _ clipboard.Clipboard = (*MockClipboard)(nil)

// New creates a new MockClipboard instance
func New() *MockClipboard {
	return &MockClipboard{}
}

// Write implements Clipboard.Write for MockClipboard
func (m *MockClipboard) Write(r io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.data = data
	m.writes++
	return nil
}

// SetError makes following writes fail with err (for testing)
func (m *MockClipboard) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetData returns the current clipboard data (for testing)
func (m *MockClipboard) GetData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// Writes returns how many writes succeeded (for testing)
func (m *MockClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// SetSupported sets what IsSupported reports (for testing)
func (m *MockClipboard) SetSupported(supported bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsupported = !supported
}

// IsSupported returns true unless SetSupported(false) was called
func (m *MockClipboard) IsSupported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.unsupported
}
