// Package memstore provides an in-memory implementation of store.Index.
// This implementation is designed for fast unit testing and does not persist data.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/yiblet/scribe/internal/store"
)

// MemoryStore is an in-memory implementation of store.Index.
// Entries are kept in ID order and guarded by a mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []store.Entry
	nextID  int64
	closed  bool

	insertErr error
	queries   int
}

var _ store.Index = (*MemoryStore)(nil)

// NewMemoryStore creates a new, empty in-memory index.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Insert appends a command and assigns the next ID.
func (m *MemoryStore) Insert(ctx context.Context, command string, timestamp int64) (store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx); err != nil {
		return store.Entry{}, err
	}
	if m.insertErr != nil {
		return store.Entry{}, m.insertErr
	}

	return m.insertLocked(command, timestamp), nil
}

// Import appends entries in order.
func (m *MemoryStore) Import(ctx context.Context, entries []store.Entry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx); err != nil {
		return 0, err
	}
	if m.insertErr != nil {
		return 0, m.insertErr
	}

	for _, entry := range entries {
		m.insertLocked(entry.Command, entry.Timestamp)
	}
	return len(entries), nil
}

func (m *MemoryStore) insertLocked(command string, timestamp int64) store.Entry {
	entry := store.Entry{
		ID:        m.nextID,
		Command:   command,
		Timestamp: timestamp,
	}
	m.nextID++
	m.entries = append(m.entries, entry)
	return entry
}

// Find scans from the cursor in its direction for the first entry
// containing query.
func (m *MemoryStore) Find(ctx context.Context, query string, cursor store.Cursor) (*store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.queries++

	id, anchored := cursor.ID()
	switch cursor.Direction {
	case store.Older:
		for i := len(m.entries) - 1; i >= 0; i-- {
			e := m.entries[i]
			if anchored && e.ID > id {
				continue
			}
			if strings.Contains(e.Command, query) {
				return &e, nil
			}
		}
	case store.Newer:
		for _, e := range m.entries {
			if anchored && e.ID < id {
				continue
			}
			if strings.Contains(e.Command, query) {
				return &e, nil
			}
		}
	default:
		return nil, fmt.Errorf("unknown direction: %d", cursor.Direction)
	}

	return nil, nil
}

// Matches returns entries containing query, newest first.
func (m *MemoryStore) Matches(ctx context.Context, query string, limit int) ([]store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.queries++

	var results []store.Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if !strings.Contains(m.entries[i].Command, query) {
			continue
		}
		results = append(results, m.entries[i])
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	return results, nil
}

// Count returns the number of entries.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(ctx); err != nil {
		return 0, err
	}
	return len(m.entries), nil
}

// Reset removes all entries. The ID counter keeps running.
func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx); err != nil {
		return err
	}
	m.entries = nil
	return nil
}

// Close marks the store closed. Later calls fail.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Delete removes the entry with the given ID, leaving a gap in the ID
// sequence the way an external edit of the database would.
func (m *MemoryStore) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("entry not found: %d", id)
}

// SetInsertError makes every following Insert and Import fail with err.
// Pass nil to restore normal behavior.
func (m *MemoryStore) SetInsertError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertErr = err
}

// Queries returns how many Find and Matches calls reached the store.
func (m *MemoryStore) Queries() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queries
}

// Entries returns a copy of all entries in ID order.
func (m *MemoryStore) Entries() []store.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]store.Entry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

func (m *MemoryStore) check(ctx context.Context) error {
	if m.closed {
		return fmt.Errorf("memory store is closed")
	}
	return ctx.Err()
}
