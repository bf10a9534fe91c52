package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yiblet/scribe/internal/store"
)

func TestMemoryStore_InsertAndFind(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	for i, cmd := range []string{"echo a", "echo b", "echo ab"} {
		entry, err := s.Insert(ctx, cmd, int64(100*(i+1)))
		if err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
		if entry.ID != int64(i+1) {
			t.Errorf("ID = %d, want %d", entry.ID, i+1)
		}
	}

	got, err := s.Find(ctx, "echo", store.NewCursor(store.Older))
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if got == nil || got.Command != "echo ab" {
		t.Errorf("Find(older) = %+v, want echo ab", got)
	}

	got, err = s.Find(ctx, "echo", store.NewCursor(store.Newer))
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if got == nil || got.Command != "echo a" {
		t.Errorf("Find(newer) = %+v, want echo a", got)
	}

	got, err = s.Find(ctx, "echo", store.NewCursor(store.Older).At(2))
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if got == nil || got.ID != 2 {
		t.Errorf("Find(older at 2) = %+v, want ID 2", got)
	}
}

func TestMemoryStore_FindToleratesGaps(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, cmd := range []string{"make a", "make b", "make c"} {
		if _, err := s.Insert(ctx, cmd, 1); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}
	if err := s.Delete(2); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	got, err := s.Find(ctx, "make", store.NewCursor(store.Older).At(2))
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if got == nil || got.ID != 1 {
		t.Errorf("expected to skip the gap to ID 1, got %+v", got)
	}

	got, err = s.Find(ctx, "make", store.NewCursor(store.Newer).At(2))
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if got == nil || got.ID != 3 {
		t.Errorf("expected to skip the gap to ID 3, got %+v", got)
	}
}

func TestMemoryStore_Matches(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, cmd := range []string{"git add", "git commit", "ls", "git push"} {
		s.Insert(ctx, cmd, 1)
	}

	matches, err := s.Matches(ctx, "git", 2)
	if err != nil {
		t.Fatalf("Matches() error: %v", err)
	}
	if len(matches) != 2 || matches[0].Command != "git push" || matches[1].Command != "git commit" {
		t.Errorf("Matches() = %+v", matches)
	}

	if s.Queries() != 1 {
		t.Errorf("Queries() = %d, want 1", s.Queries())
	}
}

func TestMemoryStore_InsertError(t *testing.T) {
	s := NewMemoryStore()
	boom := errors.New("disk full")
	s.SetInsertError(boom)

	if _, err := s.Insert(context.Background(), "ls", 1); !errors.Is(err, boom) {
		t.Errorf("expected injected error, got %v", err)
	}

	s.SetInsertError(nil)
	if _, err := s.Insert(context.Background(), "ls", 1); err != nil {
		t.Errorf("unexpected error after clearing: %v", err)
	}
}

func TestMemoryStore_ResetKeepsCounter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Insert(ctx, "a", 1)
	s.Insert(ctx, "b", 1)
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}

	entry, _ := s.Insert(ctx, "c", 1)
	if entry.ID != 3 {
		t.Errorf("ID after reset = %d, want 3", entry.ID)
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	s.Close()

	if _, err := s.Insert(context.Background(), "ls", 1); err == nil {
		t.Error("expected error after Close")
	}
}

// TestMemoryStore_ConcurrentInserts checks IDs stay unique under concurrent use.
func TestMemoryStore_ConcurrentInserts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Insert(ctx, "cmd", 1)
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, e := range s.Entries() {
		if seen[e.ID] {
			t.Fatalf("duplicate ID %d", e.ID)
		}
		seen[e.ID] = true
	}
	if len(seen) != 50 {
		t.Errorf("expected 50 entries, got %d", len(seen))
	}
}
