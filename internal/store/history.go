package store

import (
	"context"
	"errors"
	"sync"

	"github.com/yiblet/scribe/internal/store/archive"
)

// rebuildBatchSize is how many archive records are buffered per Import call
// while rebuilding the index.
const rebuildBatchSize = 1000

// History is the handle for scribe's history: the archive log and the index
// behind one API.
//
// The index is owned by a single goroutine started by OpenHistory. Every
// operation is sent to it as a request and runs to completion before the
// next one starts, so callers never share the index handle directly.
type History struct {
	archive *archive.Log
	index   Index

	requests chan request
	quit     chan struct{}
	wg       sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

type request struct {
	ctx context.Context
	fn  func(ctx context.Context) error
}

// OpenHistory opens the archive at archivePath (creating it with its header
// if needed) and starts serving requests against index. The History takes
// ownership of index and closes it on Close.
func OpenHistory(archivePath string, index Index) (*History, error) {
	log, err := archive.Open(archivePath)
	if err != nil {
		return nil, storageError("open archive", err)
	}

	h := &History{
		archive:  log,
		index:    index,
		requests: make(chan request),
		quit:     make(chan struct{}),
	}

	h.wg.Add(1)
	go h.serve()

	return h, nil
}

func (h *History) serve() {
	defer h.wg.Done()

	for {
		select {
		case req := <-h.requests:
			req.fn(req.ctx)
		case <-h.quit:
			return
		}
	}
}

// do runs fn on the owner goroutine and waits for it to finish. ctx only
// bounds the wait for the owner to accept the request.
func (h *History) do(ctx context.Context, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	req := request{
		ctx: ctx,
		fn: func(ctx context.Context) error {
			err := fn(ctx)
			done <- err
			return err
		},
	}

	select {
	case h.requests <- req:
	case <-h.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted, fn always runs to completion on the owner goroutine.
	return <-done
}

// Append writes command to the archive and then to the index.
//
// If the archive write fails nothing is written to the index. If the index
// insert fails after the archive write succeeded, the archive keeps the
// record (it is the durability backstop) and the error is returned; the
// entry becomes searchable again after Rebuild.
func (h *History) Append(ctx context.Context, command string, timestamp int64) (Entry, error) {
	var entry Entry
	err := h.do(ctx, func(ctx context.Context) error {
		if err := h.archive.Append(command, timestamp); err != nil {
			return storageError("append archive", err)
		}

		var err error
		entry, err = h.index.Insert(ctx, command, timestamp)
		return storageError("insert index", err)
	})
	return entry, err
}

// Import appends entries to the archive, keeping their timestamps, and then
// indexes them in one batch. It returns the number indexed. IDs on the
// passed entries are ignored.
func (h *History) Import(ctx context.Context, entries []Entry) (int, error) {
	var n int
	err := h.do(ctx, func(ctx context.Context) error {
		for _, entry := range entries {
			if err := h.archive.Append(entry.Command, entry.Timestamp); err != nil {
				return storageError("append archive", err)
			}
		}

		var err error
		n, err = h.index.Import(ctx, entries)
		return storageError("import", err)
	})
	return n, err
}

// Find returns the next entry containing query from the cursor. See
// Index.Find.
func (h *History) Find(ctx context.Context, query string, cursor Cursor) (*Entry, error) {
	var entry *Entry
	err := h.do(ctx, func(ctx context.Context) error {
		var err error
		entry, err = h.index.Find(ctx, query, cursor)
		return storageError("find", err)
	})
	return entry, err
}

// Matches returns up to limit entries containing query, newest first.
func (h *History) Matches(ctx context.Context, query string, limit int) ([]Entry, error) {
	var entries []Entry
	err := h.do(ctx, func(ctx context.Context) error {
		var err error
		entries, err = h.index.Matches(ctx, query, limit)
		return storageError("matches", err)
	})
	return entries, err
}

// Count returns the number of indexed entries.
func (h *History) Count(ctx context.Context) (int, error) {
	var count int
	err := h.do(ctx, func(ctx context.Context) error {
		var err error
		count, err = h.index.Count(ctx)
		return storageError("count", err)
	})
	return count, err
}

// Rebuild clears the index and replays the given archive files into it,
// in order. It returns the number of entries indexed. The archive itself is
// only read.
func (h *History) Rebuild(ctx context.Context, archiveFiles []string) (int, error) {
	var total int
	err := h.do(ctx, func(ctx context.Context) error {
		if err := h.index.Reset(ctx); err != nil {
			return storageError("reset index", err)
		}

		batch := make([]Entry, 0, rebuildBatchSize)
		flush := func() error {
			n, err := h.index.Import(ctx, batch)
			if err != nil {
				return storageError("import", err)
			}
			total += n
			batch = batch[:0]
			return nil
		}

		for _, path := range archiveFiles {
			err := archive.ReadFile(path, func(r archive.Record) error {
				batch = append(batch, Entry{Command: r.Command, Timestamp: r.Timestamp})
				if len(batch) >= rebuildBatchSize {
					return flush()
				}
				return nil
			})
			if err != nil {
				var encErr *archive.EncodingError
				if errors.As(err, &encErr) {
					return err
				}
				return storageError("read archive", err)
			}
		}

		return flush()
	})
	return total, err
}

// ArchivePath returns the path of the archive file written by Append.
func (h *History) ArchivePath() string {
	return h.archive.Path()
}

// Close stops the owner goroutine and closes the archive and the index.
// Requests already running finish first.
func (h *History) Close() error {
	h.closeOnce.Do(func() {
		close(h.quit)
		h.wg.Wait()

		indexErr := h.index.Close()
		archiveErr := h.archive.Close()
		if indexErr != nil {
			h.closeErr = storageError("close index", indexErr)
		} else if archiveErr != nil {
			h.closeErr = storageError("close archive", archiveErr)
		}
	})
	return h.closeErr
}
