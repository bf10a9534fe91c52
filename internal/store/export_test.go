package store

import "context"

// CloseArchive closes the archive file under h so later writes fail.
func (h *History) CloseArchive() error {
	return h.archive.Close()
}

// Do runs fn on h's owner goroutine.
func (h *History) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return h.do(ctx, fn)
}
