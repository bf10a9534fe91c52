package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/yiblet/scribe/internal/record"
	"github.com/yiblet/scribe/internal/search"
	"github.com/yiblet/scribe/internal/store"
	"github.com/yiblet/scribe/internal/store/memstore"
)

func main() {
	fmt.Println("scribe History Demo")
	ctx := context.Background()

	// Archive in a scratch directory, index in memory
	dir, err := os.MkdirTemp("", "scribe-demo")
	if err != nil {
		log.Fatalf("Failed to create scratch directory: %v", err)
	}
	defer os.RemoveAll(dir)

	history, err := store.OpenHistory(filepath.Join(dir, "LATEST"), memstore.NewMemoryStore())
	if err != nil {
		log.Fatalf("Failed to open history: %v", err)
	}
	defer history.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	recorder := record.NewRecorder(history, []string{"scribe"}, logger)

	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	recorder.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	lines := []string{
		"git status",
		"go test ./...",
		" export TOKEN=hunter2",
		"git commit -m 'fix index rebuild'",
		"scribe search git",
		"for f in *.go; do\n  gofmt -l \"$f\"\ndone",
		"unset HISTFILE",
		"git push origin main",
	}

	fmt.Println("Recording commands:")
	for _, line := range lines {
		verdict, err := recorder.Record(ctx, line)
		if err != nil {
			log.Fatalf("Failed to record %q: %v", line, err)
		}
		fmt.Printf("  %-8s %q\n", verdict, line)
	}

	count, err := history.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count history: %v", err)
	}
	fmt.Printf("\nIndexed commands: %d\n", count)
	fmt.Printf("Archive: %s\n\n", history.ArchivePath())

	engine := search.New(history)

	// List matches, newest first
	matches, err := engine.RecentMatches(ctx, "git", search.DefaultLimit)
	if err != nil {
		log.Fatalf("Failed to list matches: %v", err)
	}
	fmt.Println("Matches for \"git\" (newest first):")
	for i, match := range matches {
		fmt.Printf("%d. %s\n", i, match)
	}

	// Walk the same matches the way Up does in the interactive search
	fmt.Println("\nStepping older through \"git\":")
	cursor := store.NewCursor(store.Older)
	for {
		entry, next, err := engine.Next(ctx, "git", cursor)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		if entry == nil {
			fmt.Println("  <no match>")
			break
		}
		fmt.Printf("  #%d %s\n", entry.ID, entry.Command)
		cursor = search.Advance(next, store.Older)
	}
}
