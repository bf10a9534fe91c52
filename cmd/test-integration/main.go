package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/yiblet/scribe/internal/search"
	"github.com/yiblet/scribe/internal/store/memstore"
	"github.com/yiblet/scribe/internal/term/faketerm"
	"github.com/yiblet/scribe/internal/tui"
)

func main() {
	fmt.Println("Testing Inline Search Rendering")
	fmt.Println("===============================")
	ctx := context.Background()

	index := memstore.NewMemoryStore()
	defer index.Close()

	commands := []string{
		"ls -la",
		"docker compose up -d",
		"cat <<EOF > notes.txt\nfirst line\nsecond line\nEOF",
		"docker ps --format '{{.Names}}'",
		strings.Repeat("echo long ", 20),
	}
	for i, command := range commands {
		if _, err := index.Insert(ctx, command, int64(1700000000+i)); err != nil {
			log.Fatalf("Failed to insert %q: %v", command, err)
		}
	}

	// A short window with the prompt near the bottom so the block has to
	// scroll, then a resize halfway through.
	ft := faketerm.New(6, 40, 5, 1,
		faketerm.Runes("d"),
		faketerm.Runes("o"),
		faketerm.Key(tea.KeyUp),
		faketerm.Key(tea.KeyCtrlU),
		faketerm.Runes("EOF"),
		faketerm.Key(tea.KeyCtrlU),
		faketerm.Runes("long"),
		faketerm.Key(tea.KeyEnter),
	)
	ft.AfterKey = func(n int, t *faketerm.Terminal) {
		if n == 3 {
			t.Resize(12, 30)
		}
	}

	renderer := tui.NewRenderer(ft, search.New(index), tui.Options{MatchWidth: 60})
	selection, ok, err := renderer.Run(ctx, "")
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	for i, frame := range ft.Frames() {
		if frame == "" {
			continue
		}
		fmt.Printf("--- frame %d ---\n%s\n", i, strings.ReplaceAll(ansi.Strip(frame), "\r\n", "\n"))
	}

	fmt.Println("===============================")
	fmt.Printf("Cursor moves: %v\n", ft.Moves())
	fmt.Printf("Accepted: %v\n", ok)
	fmt.Printf("Selection: %q\n", selection)
}
