// Package record decides which shell command lines become history and
// appends them.
package record

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/yiblet/scribe/internal/store"
)

// Verdict is what the recorder does with a command line.
type Verdict int

const (
	// Append records the line.
	Append Verdict = iota
	// Skip drops the line: it is empty, starts with whitespace (the shell
	// convention for "keep this out of history"), or names an ignored
	// command.
	Skip
	// Unset drops the line "unset HISTFILE", which turns recording off for
	// the shell session.
	Unset
)

func (v Verdict) String() string {
	switch v {
	case Append:
		return "append"
	case Skip:
		return "skip"
	case Unset:
		return "unset"
	default:
		return "unknown"
	}
}

const unsetHistfile = "unset HISTFILE"

// Classify returns the verdict for a raw command line.
func Classify(line string) Verdict {
	if line == "" {
		return Skip
	}
	if r, _ := utf8.DecodeRuneInString(line); unicode.IsSpace(r) {
		return Skip
	}
	if line == unsetHistfile {
		return Unset
	}
	return Append
}

// Appender is the write side of the history.
type Appender interface {
	Append(ctx context.Context, command string, timestamp int64) (store.Entry, error)
}

// Recorder classifies command lines and appends the ones worth keeping.
type Recorder struct {
	appender Appender
	ignore   []string
	logger   *slog.Logger

	// Now returns the capture time. Defaults to time.Now.
	Now func() time.Time
}

// NewRecorder returns a recorder writing to appender. Lines whose first word
// is in ignore are skipped.
func NewRecorder(appender Appender, ignore []string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{
		appender: appender,
		ignore:   ignore,
		logger:   logger,
		Now:      time.Now,
	}
}

// Record classifies line and, for an Append verdict, appends it with the
// current time. Store failures are returned wrapped; nothing is retried.
func (r *Recorder) Record(ctx context.Context, line string) (Verdict, error) {
	verdict := Classify(line)
	if verdict != Append {
		r.logger.Debug("not recording", "verdict", verdict)
		return verdict, nil
	}

	if first := firstWord(line); slices.Contains(r.ignore, first) {
		r.logger.Debug("ignoring command", "command", first)
		return Skip, nil
	}

	entry, err := r.appender.Append(ctx, line, r.Now().Unix())
	if err != nil {
		return verdict, fmt.Errorf("failed to record command: %w", err)
	}

	r.logger.Debug("recorded command", "id", entry.ID)
	return verdict, nil
}

func firstWord(line string) string {
	word, _, _ := strings.Cut(line, " ")
	return word
}
