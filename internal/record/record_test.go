package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yiblet/scribe/internal/store"
	"github.com/yiblet/scribe/internal/store/memstore"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Verdict
	}{
		{line: "ls -la", want: Append},
		{line: "", want: Skip},
		{line: " secret", want: Skip},
		{line: "\tsecret", want: Skip},
		{line: "\u00a0nbsp", want: Skip},
		{line: "unset HISTFILE", want: Unset},
		{line: "unset HISTFILE ", want: Append},
		{line: "unset HISTSIZE", want: Append},
		{line: "echo a\necho b", want: Append},
		{line: "日本語", want: Append},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := Classify(tt.line); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func newRecorder(t *testing.T, ignore ...string) (*Recorder, *memstore.MemoryStore) {
	t.Helper()

	index := memstore.NewMemoryStore()
	r := NewRecorder(index, ignore, nil)
	r.Now = func() time.Time { return time.Unix(1590000000, 0) }
	return r, index
}

func TestRecord_Appends(t *testing.T) {
	r, index := newRecorder(t)

	verdict, err := r.Record(context.Background(), "make build")
	require.NoError(t, err)
	assert.Equal(t, Append, verdict)

	entries := index.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "make build", entries[0].Command)
	assert.Equal(t, int64(1590000000), entries[0].Timestamp)
}

func TestRecord_SkipAndUnsetWriteNothing(t *testing.T) {
	r, index := newRecorder(t)
	ctx := context.Background()

	for _, line := range []string{"", " hidden", "unset HISTFILE"} {
		_, err := r.Record(ctx, line)
		require.NoError(t, err)
	}
	assert.Empty(t, index.Entries())
}

func TestRecord_IgnoredCommands(t *testing.T) {
	r, index := newRecorder(t, "scribe")
	ctx := context.Background()

	verdict, err := r.Record(ctx, "scribe search foo")
	require.NoError(t, err)
	assert.Equal(t, Skip, verdict)

	verdict, err = r.Record(ctx, "scribe")
	require.NoError(t, err)
	assert.Equal(t, Skip, verdict)

	verdict, err = r.Record(ctx, "scribes")
	require.NoError(t, err)
	assert.Equal(t, Append, verdict)

	require.Len(t, index.Entries(), 1)
}

type failingAppender struct{ err error }

func (f failingAppender) Append(context.Context, string, int64) (store.Entry, error) {
	return store.Entry{}, f.err
}

func TestRecord_StoreFailure(t *testing.T) {
	storageErr := &store.StorageError{Op: "append archive", Err: errors.New("disk full")}
	r := NewRecorder(failingAppender{err: storageErr}, nil, nil)

	verdict, err := r.Record(context.Background(), "ls")
	require.Error(t, err)
	assert.Equal(t, Append, verdict)

	var target *store.StorageError
	assert.ErrorAs(t, err, &target)
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "append", Append.String())
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "unset", Unset.String())
	assert.Equal(t, "unknown", Verdict(42).String())
}
