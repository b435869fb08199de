package index_test

import (
	"context"
	"testing"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.New(context.Background(), &index.Config{
		DataDir: t.TempDir(),
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)
	return idx
}

func TestIndex_PutGetRemove(t *testing.T) {
	idx := newTestIndex(t)

	_, ok, err := idx.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	fi := segment.FileIndex{SegmentID: 1, Offset: 42}
	require.NoError(t, idx.Put("foo", fi))

	got, ok, err := idx.Get("foo")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, fi, got)

	removed, err := idx.Remove("foo")
	require.NoError(t, err)
	require.True(t, removed)

	_, ok, err = idx.Get("foo")
	require.NoError(t, err)
	require.False(t, ok)

	removedAgain, err := idx.Remove("foo")
	require.NoError(t, err)
	require.False(t, removedAgain)
}

func TestIndex_Put_Overwrites(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Put("k", segment.FileIndex{SegmentID: 1, Offset: 0}))
	require.NoError(t, idx.Put("k", segment.FileIndex{SegmentID: 2, Offset: 10}))

	got, ok, err := idx.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, segment.FileIndex{SegmentID: 2, Offset: 10}, got)
}

func TestIndex_Entries(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Put("a", segment.FileIndex{SegmentID: 1, Offset: 0}))
	require.NoError(t, idx.Put("b", segment.FileIndex{SegmentID: 1, Offset: 12}))

	entries, err := idx.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2, idx.Len())

	entries["c"] = segment.FileIndex{}
	require.Equal(t, 2, idx.Len(), "mutating the snapshot must not affect the index")
}

func TestIndex_Close(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Close())

	_, err := idx.Entries()
	require.ErrorIs(t, err, index.ErrIndexClosed)

	require.ErrorIs(t, idx.Close(), index.ErrIndexClosed)
}
