package compaction_test

import (
	"context"
	"testing"

	"github.com/iamNilotpal/ignite/internal/codec"
	"github.com/iamNilotpal/ignite/internal/compaction"
	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestCompactor_Compact_RewritesLiveKeysIntoOneSegment(t *testing.T) {
	dir := t.TempDir()
	line := codec.Encode(codec.NewSet("k", "v"))
	set, err := segment.OpenSet(dir, uint64(len(line)), logger.Nop())
	require.NoError(t, err)
	defer set.Close()

	idx, err := index.New(context.Background(), &index.Config{DataDir: dir, Logger: logger.Nop()})
	require.NoError(t, err)

	write := func(rec codec.Record) {
		fi, err := set.Append(rec)
		require.NoError(t, err)
		if rec.Kind == codec.KindRemove {
			_, err := idx.Remove(rec.Key)
			require.NoError(t, err)
			return
		}
		require.NoError(t, idx.Put(rec.Key, fi))
	}

	write(codec.NewSet("a", "1"))
	write(codec.NewSet("b", "2"))
	write(codec.NewSet("a", "1-updated"))
	write(codec.NewRemove("b"))

	require.True(t, len(set.IDs()) > 1, "writes should have rotated across multiple segments")

	c := compaction.New(set, idx, logger.Nop())
	require.NoError(t, c.Compact())

	ids := set.IDs()
	require.Len(t, ids, 1, "compaction should leave exactly one segment")

	fi, ok, err := idx.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ids[0], fi.SegmentID)

	rec, err := set.ReadAt(fi)
	require.NoError(t, err)
	require.Equal(t, codec.NewSet("a", "1-updated"), rec)

	_, ok, err = idx.Get("b")
	require.NoError(t, err)
	require.False(t, ok, "removed key must not reappear after compaction")
}
