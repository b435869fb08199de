package segment_test

import (
	"testing"

	"github.com/iamNilotpal/ignite/internal/codec"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestSet_OpenCreatesSegmentOneWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	set, err := segment.OpenSet(dir, 1<<20, logger.Nop())
	require.NoError(t, err)
	defer set.Close()

	require.Equal(t, []uint64{1}, set.IDs())
	require.Equal(t, uint64(1), set.Active().ID())
}

func TestSet_AppendAndReadAt(t *testing.T) {
	dir := t.TempDir()
	set, err := segment.OpenSet(dir, 1<<20, logger.Nop())
	require.NoError(t, err)
	defer set.Close()

	fi, err := set.Append(codec.NewSet("k", "v"))
	require.NoError(t, err)
	require.Equal(t, uint64(1), fi.SegmentID)

	rec, err := set.ReadAt(fi)
	require.NoError(t, err)
	require.Equal(t, codec.NewSet("k", "v"), rec)
}

func TestSet_RotatesOnceMaxSizeExceeded(t *testing.T) {
	dir := t.TempDir()
	line := codec.Encode(codec.NewSet("k", "v"))
	set, err := segment.OpenSet(dir, uint64(len(line))-1, logger.Nop())
	require.NoError(t, err)
	defer set.Close()

	_, err = set.Append(codec.NewSet("k", "v"))
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, set.IDs())

	_, err = set.Append(codec.NewSet("k2", "v2"))
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2}, set.IDs())
	require.Equal(t, uint64(2), set.Active().ID())
}

func TestSet_RetireRejectsActiveSegment(t *testing.T) {
	dir := t.TempDir()
	set, err := segment.OpenSet(dir, 1<<20, logger.Nop())
	require.NoError(t, err)
	defer set.Close()

	err = set.Retire(1)
	require.Error(t, err)
}

func TestSet_ReopenReplaysInOrder(t *testing.T) {
	dir := t.TempDir()
	line := codec.Encode(codec.NewSet("k", "v"))
	set, err := segment.OpenSet(dir, uint64(len(line))-1, logger.Nop())
	require.NoError(t, err)

	_, err = set.Append(codec.NewSet("a", "1"))
	require.NoError(t, err)
	_, err = set.Append(codec.NewSet("b", "2"))
	require.NoError(t, err)
	require.NoError(t, set.Close())

	reopened, err := segment.OpenSet(dir, uint64(len(line))-1, logger.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, []uint64{1, 2}, reopened.IDs())

	var visited []codec.Record
	err = reopened.ForEachInOrder(func(id uint64, offset int64, rec codec.Record) error {
		visited = append(visited, rec)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []codec.Record{codec.NewSet("a", "1"), codec.NewSet("b", "2")}, visited)
}
