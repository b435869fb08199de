package ignite_test

import (
	"context"
	"testing"

	"github.com/iamNilotpal/ignite/pkg/ignite"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/stretchr/testify/require"
)

func TestInstance_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := ignite.NewInstance(ctx, "ignite-test", func(o *options.Options) { o.DataDir = dir })
	require.NoError(t, err)
	defer db.Close(ctx)

	_, ok, err := db.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.Set(ctx, "key", "value"))

	value, ok, err := db.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)

	require.NoError(t, db.Delete(ctx, "key"))
	_, ok, err = db.Get(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInstance_AltEngine(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := ignite.NewInstance(ctx, "ignite-test", func(o *options.Options) {
		o.DataDir = dir
		o.EngineKind = "alt"
	})
	require.NoError(t, err)
	defer db.Close(ctx)

	require.NoError(t, db.Set(ctx, "key", "value"))
	value, ok, err := db.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)
}

func TestInstance_UnknownEngineKind(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := ignite.NewInstance(ctx, "ignite-test", func(o *options.Options) {
		o.DataDir = dir
		o.EngineKind = "bogus"
	})
	require.Error(t, err)
}
