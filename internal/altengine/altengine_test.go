package altengine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iamNilotpal/ignite/internal/altengine"
	kerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *altengine.Engine {
	t.Helper()

	dir := t.TempDir()
	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	opts.EngineKind = "alt"

	eng, err := altengine.New(&altengine.Config{Options: &opts, Logger: logger.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestEngine_SetGetRemove(t *testing.T) {
	eng := newTestEngine(t)

	_, ok, err := eng.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, eng.Set("key", "value"))

	value, ok, err := eng.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)

	require.NoError(t, eng.Set("key", "updated"))
	value, ok, err = eng.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "updated", value)

	require.NoError(t, eng.Remove("key"))
	_, ok, err = eng.Get("key")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEngine_RemoveMissingKeyFails(t *testing.T) {
	eng := newTestEngine(t)

	err := eng.Remove("ghost")
	require.Error(t, err)

	var idxErr *kerrors.IndexError
	require.ErrorAs(t, err, &idxErr)
}

func TestEngine_RejectsInvalidFields(t *testing.T) {
	eng := newTestEngine(t)

	require.Error(t, eng.Set("", "value"))
	require.Error(t, eng.Set("has space", "value"))
	require.Error(t, eng.Set("key", "has\nnewline"))
}

func TestEngine_Close(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.Close())
	require.ErrorIs(t, eng.Close(), altengine.ErrEngineClosed)
	require.ErrorIs(t, eng.Set("a", "b"), altengine.ErrEngineClosed)
}

func TestNew_RejectsDirectoryWithNativeSegments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.log"), []byte("set a b\n"), 0o644))

	opts := options.NewDefaultOptions()
	opts.DataDir = dir

	_, err := altengine.New(&altengine.Config{Options: &opts, Logger: logger.Nop()})
	require.Error(t, err)

	var mismatch *kerrors.EngineMismatchError
	require.ErrorAs(t, err, &mismatch)
}
