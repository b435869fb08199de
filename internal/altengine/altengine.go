// Package altengine implements a pluggable alternative storage engine: the
// same KVEngine contract as internal/engine, but backed by a real embedded
// key-value library (cockroachdb/pebble) instead of Ignite's own segment
// log. It exists to prove the engine boundary is a real interface rather
// than an assumption baked into the server and CLI.
package altengine

import (
	stdErrors "errors"
	"path/filepath"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignite/internal/codec"
	kerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/iamNilotpal/ignite/pkg/seginfo"
)

// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// Engine is a KVEngine (internal/engine.KVEngine) backed by a pebble
// instance rather than Ignite's own segment log. Key/value validation still
// follows the same wire-format invariant as the native engine (non-empty,
// no space or newline) so the two engines reject exactly the same inputs.
type Engine struct {
	db     *pebble.DB
	log    *zap.SugaredLogger
	closed atomic.Bool
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens (or creates) a pebble database at "<data-dir>/pebble". It
// refuses to open a data directory that already holds native "<N>.log"
// segments, the mirror image of internal/engine's own engine-mismatch check.
func New(config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, kerrors.NewValidationError(
			nil, kerrors.ErrorCodeInvalidInput, "alt engine configuration is required",
		).WithField("config").WithRule("required")
	}

	ids, _, err := seginfo.Discover(config.Options.DataDir)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		return nil, kerrors.NewEngineMismatchError("alt", "kvs")
	}

	dbPath := filepath.Join(config.Options.DataDir, "pebble")
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to open alternative engine database").
			WithPath(dbPath)
	}

	config.Logger.Infow("alt engine opened", "dataDir", config.Options.DataDir, "dbPath", dbPath)
	return &Engine{db: db, log: config.Logger}, nil
}

// Set stores key=value, fsyncing before it returns.
func (e *Engine) Set(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := codec.ValidateField(key); err != nil {
		return err
	}
	if err := codec.ValidateField(value); err != nil {
		return err
	}

	if err := e.db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "alt engine failed to write key").
			WithDetail("key", key)
	}
	return nil
}

// Get returns key's current value, or ok=false if it has no entry.
func (e *Engine) Get(key string) (string, bool, error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}
	if err := codec.ValidateField(key); err != nil {
		return "", false, err
	}

	value, closer, err := e.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "alt engine failed to read key").
			WithDetail("key", key)
	}
	defer closer.Close()

	return string(value), true, nil
}

// Remove deletes key, returning a KeyNotFound error if it had no entry, the
// same observable behavior as internal/engine.Engine.Remove.
func (e *Engine) Remove(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := codec.ValidateField(key); err != nil {
		return err
	}

	_, closer, err := e.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return kerrors.NewKeyNotFoundError(key)
	}
	if err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "alt engine failed to check key before removal").
			WithDetail("key", key)
	}
	_ = closer.Close()

	if err := e.db.Delete([]byte(key), pebble.Sync); err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "alt engine failed to delete key").
			WithDetail("key", key)
	}
	return nil
}

// Close flushes and releases the pebble database. Only the first call does
// this; any later call returns ErrEngineClosed.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}
	if err := e.db.Close(); err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "alt engine failed to close cleanly")
	}
	return nil
}
