// Package ignite provides a high-performance key/value data store
// designed for fast read and write operations, inspired by Bitcask.
// It combines an in-memory hash table (KeyDir/Index) with an append-only log
// structure on disk to achieve high throughput. It is designed for applications
// requiring fast read and write operations, such as caching, session management,
// and real-time data processing, aiming to provide a simple, efficient, and
// reliable solution for embedded, persistent data storage in Go applications.
package ignite

import (
	"context"

	"go.uber.org/zap"

	"github.com/iamNilotpal/ignite/internal/altengine"
	"github.com/iamNilotpal/ignite/internal/engine"
	kerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/iamNilotpal/ignite/pkg/options"
)

// Represents an instance of the Ignite key/value data store.
// It encapsulates the core engine responsible for data handling and
// the configuration options for this specific database instance.
//
// Instance is the primary entry point for interacting with the Ignite store,
// providing methods for setting, getting, and deleting key-value pairs.
type Instance struct {
	engine  engine.KVEngine  // The underlying database engine handling read/write operations.
	options *options.Options // Configuration options applied to this DB instance.
}

// Creates and initializes a new Ignite DB instance. Which storage engine
// backs it is chosen by opts.EngineKind: "kvs" opens the native
// segment-log engine (internal/engine), "alt" opens the pebble-backed
// alternative (internal/altengine).
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	// Initialize a logger for the given service.
	log := logger.New(service)

	// Initialize default options.
	defaultOpts := options.NewDefaultOptions()

	// Apply any provided functional options to override defaults.
	if len(opts) > 0 {
		for _, opt := range opts {
			opt(&defaultOpts)
		}
	}

	kv, err := openEngine(ctx, &defaultOpts, log)
	if err != nil {
		return nil, err
	}

	return &Instance{engine: kv, options: &defaultOpts}, nil
}

func openEngine(ctx context.Context, opts *options.Options, log *zap.SugaredLogger) (engine.KVEngine, error) {
	switch opts.EngineKind {
	case "", "kvs":
		return engine.New(ctx, &engine.Config{Logger: log, Options: opts})
	case "alt":
		return altengine.New(&altengine.Config{Logger: log, Options: opts})
	default:
		return nil, kerrors.NewValidationError(
			nil, kerrors.ErrorCodeInvalidInput, "unknown engine kind",
		).WithField("engineKind").WithRule("one of: kvs, alt")
	}
}

// Set stores a key-value pair in the database.
// If the key already exists, its value will be updated.
// The native engine appends the record to its log without an fsync, so the
// write sits in the OS page cache when Set returns; the alternative engine
// syncs every write.
func (i *Instance) Set(ctx context.Context, key, value string) error {
	return i.engine.Set(key, value)
}

// Get retrieves the value associated with the given key. ok is false if
// the key has no live entry.
func (i *Instance) Get(ctx context.Context, key string) (string, bool, error) {
	return i.engine.Get(key)
}

// Delete removes a key-value pair from the database.
// The operation marks the key as deleted and will eventually be
// removed during compaction.
func (i *Instance) Delete(ctx context.Context, key string) error {
	return i.engine.Remove(key)
}

// Close gracefully shuts down the Ignite DB instance, releasing all
// associated resources. For the native engine this closes the segment log's
// file handles without an fsync.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
