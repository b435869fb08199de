// Package index provides the in-memory hash table implementation for the
// Ignite key-value store. This package embodies the core Bitcask
// architectural principle: keep all keys in memory with minimal metadata
// while the actual values live on disk in the segment log (internal/segment).
//
// The index enables O(1) key lookups while keeping storage overhead
// minimal, letting the system handle datasets much larger than available
// RAM without sacrificing read performance.
package index

import (
	"context"
	stdErrors "errors"

	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/pkg/errors"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates and initializes a new Index instance configured according to
// the provided parameters. The returned Index is immediately ready for
// concurrent use and includes a pre-sized map to avoid early rehashing.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:      config.Logger,
		dataDir:  config.DataDir,
		pointers: make(map[string]segment.FileIndex, 2046),
	}, nil
}

// Put records (or overwrites) the location of key's most recent Set record.
// Put never fails on a key that already exists; the new FileIndex simply
// replaces the old one, which is how the index tracks only live data.
func (idx *Index) Put(key string, fi segment.FileIndex) error {
	if idx.closed.Load() {
		return ErrIndexClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.pointers[key] = fi
	return nil
}

// Get returns the FileIndex for key and true, or a false ok if the key has
// no live entry (either never written, or removed).
func (idx *Index) Get(key string) (segment.FileIndex, bool, error) {
	if idx.closed.Load() {
		return segment.FileIndex{}, false, ErrIndexClosed
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	fi, ok := idx.pointers[key]
	return fi, ok, nil
}

// Remove deletes key's entry from the index. It returns false if the key had
// no entry to begin with, which callers use to surface KeyNotFound on `rm`.
func (idx *Index) Remove(key string) (bool, error) {
	if idx.closed.Load() {
		return false, ErrIndexClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.pointers[key]; !ok {
		return false, nil
	}
	delete(idx.pointers, key)
	return true, nil
}

// Entries returns a point-in-time snapshot of every live key and its
// FileIndex. Compaction uses this to decide which records in each segment
// are still referenced and must be copied forward.
func (idx *Index) Entries() (map[string]segment.FileIndex, error) {
	if idx.closed.Load() {
		return nil, ErrIndexClosed
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	snapshot := make(map[string]segment.FileIndex, len(idx.pointers))
	for k, v := range idx.pointers {
		snapshot[k] = v
	}
	return snapshot, nil
}

// Len reports the number of live keys currently tracked.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.pointers)
}

// Close gracefully shuts down the Index, releasing its backing map and
// ensuring the index cannot be used after closure.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("Closing index system")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.pointers)
	idx.pointers = nil

	idx.log.Infow("Index system closed successfully")
	return nil
}
