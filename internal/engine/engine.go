// Package engine provides the core database engine. It orchestrates three
// subsystems — internal/index (the in-memory key
// directory), internal/segment (the on-disk log), and internal/compaction
// (reclaiming stale records) — behind a single coarse mutex that serializes
// every Set/Get/Remove against them, the simplest concurrency model that is
// still correct for a single-process store.
package engine

import (
	"context"
	stdErrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignite/internal/codec"
	"github.com/iamNilotpal/ignite/internal/compaction"
	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/segment"
	kerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/iamNilotpal/ignite/pkg/seginfo"
)

// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// KVEngine is the storage-engine contract both this native, segment-log
// engine and the pluggable alternative engine (internal/altengine)
// implement, so the server and CLI layers stay agnostic to which backs a
// given data directory.
type KVEngine interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
	Remove(key string) error
	Close() error
}

// Engine is the main database engine that coordinates the index, segment
// log, and compactor. It is safe for concurrent use.
type Engine struct {
	opts *options.Options
	log  *zap.SugaredLogger

	mu          sync.Mutex
	set         *segment.Set
	idx         *index.Index
	compactor   *compaction.Compactor
	uncompacted uint64

	stopBackgroundCompact chan struct{}
	backgroundCompactWg   sync.WaitGroup

	closed atomic.Bool
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens the engine at config.Options.DataDir: it rejects a directory
// that already belongs to a different storage engine, replays every
// segment to rebuild the index, and leaves the engine ready for
// Set/Get/Remove.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, kerrors.NewValidationError(
			nil, kerrors.ErrorCodeInvalidInput, "engine configuration is required",
		).WithField("config").WithRule("required")
	}

	opts := config.Options
	log := config.Logger

	detected, err := seginfo.DetectForeignEngine(opts.DataDir)
	if err != nil {
		return nil, err
	}
	if detected != "" {
		return nil, kerrors.NewEngineMismatchError(opts.EngineKind, detected)
	}

	idx, err := index.New(ctx, &index.Config{DataDir: opts.DataDir, Logger: log})
	if err != nil {
		return nil, err
	}

	set, err := segment.OpenSet(opts.DataDir, opts.SegmentOptions.MaxBytes, log)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		opts:                  opts,
		log:                   log,
		set:                   set,
		idx:                   idx,
		compactor:             compaction.New(set, idx, log),
		stopBackgroundCompact: make(chan struct{}),
	}

	if err := e.replay(); err != nil {
		return nil, err
	}

	if opts.BackgroundCompactInterval > 0 {
		e.startBackgroundCompact(opts.BackgroundCompactInterval)
	}

	log.Infow("engine opened", "dataDir", opts.DataDir, "segments", len(set.IDs()), "keys", idx.Len())
	return e, nil
}

// startBackgroundCompact runs compaction on a ticker alongside the
// synchronous uncompacted-threshold trigger in recordUncompactedLocked,
// so a read-heavy workload that never pushes past the threshold still gets
// reclaimed periodically.
func (e *Engine) startBackgroundCompact(interval time.Duration) {
	e.backgroundCompactWg.Add(1)
	go func() {
		defer e.backgroundCompactWg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.mu.Lock()
				if err := e.compactor.Compact(); err != nil {
					e.log.Warnw("background compaction failed", "error", err)
				} else {
					e.uncompacted = 0
				}
				e.mu.Unlock()
			case <-e.stopBackgroundCompact:
				return
			}
		}
	}()
}

// replay rebuilds the index from every segment, in write order, and
// recomputes the uncompacted-record count exactly as the original open-time
// scan would have produced it incrementally.
func (e *Engine) replay() error {
	var uncompacted uint64

	err := e.set.ForEachInOrder(func(id uint64, offset int64, rec codec.Record) error {
		fi := segment.FileIndex{SegmentID: id, Offset: offset}
		switch rec.Kind {
		case codec.KindSet:
			_, existed, err := e.idx.Get(rec.Key)
			if err != nil {
				return err
			}
			if existed {
				uncompacted++
			}
			return e.idx.Put(rec.Key, fi)
		case codec.KindRemove:
			uncompacted++
			_, err := e.idx.Remove(rec.Key)
			return err
		default:
			return nil
		}
	})
	if err != nil {
		return err
	}

	e.uncompacted = uncompacted
	return nil
}

// Set writes key=value to the log and repoints the index at it, triggering
// compaction if this write brings the uncompacted count up to the threshold.
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

	e.mu.Lock()
	defer e.mu.Unlock()

	fi, err := e.set.Append(codec.NewSet(key, value))
	if err != nil {
		return err
	}

	_, existed, err := e.idx.Get(key)
	if err != nil {
		return err
	}
	if err := e.idx.Put(key, fi); err != nil {
		return err
	}

	if existed {
		return e.recordUncompactedLocked()
	}
	return nil
}

// Get returns key's current value, or ok=false if it has no live entry.
func (e *Engine) Get(key string) (string, bool, error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}
	if err := codec.ValidateField(key); err != nil {
		return "", false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fi, ok, err := e.idx.Get(key)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	rec, err := e.set.ReadAt(fi)
	if err != nil {
		return "", false, err
	}
	if rec.Kind != codec.KindSet {
		return "", false, kerrors.NewStorageError(nil, kerrors.ErrorCodeMalformedRecord, "index points at a record that is not a Set").
			WithSegmentID(int(fi.SegmentID)).WithOffset(int(fi.Offset))
	}
	return rec.Value, true, nil
}

// Remove deletes key. It returns a KeyNotFound error if key has no live
// entry, matching the reference implementation's NonExistentKey behavior.
func (e *Engine) Remove(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := codec.ValidateField(key); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	removed, err := e.idx.Remove(key)
	if err != nil {
		return err
	}
	if !removed {
		return kerrors.NewKeyNotFoundError(key)
	}

	if _, err := e.set.Append(codec.NewRemove(key)); err != nil {
		return err
	}

	return e.recordUncompactedLocked()
}

// recordUncompactedLocked increments the stale-record counter and runs a
// compaction pass once it reaches SegmentOptions.MaxUncompacted. Callers
// must hold e.mu.
func (e *Engine) recordUncompactedLocked() error {
	e.uncompacted++
	if e.uncompacted < e.opts.SegmentOptions.MaxUncompacted {
		return nil
	}

	if err := e.compactor.Compact(); err != nil {
		return err
	}
	e.uncompacted = 0
	return nil
}

// Close flushes and releases the segment log and index. Only the first call
// does this; any later call returns ErrEngineClosed.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	close(e.stopBackgroundCompact)
	e.backgroundCompactWg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	var errs error
	if err := e.set.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := e.idx.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
