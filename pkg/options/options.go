// Package options provides data structures and functions for configuring
// Ignite. It defines the parameters that control segment rotation,
// compaction, the TCP server's listen address and worker pool size, and
// which storage engine a data directory is opened with.
package options

import (
	"strings"
	"time"
)

// Defines configurable parameters for each segment.
type segmentOptions struct {
	// MaxBytes is the active segment's rotation threshold in bytes. Once the
	// active segment's length exceeds this, the next write rotates to a new
	// segment.
	//
	//  - Default: 1 MiB (2^20)
	//  - Minimum: 4 KiB
	//  - Maximum: 64 MiB
	MaxBytes uint64 `json:"maxSegmentBytes"`

	// MaxUncompacted is the number of stale records that triggers compaction.
	//
	// Default: 1024 (2^10)
	MaxUncompacted uint64 `json:"maxUncompacted"`

	// Prefix labels log fields emitted for segment operations. Segment
	// filenames themselves are always "<N>.log" regardless of this value.
	//
	// Default: "segment"
	Prefix string `json:"prefix"`
}

// Options defines the configuration parameters for an Ignite instance: the
// storage engine, the TCP server, and the worker pool that dispatches
// requests against it.
type Options struct {
	// DataDir is the directory segment files (or, for the alternative
	// engine, the embedded database) live in.
	//
	// Default: "./"
	DataDir string `json:"dataDir"`

	// ListenAddr is the TCP address the server binds.
	//
	// Default: "127.0.0.1:4000"
	ListenAddr string `json:"listenAddr"`

	// EngineKind selects which storage engine a data directory is opened
	// with: "kvs" (the native log-structured engine) or "alt" (the
	// pebble-backed alternative, see internal/altengine).
	//
	// Default: "kvs"
	EngineKind string `json:"engineKind"`

	// Workers is the fixed size of the worker pool dispatching connection
	// handlers. Zero means "resolve to runtime.NumCPU()" (see ResolvedWorkers).
	//
	// Default: runtime.NumCPU()
	Workers int `json:"workers"`

	// BackgroundCompactInterval, when positive, runs compaction on a ticker
	// in addition to the synchronous uncompacted-threshold trigger. Zero
	// disables the ticker.
	//
	// Default: 0 (disabled)
	BackgroundCompactInterval time.Duration `json:"backgroundCompactInterval"`

	// SegmentOptions configures segment rotation and the compaction trigger.
	SegmentOptions *segmentOptions `json:"segmentOptions"`
}

// OptionFunc is a function type that modifies Ignite's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions resets every field to Ignite's documented defaults.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDataDir sets the primary data directory for Ignite.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithListenAddr sets the TCP address the server binds.
func WithListenAddr(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.ListenAddr = addr
		}
	}
}

// WithEngineKind selects the storage engine implementation ("kvs" or "alt").
func WithEngineKind(kind string) OptionFunc {
	return func(o *Options) {
		kind = strings.TrimSpace(kind)
		if kind != "" {
			o.EngineKind = kind
		}
	}
}

// WithWorkers sets the worker pool size. Non-positive values are ignored,
// leaving the pool to resolve to runtime.NumCPU().
func WithWorkers(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithBackgroundCompactInterval enables a periodic compaction ticker running
// alongside the synchronous uncompacted-threshold trigger.
func WithBackgroundCompactInterval(interval time.Duration) OptionFunc {
	return func(o *Options) {
		if interval > 0 {
			o.BackgroundCompactInterval = interval
		}
	}
}

// WithSegmentPrefix sets the label used in log fields for segment operations.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentOptions.Prefix = prefix
		}
	}
}

// WithMaxSegmentBytes sets the active segment's rotation threshold.
func WithMaxSegmentBytes(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinSegmentBytes && size <= MaxSegmentBytes {
			o.SegmentOptions.MaxBytes = size
		}
	}
}

// WithMaxUncompacted sets the number of stale records that triggers compaction.
func WithMaxUncompacted(n uint64) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.SegmentOptions.MaxUncompacted = n
		}
	}
}

// ResolvedWorkers returns Workers if set, otherwise runtime.NumCPU().
func (o *Options) ResolvedWorkers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return DefaultWorkers()
}
