package options

import (
	"runtime"
	"time"
)

const (
	// DefaultDataDir specifies the default base directory where Ignite will
	// store its segment files and recover its index from on open.
	DefaultDataDir = "./"

	// MinSegmentBytes is the smallest allowed active-segment size before rotation.
	MinSegmentBytes uint64 = 4 * 1024

	// MaxSegmentBytes is the largest allowed active-segment size before rotation.
	MaxSegmentBytes uint64 = 64 * 1024 * 1024

	// DefaultSegmentBytes is the segment rotation threshold mandated by the
	// storage format: 2^20 bytes (1 MiB).
	DefaultSegmentBytes uint64 = 1 << 20

	// DefaultUncompactedThreshold is the number of stale records that triggers
	// compaction: 2^10 (1024).
	DefaultUncompactedThreshold uint64 = 1 << 10

	// DefaultSegmentPrefix labels the log fields emitted for segment
	// operations; it plays no role in filename generation, since segments are
	// always named "<N>.log".
	DefaultSegmentPrefix = "segment"

	// DefaultListenAddr is the address the TCP server binds when none is given.
	DefaultListenAddr = "127.0.0.1:4000"

	// DefaultEngineKind selects the native log-structured engine.
	DefaultEngineKind = "kvs"

	// DefaultBackgroundCompactInterval disables the optional background
	// compaction ticker; compaction is otherwise triggered synchronously by
	// the uncompacted-record threshold.
	DefaultBackgroundCompactInterval = time.Duration(0)
)

// DefaultWorkers returns the default worker pool size: one worker per logical CPU.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Holds the default configuration settings for an Ignite instance.
var defaultOptions = Options{
	DataDir:                   DefaultDataDir,
	ListenAddr:                DefaultListenAddr,
	EngineKind:                DefaultEngineKind,
	Workers:                   0, // resolved lazily by DefaultWorkers so tests stay deterministic across machines
	BackgroundCompactInterval: DefaultBackgroundCompactInterval,
	SegmentOptions: &segmentOptions{
		MaxBytes:       DefaultSegmentBytes,
		MaxUncompacted: DefaultUncompactedThreshold,
		Prefix:         DefaultSegmentPrefix,
	},
}

// NewDefaultOptions returns a copy of Ignite's default configuration, deep
// enough that callers mutating SegmentOptions don't mutate the shared default.
func NewDefaultOptions() Options {
	opts := defaultOptions
	segOpts := *defaultOptions.SegmentOptions
	opts.SegmentOptions = &segOpts
	return opts
}
