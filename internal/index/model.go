package index

import (
	"sync"
	"sync/atomic"

	"github.com/iamNilotpal/ignite/internal/segment"
	"go.uber.org/zap"
)

// Index is the in-memory key directory: a hash map from key to the
// FileIndex of that key's most recently written Set record. It holds no
// values, only pointers into the segment log, so its memory footprint scales
// with the key count rather than the dataset size — the Bitcask trade-off
// the whole engine is built around.
//
// Entries carry no timestamp, size, or key duplication: the line-oriented
// log format has no per-record header to size, and staleness is resolved by
// write order (the index simply holds the latest FileIndex a key was Put
// under), not by comparing timestamps.
type Index struct {
	dataDir  string                       // filesystem path where segment files live.
	log      *zap.SugaredLogger           // structured logging.
	pointers map[string]segment.FileIndex // key -> location of its latest Set record.
	mu       sync.RWMutex                 // guards pointers.
	closed   atomic.Bool
}

// Config encapsulates the configuration parameters required to initialize an Index.
type Config struct {
	DataDir string             // Specifies the filesystem directory containing segment files.
	Logger  *zap.SugaredLogger // Provides structured logging capabilities for Index operations.
}
