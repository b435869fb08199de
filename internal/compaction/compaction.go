// Package compaction implements the log-compaction pass: rewrite every
// key's live value into a single fresh segment, then retire every segment
// that preceded it. It is grounded directly on the reference store's
// compact() routine (rotate, copy-forward, delete old files), adapted to
// Ignite's segment/index package split.
package compaction

import (
	kerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"go.uber.org/multierr"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/segment"
	"go.uber.org/zap"
)

// Compactor drives a single compaction pass over a segment Set and the
// index that tracks its live keys.
type Compactor struct {
	set *segment.Set
	idx *index.Index
	log *zap.SugaredLogger
}

// New builds a Compactor bound to set and idx. Both must belong to the same
// engine instance; Compactor does not own either and takes no locks of its
// own, relying on the caller (internal/engine) to serialize access.
func New(set *segment.Set, idx *index.Index, log *zap.SugaredLogger) *Compactor {
	return &Compactor{set: set, idx: idx, log: log}
}

// Compact rotates the set onto a fresh segment, copies every live record
// forward into it (in map iteration order, which is unspecified), repoints
// the index at the copies, and retires every segment that existed before the
// rotation. A failure partway through copying leaves the old segments intact
// and the index pointing at a mix of old and new locations; reopening the
// log replays the old segments before the fresh one, so the copied records
// simply supersede their originals and no live record is lost.
func (c *Compactor) Compact() error {
	staleIDs := c.set.IDs()

	fresh, err := c.set.Rotate()
	if err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeRecoveryFailed, "compaction failed to rotate to a fresh segment")
	}

	entries, err := c.idx.Entries()
	if err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeRecoveryFailed, "compaction failed to snapshot the index")
	}

	for key, fi := range entries {
		rec, err := c.set.ReadAt(fi)
		if err != nil {
			return kerrors.NewStorageError(err, kerrors.ErrorCodeRecoveryFailed, "compaction failed to read a live record").
				WithDetail("key", key)
		}

		newFI, err := fresh.Append(rec)
		if err != nil {
			return kerrors.NewStorageError(err, kerrors.ErrorCodeRecoveryFailed, "compaction failed to copy a live record forward").
				WithDetail("key", key)
		}

		if err := c.idx.Put(key, newFI); err != nil {
			return kerrors.NewStorageError(err, kerrors.ErrorCodeRecoveryFailed, "compaction failed to repoint the index").
				WithDetail("key", key)
		}
	}

	var retireErr error
	for _, id := range staleIDs {
		if id == fresh.ID() {
			continue
		}
		if err := c.set.Retire(id); err != nil {
			retireErr = multierr.Append(retireErr, err)
		}
	}
	if retireErr != nil {
		c.log.Warnw("compaction finished with stale segments left behind", "error", retireErr)
	}

	c.log.Infow("compaction complete",
		"retiredSegments", len(staleIDs),
		"liveKeys", len(entries),
		"compactedInto", fresh.ID(),
	)
	return retireErr
}
