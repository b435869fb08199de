package segment

import (
	"slices"
	"sync"

	"github.com/iamNilotpal/ignite/internal/codec"
	kerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/filesys"
	"github.com/iamNilotpal/ignite/pkg/seginfo"
	"go.uber.org/zap"
)

// Set is the ordered collection of segment files that make up a log, plus
// the single active segment new writes land on.
// Segment numbering is monotonic — rotation always creates "<max+1>.log" —
// so the highest ID is always the active one.
type Set struct {
	mu      sync.Mutex
	dataDir string
	log     *zap.SugaredLogger
	order   []uint64 // ascending segment IDs, active segment last
	byID    map[uint64]*Segment
	active  *Segment
	maxSize uint64 // rotate once the active segment's length exceeds this
}

// OpenSet discovers the segment files already present in dataDir and
// returns a Set ready for reads and appends. If no segment files exist,
// segment 1 is created and made active.
func OpenSet(dataDir string, maxSegmentBytes uint64, log *zap.SugaredLogger) (*Set, error) {
	if err := filesys.CreateDir(dataDir, 0o755, true); err != nil {
		return nil, kerrors.ClassifyDirectoryCreationError(err, dataDir)
	}

	ids, paths, err := seginfo.Discover(dataDir)
	if err != nil {
		return nil, err
	}

	set := &Set{
		dataDir: dataDir,
		log:     log,
		byID:    make(map[uint64]*Segment, len(ids)+1),
		maxSize: maxSegmentBytes,
	}

	if len(ids) == 0 {
		active, err := Open(dataDir, 1, log)
		if err != nil {
			return nil, err
		}
		set.order = []uint64{1}
		set.byID[1] = active
		set.active = active
		return set, nil
	}

	activeID := ids[len(ids)-1]
	for _, id := range ids {
		if id == activeID {
			continue
		}
		seg, err := OpenSealed(paths[id], id, log)
		if err != nil {
			return nil, err
		}
		set.byID[id] = seg
	}

	activeSeg, err := Open(dataDir, activeID, log)
	if err != nil {
		return nil, err
	}

	set.order = ids
	set.byID[activeID] = activeSeg
	set.active = activeSeg
	return set, nil
}

// IDs returns every known segment ID, ascending, active segment last.
func (s *Set) IDs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint64, len(s.order))
	copy(out, s.order)
	return out
}

// Active returns the current active segment.
func (s *Set) Active() *Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Get returns the segment for id, if known.
func (s *Set) Get(id uint64) (*Segment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.byID[id]
	return seg, ok
}

// Append writes rec to the active segment, rotating to a new segment first
// if the active segment's current length already exceeds maxSize. This
// mirrors the reference implementation's check-before-write rotation: a
// single record is never split across segments, and one record can still
// push a segment past maxSize before the next rotation check fires.
func (s *Set) Append(rec codec.Record) (FileIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(s.active.Len()) > s.maxSize {
		if err := s.rotateLocked(); err != nil {
			return FileIndex{}, err
		}
	}
	return s.active.Append(rec)
}

// ReadAt dereferences fi by locating the segment it names and reading the
// record at its offset.
func (s *Set) ReadAt(fi FileIndex) (codec.Record, error) {
	s.mu.Lock()
	seg, ok := s.byID[fi.SegmentID]
	s.mu.Unlock()

	if !ok {
		return codec.Record{}, kerrors.NewStorageError(nil, kerrors.ErrorCodeSegmentCorrupted, "file index references an unknown segment").
			WithSegmentID(int(fi.SegmentID)).WithOffset(int(fi.Offset))
	}
	return seg.ReadAt(fi.Offset)
}

// Rotate forces a rotation to a new active segment, even if the current
// active segment has not yet crossed maxSize. Compaction uses this to start
// a fresh segment to compact live records into.
func (s *Set) Rotate() (*Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rotateLocked(); err != nil {
		return nil, err
	}
	return s.active, nil
}

func (s *Set) rotateLocked() error {
	if err := s.active.seal(); err != nil {
		return err
	}

	nextID := s.order[len(s.order)-1] + 1
	next, err := Open(s.dataDir, nextID, s.log)
	if err != nil {
		return err
	}

	s.order = append(s.order, nextID)
	s.byID[nextID] = next
	s.active = next
	return nil
}

// Retire closes and deletes the segment with the given ID. The active
// segment may never be retired directly; callers must rotate away from it
// first, which compaction always does.
func (s *Set) Retire(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && s.active.id == id {
		return kerrors.NewStorageError(nil, kerrors.ErrorCodeIO, "cannot retire the active segment").
			WithSegmentID(int(id))
	}

	seg, ok := s.byID[id]
	if !ok {
		return nil
	}
	if err := seg.Delete(); err != nil {
		return err
	}

	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v uint64) bool { return v == id })
	return nil
}

// ForEachInOrder replays every segment from lowest ID to highest (the
// active segment last), calling visit once per decoded record in the order
// they were originally written. Used to rebuild the index on open.
func (s *Set) ForEachInOrder(visit func(id uint64, offset int64, rec codec.Record) error) error {
	for _, id := range s.IDs() {
		seg, ok := s.Get(id)
		if !ok {
			continue
		}
		if err := seg.ForEach(func(offset int64, rec codec.Record) error {
			return visit(id, offset, rec)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the active segment's append handle. Sealed segments hold
// no persistent handles.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	return s.active.Close()
}
