// Package segment implements the on-disk segment files that back an Ignite
// log: Segment, a single log file, and Set, the ordered collection of
// segments that discovers, numbers, opens, and retires them.
package segment

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/iamNilotpal/ignite/internal/codec"
	kerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/seginfo"
	"go.uber.org/zap"
)

// FileIndex identifies the first byte of a record's serialized form: a
// segment ID plus a byte offset within that segment's file. Offsets are
// stable for the life of a segment, since segments are append-only.
type FileIndex struct {
	SegmentID uint64
	Offset    int64
}

// Segment is a handle over one open segment file ("<N>.log"). The active
// segment is held open for append; sealed segments are only ever opened for
// reads, which use fresh file handles.
type Segment struct {
	id   uint64
	path string
	file *os.File // append-mode handle; nil for a sealed segment opened only for reads
	size int64
	log  *zap.SugaredLogger
}

// Open opens (creating if necessary) the segment file for id in dataDir for
// append, positioning at the current end of file so Len() and subsequent
// Append() offsets agree.
func Open(dataDir string, id uint64, log *zap.SugaredLogger) (*Segment, error) {
	path := filepath.Join(dataDir, seginfo.GenerateName(id))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, kerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = file.Close()
		return nil, kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to seek to end of segment").
			WithSegmentID(int(id)).WithPath(path)
	}

	return &Segment{id: id, path: path, file: file, size: size, log: log}, nil
}

// OpenSealed builds a Segment handle over an existing, already-sealed
// segment file without acquiring an append handle for it; its length is read
// once from the filesystem at construction time. Used when a Set discovers
// segments on startup that are not the current active segment.
func OpenSealed(path string, id uint64, log *zap.SugaredLogger) (*Segment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, kerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	return &Segment{id: id, path: path, size: info.Size(), log: log}, nil
}

// seal closes the segment's append handle (if any), converting it into a
// sealed, read-only segment in place.
func (s *Segment) seal() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// ID returns the segment's number.
func (s *Segment) ID() uint64 {
	return s.id
}

// Path returns the segment's file path.
func (s *Segment) Path() string {
	return s.path
}

// Len returns the segment's current byte length.
func (s *Segment) Len() int64 {
	return s.size
}

// Append writes the encoded record to the end of the file and returns the
// offset of its first byte (i.e. the file length before the append). The
// append-mode handle guarantees offset and length agree even under
// concurrent appenders, though Ignite never has more than one.
func (s *Segment) Append(rec codec.Record) (FileIndex, error) {
	if s.file == nil {
		return FileIndex{}, kerrors.NewStorageError(nil, kerrors.ErrorCodeIO, "cannot append to a sealed segment").
			WithSegmentID(int(s.id)).WithPath(s.path)
	}

	line := codec.Encode(rec)
	offset := s.size

	n, err := s.file.Write(line)
	if err != nil {
		return FileIndex{}, kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to append record to segment").
			WithSegmentID(int(s.id)).WithPath(s.path).WithOffset(int(offset))
	}
	s.size += int64(n)

	return FileIndex{SegmentID: s.id, Offset: offset}, nil
}

// ReadAt opens a fresh read handle, seeks to offset, reads one line, and
// decodes it. This is used for direct, index-driven reads (Get, compaction)
// where the FileIndex is known-good: any decode failure here is genuine
// Corruption, never tolerated as end-of-segment.
func (s *Segment) ReadAt(offset int64) (codec.Record, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return codec.Record{}, kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to open segment for read").
			WithSegmentID(int(s.id)).WithPath(s.path).WithOffset(int(offset))
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return codec.Record{}, kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to seek into segment").
			WithSegmentID(int(s.id)).WithPath(s.path).WithOffset(int(offset))
	}

	reader := bufio.NewReader(file)
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return codec.Record{}, kerrors.NewStorageError(err, kerrors.ErrorCodeSegmentCorrupted, "record offset has no data").
			WithSegmentID(int(s.id)).WithPath(s.path).WithOffset(int(offset))
	}

	rec, decErr := codec.Decode(line)
	if decErr != nil {
		return codec.Record{}, kerrors.NewStorageError(decErr, kerrors.ErrorCodeSegmentCorrupted, "record at offset failed to decode").
			WithSegmentID(int(s.id)).WithPath(s.path).WithOffset(int(offset))
	}
	return rec, nil
}

// Visitor is called once per successfully decoded record during a replay
// scan, with the record's starting offset.
type Visitor func(offset int64, rec codec.Record) error

// ForEach replays every record in the segment from the start, in order,
// calling visit for each. A decode failure on the segment's final line is
// treated as end-of-segment (a torn write from an unflushed append); a
// decode failure anywhere else is genuine corruption and aborts the scan.
func (s *Segment) ForEach(visit Visitor) error {
	file, err := os.Open(s.path)
	if err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to open segment for replay").
			WithSegmentID(int(s.id)).WithPath(s.path)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var offset int64

	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) == 0 && readErr == io.EOF {
			return nil
		}
		if readErr != nil && readErr != io.EOF {
			return kerrors.NewStorageError(readErr, kerrors.ErrorCodeIO, "failed to read segment during replay").
				WithSegmentID(int(s.id)).WithPath(s.path).WithOffset(int(offset))
		}

		isLast := readErr == io.EOF
		if !isLast {
			if _, peekErr := reader.Peek(1); peekErr == io.EOF {
				isLast = true
			}
		}

		rec, decErr := codec.Decode(line)
		if decErr != nil {
			if isLast {
				if s.log != nil {
					s.log.Warnw("tolerating torn trailing record as end-of-segment",
						"segmentID", s.id, "offset", offset)
				}
				return nil
			}
			return kerrors.NewStorageError(decErr, kerrors.ErrorCodeSegmentCorrupted, "segment contains an undecodable record").
				WithSegmentID(int(s.id)).WithPath(s.path).WithOffset(int(offset))
		}

		if err := visit(offset, rec); err != nil {
			return err
		}

		offset += int64(len(line))
		if isLast {
			return nil
		}
	}
}

// Close releases the segment's append handle, if any. Sealed segments
// opened only for reads have no persistent handle to close.
func (s *Segment) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Delete removes the segment's file from disk. The segment must not be used
// afterward.
func (s *Segment) Delete() error {
	if err := s.Close(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to delete retired segment").
			WithSegmentID(int(s.id)).WithPath(s.path)
	}
	return nil
}
