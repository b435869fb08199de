// Package seginfo names, discovers, and parses the on-disk segment files
// that make up an Ignite log.
//
// Filename format: <N>.log
//
// Where N is a decimal integer >= 1 with no leading zeros. Segment ordering
// reflects write ordering: the active segment is always the one with the
// highest N. This package only deals with filenames and directory listing;
// it never opens or reads a segment's contents (see internal/segment for that).
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/iamNilotpal/ignite/pkg/filesys"
)

// segmentNamePattern matches "<N>.log" where N has no leading zeros.
var segmentNamePattern = regexp.MustCompile(`^([1-9][0-9]*)\.log$`)

// GenerateName returns the filename for segment id, e.g. GenerateName(3) == "3.log".
func GenerateName(id uint64) string {
	return fmt.Sprintf("%d.log", id)
}

// ParseSegmentID extracts the numeric ID from a segment filename (not a full
// path). It returns false if name does not match the "<N>.log" pattern.
func ParseSegmentID(name string) (uint64, bool) {
	m := segmentNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}

	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Discover lists every segment ID present in dataDir, ascending, along with
// the full path of each corresponding file. Non-matching entries (including
// a foreign engine's "db"/"_sled*" layout, a pebble subdirectory, and any
// other unrelated file) are silently ignored rather than rejected.
func Discover(dataDir string) ([]uint64, map[uint64]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, map[uint64]string{}, nil
		}
		return nil, nil, err
	}

	ids := make([]uint64, 0, len(entries))
	paths := make(map[uint64]string, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := ParseSegmentID(entry.Name())
		if !ok {
			continue
		}
		ids = append(ids, id)
		paths[id] = filepath.Join(dataDir, entry.Name())
	}

	slices.Sort(ids)
	return ids, paths, nil
}

// DetectForeignEngine reports the name of a foreign engine's on-disk layout
// if dataDir contains one: "sled" for a "db" directory or any file/directory
// whose name starts with "_sled", or "alt" for a "pebble" directory (the
// alternative engine's own layout, internal/altengine). Returns "" if no
// foreign layout is present.
func DetectForeignEngine(dataDir string) (string, error) {
	exists, err := filesys.Exists(dataDir)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", nil
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == "db" || hasSledPrefix(name) {
			return "sled", nil
		}
		if name == "pebble" && entry.IsDir() {
			return "alt", nil
		}
	}
	return "", nil
}

func hasSledPrefix(name string) bool {
	const prefix = "_sled"
	return len(name) >= len(prefix) && name[:len(prefix)] == prefix
}
