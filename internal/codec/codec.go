// Package codec serializes and deserializes Ignite's log records to and
// from the line-oriented text format described here: one record per
// line, fields separated by a single space, terminated by "\n".
//
//	set <key> <value>\n
//	rm <key>\n
//
// The byte length of the encoded line is a record's footprint in the
// segment, so Encode and the offsets internal/segment hands out must agree
// exactly — there is no framing beyond the trailing newline.
package codec

import (
	"fmt"
	"strings"

	kerrors "github.com/iamNilotpal/ignite/pkg/errors"
)

// Kind distinguishes the two record variants a line can decode to.
type Kind uint8

const (
	// KindSet marks a line that assigns a value to a key.
	KindSet Kind = iota
	// KindRemove marks a line that tombstones a key.
	KindRemove
)

// Record is the atomic unit written to and read from a segment.
type Record struct {
	Kind  Kind
	Key   string
	Value string // empty and meaningless for KindRemove
}

// NewSet builds a Set record.
func NewSet(key, value string) Record {
	return Record{Kind: KindSet, Key: key, Value: value}
}

// NewRemove builds a Remove record.
func NewRemove(key string) Record {
	return Record{Kind: KindRemove, Key: key}
}

// Encode renders a record as its on-disk line, including the trailing "\n".
func Encode(r Record) []byte {
	switch r.Kind {
	case KindRemove:
		return []byte(fmt.Sprintf("rm %s\n", r.Key))
	default:
		return []byte(fmt.Sprintf("set %s %s\n", r.Key, r.Value))
	}
}

// Decode parses a single encoded line (with or without its trailing "\n")
// back into a Record. Decoding is stateless: it has no knowledge of the
// segment or offset the line came from.
//
// "set" requires exactly three space-separated tokens; "rm" requires
// exactly two. Any other shape is a MalformedRecord error.
func Decode(line []byte) (Record, error) {
	trimmed := strings.TrimRight(string(line), "\n")
	tokens := strings.Split(trimmed, " ")

	if len(tokens) == 0 || tokens[0] == "" {
		return Record{}, malformed(trimmed)
	}

	switch tokens[0] {
	case "set":
		if len(tokens) != 3 {
			return Record{}, malformed(trimmed)
		}
		return NewSet(tokens[1], tokens[2]), nil
	case "rm":
		if len(tokens) != 2 {
			return Record{}, malformed(trimmed)
		}
		return NewRemove(tokens[1]), nil
	default:
		return Record{}, malformed(trimmed)
	}
}

// ValidateField reports whether s is a legal key or value: non-empty UTF-8
// containing neither a space (0x20) nor a newline (0x0A), enforced before a
// record is ever encoded.
func ValidateField(s string) error {
	if s == "" {
		return kerrors.NewValidationError(nil, kerrors.ErrorCodeInvalidInput, "key or value must not be empty").
			WithRule("non_empty")
	}
	if strings.ContainsAny(s, " \n") {
		return kerrors.NewValidationError(nil, kerrors.ErrorCodeInvalidInput, "key or value must not contain a space or newline").
			WithRule("no_space_or_newline").
			WithProvided(s)
	}
	return nil
}

func malformed(line string) error {
	return kerrors.NewStorageError(nil, kerrors.ErrorCodeMalformedRecord, "failed to decode log record").
		WithDetail("line", line)
}
