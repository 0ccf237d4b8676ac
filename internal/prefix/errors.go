// internal/prefix/errors.go
package prefix

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPrefix is returned when the underscore structure a decoding
	// step relies on is missing.
	ErrMalformedPrefix = errors.New("malformed prefix")
	// ErrUnresolvedCoarseAnchor is returned when a terminal `mg_levels_<n>`
	// segment is applied before any `mg_coarse` anchor exists for the node.
	ErrUnresolvedCoarseAnchor = errors.New("unresolved multigrid coarse anchor")
	// ErrUnknownNodeIndex is returned when a hierarchy node index is not
	// present in the session registry.
	ErrUnknownNodeIndex = errors.New("unknown hierarchy node index")
)

// Error describes a decoding failure at a position in a raw prefix.
type Error struct {
	Prefix string
	Offset int
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("prefix %q at offset %d: %v", e.Prefix, e.Offset, e.Err)
	}
	return fmt.Sprintf("prefix %q at offset %d: %v: %s", e.Prefix, e.Offset, e.Err, e.Reason)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *Error) Unwrap() error {
	return e.Err
}

// Malformed builds an ErrMalformedPrefix error for raw at offset.
func Malformed(raw string, offset int, format string, args ...any) *Error {
	return &Error{
		Prefix: raw,
		Offset: offset,
		Reason: fmt.Sprintf(format, args...),
		Err:    ErrMalformedPrefix,
	}
}
