package store

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error taxonomy. Sentinel values are compared with errors.Is; an IOError
// wraps whatever the underlying file reported so callers keep the original
// message and stack without the core formatting one by hand.
var (
	// ErrInvalidFile is returned when a file's magic bytes don't match the
	// caller's config on open.
	ErrInvalidFile = errors.New("verter: invalid file (magic bytes mismatch)")
	// ErrInvalidPointer is returned when a handle is misaligned or points
	// past the end of the file.
	ErrInvalidPointer = errors.New("verter: invalid pointer")
	// ErrDeletedPointer is returned when a handle is well-formed but
	// currently sitting on the free list.
	ErrDeletedPointer = errors.New("verter: pointer refers to a deleted page")
	// ErrCorruptedFile is returned when an on-disk invariant is violated
	// mid-traversal: a DELETED page reachable from a live chain, a non-DELETED
	// page found on the free list, or a page truncated mid-read.
	ErrCorruptedFile = errors.New("verter: corrupted file")
)

// IOError wraps a failure reported by the underlying file. It unwraps to the
// original error so errors.Is/errors.As still reach it.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("verter: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func wrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: errors.Wrapf(err, "verter: %s", op)}
}
