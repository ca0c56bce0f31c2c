// Package piecechain implements a piece chain: an in-memory byte buffer
// supporting fast insertion, deletion and replacement of arbitrary ranges at
// arbitrary offsets, unlimited undo/redo grouped into revisions, lazy
// iteration over byte ranges, and persistence to a file with atomic-rename
// or in-place semantics. A chain may be seeded from an on-disk file whose
// contents are memory-mapped read-only and referenced without copying.
package piecechain

import "errors"

// Argument errors
var (
	// ErrOutOfRange indicates that an offset or range is out of bounds.
	ErrOutOfRange = errors.New("offset out of range")
)

// File errors
var (
	// ErrUnsupportedFileType indicates that a seed path is neither a regular
	// file nor a block device.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrUnsafeDestination indicates that an atomic save refused to replace
	// a destination that is a symbolic link or has multiple hard links.
	ErrUnsafeDestination = errors.New("destination is a symlink or has hard links")
)

// ChainError describes the most recent failure recorded by a PieceChain.
// Message names the failing step; Err is the underlying cause, typically a
// sentinel error from this package or an *os.PathError.
type ChainError struct {
	Message string
	Err     error
}

func (e *ChainError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ChainError) Unwrap() error { return e.Err }

// fail records err in the last-error slot and returns it.
func (c *PieceChain) fail(msg string, err error) error {
	e := &ChainError{Message: msg, Err: err}
	c.lastErr = e
	return e
}
