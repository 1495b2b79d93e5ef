package importer

import (
	"errors"
	"fmt"
)

// Fatal import errors. Any of these aborts the whole import with no output.
var (
	ErrIndexOutOfRange = errors.New("manifest index out of range")
	ErrNodeRevisited   = errors.New("node visited twice in one traversal")
	ErrBuilder         = errors.New("scene builder failed")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
)

// ErrUnsupported marks a condition that drops one primitive or texture while
// the rest of the import continues.
var ErrUnsupported = errors.New("unsupported")

// IndexError reports a cross-reference that points outside its list.
type IndexError struct {
	Kind  string // "accessor", "bufferView", "node", ...
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range (have %d)", e.Kind, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// SkipError explains why a primitive or texture was dropped.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "unsupported: " + e.Reason
}

func (e *SkipError) Unwrap() error {
	return ErrUnsupported
}

func skipf(format string, args ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// IsSkip returns true if err only rules out the current primitive or texture.
func IsSkip(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

func checkIndex(kind string, idx, n int) error {
	if idx < 0 || idx >= n {
		return &IndexError{Kind: kind, Index: idx, Len: n}
	}
	return nil
}
