package codec

import (
	"errors"
	"fmt"
	"io/fs"
)

// IOError reports a file that could not be opened, read, written or closed.
type IOError struct {
	Op   string // "open", "read", "write", "close"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsNotExist reports whether err is an IOError caused by a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Reason categorizes a skipped row.
type Reason string

const (
	ReasonMissingTab Reason = "MISSING_TAB"
	ReasonBadID      Reason = "BAD_ID"
	ReasonBadMark    Reason = "BAD_MARK"
	ReasonMarkRange  Reason = "MARK_OUT_OF_RANGE"
	ReasonDuplicate  Reason = "DUPLICATE_ID"
)

// ParseError describes one skipped row. Line is 1-based and counts the
// header, so the first data row is line 2.
type ParseError struct {
	Line    int
	Reason  Reason
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
