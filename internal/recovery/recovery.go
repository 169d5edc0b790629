package recovery

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/roach88/cms/internal/codec"
)

// Status is the outcome of comparing the primary and shadow files.
type Status int

const (
	StatusInSync Status = iota
	StatusDiverged
	StatusNoShadow
	StatusNoPrimary
)

func (s Status) String() string {
	switch s {
	case StatusInSync:
		return "in-sync"
	case StatusDiverged:
		return "diverged"
	case StatusNoShadow:
		return "no-shadow"
	case StatusNoPrimary:
		return "no-primary"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Decision is the user's answer to the keep/discard prompt.
type Decision int

const (
	// Discard drops the shadow's changes and resyncs it from the primary.
	Discard Decision = iota
	// Keep propagates the shadow's content into the primary.
	Keep
)

func (d Decision) String() string {
	if d == Keep {
		return "keep"
	}
	return "discard"
}

// Diverged compares two files byte by byte and reports whether they differ
// anywhere, including in length. Either file failing to open is an error.
func Diverged(primaryPath, shadowPath string) (bool, error) {
	a, err := os.Open(primaryPath)
	if err != nil {
		return false, &codec.IOError{Op: "open", Path: primaryPath, Err: err}
	}
	defer func() {
		_ = a.Close()
	}()

	b, err := os.Open(shadowPath)
	if err != nil {
		return false, &codec.IOError{Op: "open", Path: shadowPath, Err: err}
	}
	defer func() {
		_ = b.Close()
	}()

	ra := bufio.NewReader(a)
	rb := bufio.NewReader(b)
	for {
		ca, errA := ra.ReadByte()
		cb, errB := rb.ReadByte()

		endA := errors.Is(errA, io.EOF)
		endB := errors.Is(errB, io.EOF)
		if errA != nil && !endA {
			return false, &codec.IOError{Op: "read", Path: primaryPath, Err: errA}
		}
		if errB != nil && !endB {
			return false, &codec.IOError{Op: "read", Path: shadowPath, Err: errB}
		}

		switch {
		case endA && endB:
			return false, nil
		case endA != endB:
			return true, nil
		case ca != cb:
			return true, nil
		}
	}
}

// Coordinator drives recovery for one primary/shadow pair.
type Coordinator struct {
	Primary string
	Shadow  string
	Options codec.Options
}

// Check reports the relationship between the two files. Missing files map
// to StatusNoPrimary or StatusNoShadow rather than errors.
func (c *Coordinator) Check() (Status, error) {
	if _, err := os.Stat(c.Primary); errors.Is(err, os.ErrNotExist) {
		return StatusNoPrimary, nil
	}
	diverged, err := Diverged(c.Primary, c.Shadow)
	if err != nil {
		if codec.IsNotExist(err) {
			var ioErr *codec.IOError
			if errors.As(err, &ioErr) && ioErr.Path == c.Shadow {
				return StatusNoShadow, nil
			}
			return StatusNoPrimary, nil
		}
		return 0, err
	}
	if diverged {
		return StatusDiverged, nil
	}
	return StatusInSync, nil
}

// Candidates loads both files independently so the caller can present them.
func (c *Coordinator) Candidates() (primary, shadow *codec.LoadResult, err error) {
	primary, err = codec.Load(c.Primary)
	if err != nil {
		return nil, nil, err
	}
	shadow, err = codec.Load(c.Shadow)
	if err != nil {
		return nil, nil, err
	}
	return primary, shadow, nil
}

// Diff returns a unified diff from the primary to the shadow, or "" when
// they are identical.
func (c *Coordinator) Diff() (string, error) {
	a, err := os.ReadFile(c.Primary)
	if err != nil {
		return "", &codec.IOError{Op: "read", Path: c.Primary, Err: err}
	}
	b, err := os.ReadFile(c.Shadow)
	if err != nil {
		return "", &codec.IOError{Op: "read", Path: c.Shadow, Err: err}
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: c.Primary,
		ToFile:   c.Shadow,
		Context:  1,
	})
}

// Resolve applies the decision and returns the records the session should
// continue with. The losing file is overwritten with the winner's exact
// bytes, so a later Check reports StatusInSync even when the winner is not
// in the form Save would produce.
func (c *Coordinator) Resolve(d Decision) (*codec.LoadResult, error) {
	from, to, op := c.Primary, c.Shadow, "discard shadow"
	if d == Keep {
		from, to, op = c.Shadow, c.Primary, "keep shadow"
	}

	data, err := os.ReadFile(from)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &codec.IOError{Op: "read", Path: from, Err: err})
	}
	res, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &codec.IOError{Op: "read", Path: from, Err: err})
	}
	if err := c.copyBytes(to, data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (c *Coordinator) copyBytes(path string, data []byte) error {
	perm := c.Options.Perm
	if perm == 0 {
		perm = 0o644
	}
	write := os.WriteFile
	if c.Options.Atomic {
		write = func(name string, data []byte, perm fs.FileMode) error {
			return renameio.WriteFile(name, data, perm)
		}
	}
	if err := write(path, data, perm); err != nil {
		return &codec.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
