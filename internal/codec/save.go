package codec

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"

	"github.com/roach88/cms/internal/record"
	"github.com/roach88/cms/internal/store"
)

// Header is the fixed first line of every table file.
const Header = "ID\tName\tProgramme\tMark\n"

// Options controls how Save writes.
type Options struct {
	// Atomic writes to a temporary file and renames it over the target,
	// so a failed save never leaves a truncated file behind.
	Atomic bool

	// Perm is the mode for newly created files. Zero means 0o644.
	Perm fs.FileMode
}

// Save writes s to path, truncating any previous content.
func Save(s *store.Store, path string, opts Options) error {
	perm := opts.Perm
	if perm == 0 {
		perm = 0o644
	}
	if opts.Atomic {
		return saveAtomic(s, path, perm)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	bw := bufio.NewWriter(f)
	if err := Encode(bw, s); err != nil {
		_ = f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

func saveAtomic(s *store.Store, path string, perm fs.FileMode) error {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() {
		_ = pf.Cleanup()
	}()

	bw := bufio.NewWriter(pf)
	if err := Encode(bw, s); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// Encode writes the header and one sanitized line per record to w.
func Encode(w io.Writer, s *store.Store) error {
	if _, err := io.WriteString(w, Header); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	for r := range s.All() {
		_, err := fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n",
			r.ID, record.Sanitize(r.Name), record.Sanitize(r.Programme), r.Mark)
		if err != nil {
			return fmt.Errorf("record %d: %w", r.ID, err)
		}
	}
	return nil
}
