// Package autosave keeps the shadow file in step with the in-memory store.
//
// A Sink stays disarmed until the primary database has been opened once in
// the session. While disarmed, Save is a silent no-op.
package autosave

import (
	"github.com/roach88/cms/internal/codec"
	"github.com/roach88/cms/internal/store"
)

// DefaultPath is the shadow file name used when none is configured.
const DefaultPath = "autosave.txt"

// Sink writes the store to the shadow path after each mutation.
type Sink struct {
	path  string
	opts  codec.Options
	armed bool
}

// New returns a disarmed sink for path.
func New(path string, opts codec.Options) *Sink {
	if path == "" {
		path = DefaultPath
	}
	return &Sink{path: path, opts: opts}
}

// Path returns the shadow file path.
func (s *Sink) Path() string {
	return s.path
}

// Arm enables saving. Call it once the primary file has been opened.
func (s *Sink) Arm() {
	s.armed = true
}

// Armed reports whether Save will write.
func (s *Sink) Armed() bool {
	return s.armed
}

// Save writes st to the shadow path. It reports whether a write happened;
// a disarmed sink returns (false, nil).
func (s *Sink) Save(st *store.Store) (bool, error) {
	if !s.armed {
		return false, nil
	}
	if err := codec.Save(st, s.path, s.opts); err != nil {
		return false, err
	}
	return true, nil
}
