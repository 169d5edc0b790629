package store

import (
	"cmp"
	"fmt"
	"iter"

	"github.com/roach88/cms/internal/record"
)

// Store is an ordered collection of records keyed by ID.
type Store struct {
	rows  []record.Record
	index map[int]int // id -> position in rows
}

// New returns an empty store.
func New() *Store {
	return &Store{index: make(map[int]int)}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.rows)
}

// IsEmpty reports whether the store holds no records.
func (s *Store) IsEmpty() bool {
	return len(s.rows) == 0
}

// Insert appends r at the end.
func (s *Store) Insert(r record.Record) error {
	if _, ok := s.index[r.ID]; ok {
		return fmt.Errorf("insert %d: %w", r.ID, ErrDuplicateKey)
	}
	if !record.MarkInRange(r.Mark) {
		return fmt.Errorf("insert %d: mark %v: %w", r.ID, r.Mark, ErrOutOfRange)
	}
	s.index[r.ID] = len(s.rows)
	s.rows = append(s.rows, r)
	return nil
}

// Find returns a copy of the record with the given ID.
func (s *Store) Find(id int) (record.Record, bool) {
	pos, ok := s.index[id]
	if !ok {
		return record.Record{}, false
	}
	return s.rows[pos], true
}

// Delete removes the record with the given ID and reports whether it was
// present. The remaining records keep their relative order.
func (s *Store) Delete(id int) bool {
	pos, ok := s.index[id]
	if !ok {
		return false
	}
	copy(s.rows[pos:], s.rows[pos+1:])
	s.rows[len(s.rows)-1] = record.Record{}
	s.rows = s.rows[:len(s.rows)-1]
	delete(s.index, id)
	for i := pos; i < len(s.rows); i++ {
		s.index[s.rows[i].ID] = i
	}
	return true
}

// Update applies patch to the record with the given ID in place. It
// reports whether any field changed; an empty patch is not an error.
func (s *Store) Update(id int, patch record.Patch) (bool, error) {
	pos, ok := s.index[id]
	if !ok {
		return false, fmt.Errorf("update %d: %w", id, ErrNotFound)
	}
	if patch.Mark != nil && !record.MarkInRange(*patch.Mark) {
		return false, fmt.Errorf("update %d: mark %v: %w", id, *patch.Mark, ErrOutOfRange)
	}
	return patch.Apply(&s.rows[pos]), nil
}

// Head returns the first record.
func (s *Store) Head() (record.Record, bool) {
	if len(s.rows) == 0 {
		return record.Record{}, false
	}
	return s.rows[0], true
}

// Tail returns the last record.
func (s *Store) Tail() (record.Record, bool) {
	if len(s.rows) == 0 {
		return record.Record{}, false
	}
	return s.rows[len(s.rows)-1], true
}

// All iterates over copies of the records in current order. The sequence
// can be ranged over any number of times.
func (s *Store) All() iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for _, r := range s.rows {
			if !yield(r) {
				return
			}
		}
	}
}

// Records returns a copy of the records in current order.
func (s *Store) Records() []record.Record {
	out := make([]record.Record, len(s.rows))
	copy(out, s.rows)
	return out
}

// Clear releases every record.
func (s *Store) Clear() {
	s.rows = nil
	s.index = make(map[int]int)
}

// SortBy reorders the store in place by field. It repeats adjacent-pair
// passes, swapping only when the signed comparison is strictly positive,
// so records with equal keys never cross.
func (s *Store) SortBy(field record.Field, ascending bool) {
	sign := 1
	if !ascending {
		sign = -1
	}
	for end := len(s.rows) - 1; end > 0; end-- {
		swapped := false
		for i := 0; i < end; i++ {
			if sign*compareBy(field, s.rows[i], s.rows[i+1]) > 0 {
				s.rows[i], s.rows[i+1] = s.rows[i+1], s.rows[i]
				swapped = true
			}
		}
		if !swapped {
			break
		}
	}
	s.reindex()
}

func compareBy(field record.Field, a, b record.Record) int {
	switch field {
	case record.FieldMark:
		return cmp.Compare(a.Mark, b.Mark)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

func (s *Store) reindex() {
	clear(s.index)
	for i, r := range s.rows {
		s.index[r.ID] = i
	}
}
