package store

import "github.com/roach88/cms/internal/record"

// Holder is the record that set an extreme mark.
type Holder struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Mark float64 `json:"mark"`
}

// Summary aggregates marks across the store.
type Summary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Max     Holder  `json:"max"`
	Min     Holder  `json:"min"`
}

// Summarize computes count, average, highest and lowest mark. On ties the
// record encountered first in store order holds the extreme. ok is false
// for an empty store.
func (s *Store) Summarize() (sum Summary, ok bool) {
	if len(s.rows) == 0 {
		return Summary{}, false
	}
	first := s.rows[0]
	sum.Max = holderOf(first)
	sum.Min = holderOf(first)

	total := 0.0
	for _, r := range s.rows {
		total += r.Mark
		if r.Mark > sum.Max.Mark {
			sum.Max = holderOf(r)
		}
		if r.Mark < sum.Min.Mark {
			sum.Min = holderOf(r)
		}
	}
	sum.Count = len(s.rows)
	sum.Average = total / float64(sum.Count)
	return sum, true
}

func holderOf(r record.Record) Holder {
	return Holder{ID: r.ID, Name: r.Name, Mark: r.Mark}
}
