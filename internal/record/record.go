package record

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	// IDDigits is the exact number of digits a user-typed ID must have.
	IDDigits = 7

	// MaxNameWidth is the display width limit for Name.
	MaxNameWidth = 22

	// MaxFieldLen is the rune limit for free-text fields read from a file.
	// Longer values are truncated on load, never rejected.
	MaxFieldLen = 49

	MinMark = 0.0
	MaxMark = 100.0
)

// Record is one student row.
type Record struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Programme string  `json:"programme"`
	Mark      float64 `json:"mark"`
}

// String renders the record the way it appears in a data row, minus the
// sanitization step.
func (r Record) String() string {
	return fmt.Sprintf("%d\t%s\t%s\t%.2f", r.ID, r.Name, r.Programme, r.Mark)
}

// MarkInRange reports whether m is a legal mark. NaN is never legal.
func MarkInRange(m float64) bool {
	return m >= MinMark && m <= MaxMark
}

// Patch is a partial update. A nil field means "leave unchanged".
type Patch struct {
	Name      *string
	Programme *string
	Mark      *float64
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Programme == nil && p.Mark == nil
}

// Apply writes the patch into r and reports whether any field value
// actually changed. Supplying a field equal to the current value is not a
// change.
func (p Patch) Apply(r *Record) bool {
	changed := false
	if p.Name != nil && *p.Name != r.Name {
		r.Name = *p.Name
		changed = true
	}
	if p.Programme != nil && *p.Programme != r.Programme {
		r.Programme = *p.Programme
		changed = true
	}
	if p.Mark != nil && *p.Mark != r.Mark {
		r.Mark = *p.Mark
		changed = true
	}
	return changed
}

// Field identifies a sortable column.
type Field int

const (
	FieldID Field = iota
	FieldMark
)

func (f Field) String() string {
	switch f {
	case FieldID:
		return "ID"
	case FieldMark:
		return "MARK"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

var upper = cases.Upper(language.Und)

// NormalizeToken trims and upper-cases a command or field keyword so that
// "mark", "Mark" and "MARK" compare equal.
func NormalizeToken(s string) string {
	return upper.String(strings.TrimSpace(s))
}

// ParseField maps the boundary tokens ID and MARK (any case) to a Field.
func ParseField(s string) (Field, error) {
	switch NormalizeToken(s) {
	case "ID":
		return FieldID, nil
	case "MARK":
		return FieldMark, nil
	default:
		return 0, fmt.Errorf("unknown sort field %q (want ID or MARK)", s)
	}
}

// Sanitize replaces tab, carriage return and line feed with a single space.
func Sanitize(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\r', '\n':
			return ' '
		}
		return r
	}, s)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Clean trims surrounding whitespace and NFC-normalizes user input, so
// that a composed and a decomposed "é" are stored identically.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// DisplayWidth returns the number of terminal columns s occupies. East
// Asian wide and fullwidth runes take two columns.
func DisplayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}
