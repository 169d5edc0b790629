package record

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSrc string

// ErrInvalid is the sentinel matched by every ValidationError.
var ErrInvalid = errors.New("invalid field")

// ValidationError reports a field that failed its format or range rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalid) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validator checks complete records against the #Student schema and the
// width rules CUE cannot express.
type Validator struct {
	student cue.Value
	fields  cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	student := v.LookupPath(cue.ParsePath("#Student"))
	if err := student.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Student: %w", err)
	}
	fields := v.LookupPath(cue.ParsePath("#Fields"))
	if err := fields.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Fields: %w", err)
	}
	return &Validator{student: student, fields: fields}, nil
}

// Validate returns a *ValidationError for the first rule r breaks.
func (v *Validator) Validate(r Record) error {
	return v.check(v.student, r)
}

// ValidateFields applies every rule except the ID range. UPDATE uses it, so
// a record loaded with a short ID can still be edited.
func (v *Validator) ValidateFields(r Record) error {
	return v.check(v.fields, r)
}

func (v *Validator) check(schema cue.Value, r Record) error {
	if math.IsNaN(r.Mark) || math.IsInf(r.Mark, 0) {
		return invalid("Mark", "must be a finite number")
	}

	val := schema.Context().Encode(r)
	if err := schema.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return schemaError(err)
	}

	if w := DisplayWidth(r.Name); w > MaxNameWidth {
		return invalid("Name", "is %d columns wide, limit is %d", w, MaxNameWidth)
	}
	if n := utf8.RuneCountInString(r.Programme); n > MaxFieldLen {
		return invalid("Programme", "is %d characters long, limit is %d", n, MaxFieldLen)
	}
	if strings.ContainsAny(r.Name+r.Programme, "\t\r\n") {
		return invalid("Name", "must not contain tabs or line breaks")
	}
	return nil
}

// schemaError maps a CUE failure to the field it concerns.
func schemaError(err error) *ValidationError {
	field := "Record"
	for _, e := range cueerrors.Errors(err) {
		if p := e.Path(); len(p) > 0 {
			field = fieldLabel(p[len(p)-1])
			break
		}
	}
	switch field {
	case "ID":
		return invalid(field, "must be a %d-digit number", IDDigits)
	case "Mark":
		return invalid(field, "must be between %.0f and %.0f", MinMark, MaxMark)
	case "Name", "Programme":
		return invalid(field, "must not be blank")
	}
	return invalid(field, "%v", err)
}

func fieldLabel(key string) string {
	switch key {
	case "id":
		return "ID"
	case "name":
		return "Name"
	case "programme":
		return "Programme"
	case "mark":
		return "Mark"
	}
	return key
}

// ParseID parses a user-typed ID: exactly IDDigits decimal digits.
func ParseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != IDDigits {
		return 0, invalid("ID", "must be exactly %d digits, got %q", IDDigits, s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, invalid("ID", "must be numeric, got %q", s)
		}
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid("ID", "%v", err)
	}
	return id, nil
}

// ParseKey parses the ID of a record to look up. Records loaded from a file
// may carry IDs of any width, so any whole number is accepted.
func ParseKey(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalid("ID", "must be a whole number, got %q", s)
	}
	return id, nil
}

// ParseMark parses a user-typed mark and checks its range.
func ParseMark(s string) (float64, error) {
	m, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, invalid("Mark", "must be a number, got %q", s)
	}
	if !MarkInRange(m) {
		return 0, invalid("Mark", "must be between %.0f and %.0f, got %s", MinMark, MaxMark, s)
	}
	return m, nil
}
