// Package prompt implements the bounded reprompt loops the shell uses for
// confirmations and sort choices.
//
// Each loop is a small state machine: it stays in StateAsking until a line
// parses, moving to StateConfirmed with the value, or hits end of input and
// moves to StateCancelled. It never recurses and never gives up on its own.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/cms/internal/record"
)

// State is a loop state. Only StateConfirmed and StateCancelled are ever
// returned to callers.
type State int

const (
	StateAsking State = iota
	StateConfirmed
	StateCancelled
)

// Result is the terminal state of a prompt and, when confirmed, its value.
type Result[T any] struct {
	State State
	Value T
}

// Confirmed reports whether the user supplied a valid answer.
func (r Result[T]) Confirmed() bool {
	return r.State == StateConfirmed
}

// Reader reads answers line by line and writes questions to out.
type Reader struct {
	br  *bufio.Reader
	out io.Writer
}

// NewReader wraps in and out.
func NewReader(in io.Reader, out io.Writer) *Reader {
	return &Reader{br: bufio.NewReader(in), out: out}
}

// Line writes prefix and returns the next input line without its
// terminator. It returns io.EOF once input is exhausted and nothing was read.
func (r *Reader) Line(prefix string) (string, error) {
	if prefix != "" {
		fmt.Fprint(r.out, prefix)
	}
	line, err := r.br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ask loops until parse accepts a line or input ends.
func ask[T any](r *Reader, question, retry string, parse func(string) (T, bool)) (Result[T], error) {
	state := StateAsking
	prefix := question
	for state == StateAsking {
		line, err := r.Line(prefix)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			state = StateCancelled
			continue
		}
		if err != nil {
			return Result[T]{}, err
		}
		if v, ok := parse(record.NormalizeToken(line)); ok {
			return Result[T]{State: StateConfirmed, Value: v}, nil
		}
		prefix = retry
	}
	return Result[T]{State: state}, nil
}

// YesNo asks a yes/no question. Callers treat a cancelled result as "no".
func (r *Reader) YesNo(question string) (Result[bool], error) {
	return ask(r, question, "Please type Y or N: ", func(s string) (bool, bool) {
		switch s {
		case "Y", "YES":
			return true, true
		case "N", "NO":
			return false, true
		}
		return false, false
	})
}

// SortField asks for ID or MARK.
func (r *Reader) SortField(question string) (Result[record.Field], error) {
	return ask(r, question, "Please type ID or MARK: ", func(s string) (record.Field, bool) {
		f, err := record.ParseField(s)
		return f, err == nil
	})
}

// Direction asks for ascending or descending. The value is true for
// ascending.
func (r *Reader) Direction(question string) (Result[bool], error) {
	return ask(r, question, "Please type ASC or DESC: ", ParseDirection)
}

// ParseDirection maps ASC/DESC and their long forms (already normalized)
// to ascending=true/false.
func ParseDirection(s string) (bool, bool) {
	switch record.NormalizeToken(s) {
	case "A", "ASC", "ASCENDING":
		return true, true
	case "D", "DESC", "DESCENDING":
		return false, true
	}
	return false, false
}
