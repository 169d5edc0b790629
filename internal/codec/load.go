package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/cms/internal/record"
	"github.com/roach88/cms/internal/store"
)

// LoadResult is a populated store plus what was skipped on the way.
type LoadResult struct {
	Store   *store.Store
	Loaded  int
	Skipped []*ParseError

	// NoHeader is set when the input had no lines at all.
	NoHeader bool
}

// Load opens path and decodes it into a new store.
func Load(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	res, err := Decode(f)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return res, nil
}

// Decode reads the table format from r. The returned error is only ever a
// read failure; malformed rows end up in LoadResult.Skipped.
func Decode(r io.Reader) (*LoadResult, error) {
	res := &LoadResult{Store: store.New()}
	br := bufio.NewReader(r)

	// The header is skipped without being validated.
	if _, err := readLine(br); err != nil {
		if errors.Is(err, io.EOF) {
			res.NoHeader = true
			return res, nil
		}
		return nil, err
	}

	lineNo := 1
	for {
		line, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		lineNo++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		rec, perr := parseRow(line, lineNo)
		if perr != nil {
			res.Skipped = append(res.Skipped, perr)
			continue
		}
		if err := res.Store.Insert(rec); err != nil {
			res.Skipped = append(res.Skipped, insertError(lineNo, rec, err))
			continue
		}
		res.Loaded++
	}
	return res, nil
}

// readLine returns the next line including its terminator. A final line
// without a terminator is still returned; io.EOF is only reported when
// nothing was read.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

var ordinals = [...]string{"1st", "2nd", "3rd"}

func parseRow(line string, lineNo int) (record.Record, *ParseError) {
	var fields [4]string
	rest := line
	for i := 0; i < 3; i++ {
		before, after, ok := strings.Cut(rest, "\t")
		if !ok {
			return record.Record{}, &ParseError{
				Line:    lineNo,
				Reason:  ReasonMissingTab,
				Message: fmt.Sprintf("need 4 fields (no %s TAB)", ordinals[i]),
			}
		}
		fields[i] = before
		rest = after
	}
	fields[3] = rest

	id, ok := leadingInt(fields[0])
	if !ok {
		return record.Record{}, &ParseError{
			Line:    lineNo,
			Reason:  ReasonBadID,
			Message: fmt.Sprintf("bad ID %q", fields[0]),
		}
	}

	mark, ok := leadingFloat(fields[3])
	if !ok {
		return record.Record{}, &ParseError{
			Line:    lineNo,
			Reason:  ReasonBadMark,
			Message: fmt.Sprintf("bad Mark %q", fields[3]),
		}
	}

	return record.Record{
		ID:        id,
		Name:      record.Truncate(fields[1], record.MaxFieldLen),
		Programme: record.Truncate(fields[2], record.MaxFieldLen),
		Mark:      mark,
	}, nil
}

func insertError(lineNo int, rec record.Record, err error) *ParseError {
	pe := &ParseError{Line: lineNo, Err: err}
	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		pe.Reason = ReasonDuplicate
		pe.Message = fmt.Sprintf("duplicate ID %d, first occurrence kept", rec.ID)
	case errors.Is(err, store.ErrOutOfRange):
		pe.Reason = ReasonMarkRange
		pe.Message = fmt.Sprintf("mark %.2f outside 0..100", rec.Mark)
	default:
		pe.Message = err.Error()
	}
	return pe
}

// leadingInt parses the longest integer prefix of s after leading spaces,
// the way strtol does. ok is false when no digit is consumed.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// leadingFloat parses the longest decimal floating-point prefix of s after
// leading spaces. ok is false when no digit is consumed.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	mantissa := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		mantissa++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			mantissa++
		}
	}
	if mantissa == 0 {
		return 0, false
	}
	// An exponent only counts if at least one digit follows it.
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		start := exp
		for exp < len(s) && isDigit(s[exp]) {
			exp++
		}
		if exp > start {
			end = exp
		}
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
