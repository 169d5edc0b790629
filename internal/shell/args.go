package shell

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/roach88/cms/internal/record"
)

// Argument keys, normalized.
const (
	keyID        = "ID"
	keyName      = "NAME"
	keyProgramme = "PROGRAMME"
	keyMark      = "MARK"
)

var keyPattern = regexp.MustCompile(`(?i)(?:^|\s)(ID|NAME|PROGRAMME|MARK)\s*=`)

// splitCommand separates the command keyword from the rest of the line.
func splitCommand(line string) (cmd, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return record.NormalizeToken(line), ""
	}
	return record.NormalizeToken(line[:i]), strings.TrimSpace(line[i:])
}

// parseArgs splits "ID=2301234 Name=Joshua Chen Mark=70" into its keys.
// A value extends to the start of the next known key.
func parseArgs(s string) (map[string]string, error) {
	out := map[string]string{}
	locs := keyPattern.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		if rest := strings.TrimSpace(s); rest != "" {
			return nil, fmt.Errorf("expected KEY=value arguments, got %q", rest)
		}
		return out, nil
	}
	if lead := strings.TrimSpace(s[:locs[0][0]]); lead != "" {
		return nil, fmt.Errorf("unexpected %q before the first KEY=value", lead)
	}
	for i, loc := range locs {
		key := record.NormalizeToken(s[loc[2]:loc[3]])
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%s given more than once", key)
		}
		out[key] = strings.TrimSpace(s[loc[1]:end])
	}
	return out, nil
}

// requireID extracts the ID argument of a lookup. Unlike INSERT it accepts
// any whole number, so records loaded with short IDs stay reachable.
func requireID(args map[string]string) (int, error) {
	raw, ok := args[keyID]
	if !ok {
		return 0, errors.New("missing ID=<id>")
	}
	return record.ParseKey(raw)
}
