package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ListOptions filters List.
type ListOptions struct {
	// Session restricts results to one session id when non-empty.
	Session string

	// Limit keeps only the most recent N entries when positive.
	Limit int
}

// List returns entries ordered by seq ascending.
//
// Returns an empty slice (not nil) if nothing matches.
func (j *Journal) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	query := `SELECT seq, session, op, record_id, detail, at FROM entries`
	var args []any
	if opts.Session != "" {
		query += ` WHERE session = ?`
		args = append(args, opts.Session)
	}
	if opts.Limit > 0 {
		// Take the newest N, then put them back in seq order.
		query = `SELECT * FROM (` + query + ` ORDER BY seq DESC LIMIT ?) ORDER BY seq ASC`
		args = append(args, opts.Limit)
	} else {
		query += ` ORDER BY seq ASC`
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Sessions returns the distinct session ids in order of first appearance.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session FROM entries
		GROUP BY session
		ORDER BY MIN(seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e        Entry
		op       string
		recordID sql.NullInt64
		detail   string
		at       string
	)
	if err := rows.Scan(&e.Seq, &e.Session, &op, &recordID, &detail, &at); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	e.Op = Op(op)
	if recordID.Valid {
		id := int(recordID.Int64)
		e.RecordID = &id
	}
	if err := json.Unmarshal([]byte(detail), &e.Detail); err != nil {
		return Entry{}, fmt.Errorf("entry %d: unmarshal detail: %w", e.Seq, err)
	}
	if len(e.Detail) == 0 {
		e.Detail = nil
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %d: parse time: %w", e.Seq, err)
	}
	e.At = t
	return e, nil
}
