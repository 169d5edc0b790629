package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Op names a journaled command.
type Op string

const (
	OpOpen    Op = "OPEN"
	OpInsert  Op = "INSERT"
	OpUpdate  Op = "UPDATE"
	OpDelete  Op = "DELETE"
	OpSort    Op = "SORT"
	OpSave    Op = "SAVE"
	OpRecover Op = "RECOVER"
)

// Entry is one journaled command.
type Entry struct {
	Seq      int64          `json:"seq"`
	Session  string         `json:"session"`
	Op       Op             `json:"op"`
	RecordID *int           `json:"record_id,omitempty"`
	Detail   map[string]any `json:"detail,omitempty"`
	At       time.Time      `json:"at"`
}

// Append writes e and returns its assigned sequence number. Seq and At on
// the input are ignored; At is taken from the journal's clock.
func (j *Journal) Append(ctx context.Context, e Entry) (int64, error) {
	detail := e.Detail
	if detail == nil {
		detail = map[string]any{}
	}
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return 0, fmt.Errorf("append entry: marshal detail: %w", err)
	}

	var recordID sql.NullInt64
	if e.RecordID != nil {
		recordID = sql.NullInt64{Int64: int64(*e.RecordID), Valid: true}
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO entries (session, op, record_id, detail, at)
		VALUES (?, ?, ?, ?, ?)
	`,
		e.Session,
		string(e.Op),
		recordID,
		string(detailJSON),
		j.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("append entry: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append entry: last insert id: %w", err)
	}
	return seq, nil
}
