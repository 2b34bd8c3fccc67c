package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ChangeLogEntry records one status transition.
type ChangeLogEntry struct {
	User      string    `json:"user"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityLogEntry records one field-level edit on a check receipt.
type ActivityLogEntry struct {
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangeLog is an append-only list of status transitions stored as JSON text.
type ChangeLog []ChangeLogEntry

// Append returns a new log with entries added; l is left untouched.
func (l ChangeLog) Append(entries ...ChangeLogEntry) ChangeLog {
	out := make(ChangeLog, 0, len(l)+len(entries))
	out = append(out, l...)
	return append(out, entries...)
}

func (l ChangeLog) Value() (driver.Value, error) {
	return marshalLog(l)
}

func (l *ChangeLog) Scan(src any) error {
	return scanLog(src, l)
}

// ActivityLog is an append-only list of edit descriptions stored as JSON text.
type ActivityLog []ActivityLogEntry

// Append returns a new log with entries added; l is left untouched.
func (l ActivityLog) Append(entries ...ActivityLogEntry) ActivityLog {
	out := make(ActivityLog, 0, len(l)+len(entries))
	out = append(out, l...)
	return append(out, entries...)
}

func (l ActivityLog) Value() (driver.Value, error) {
	return marshalLog(l)
}

func (l *ActivityLog) Scan(src any) error {
	return scanLog(src, l)
}

func marshalLog[T any](entries []T) (driver.Value, error) {
	if entries == nil {
		return "[]", nil
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanLog[T any](src any, dst *T) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported log column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
