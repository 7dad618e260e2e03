package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanSnapshot scans a single row into a Snapshot. The row must contain
// columns in the order defined by archiveColumns.
func scanSnapshot(row scannable) (*Snapshot, error) {
	var snap Snapshot
	var (
		description sql.NullString
		resolution  sql.NullString
		assignee    sql.NullString
		tags        sql.NullString
		metadata    sql.NullString
	)

	t := &snap.Ticket
	var closedAt sql.NullTime
	err := row.Scan(
		&t.ID,
		&t.Title,
		&description,
		&resolution,
		&t.Status,
		&t.Priority,
		&t.Type,
		&t.Category,
		&assignee,
		&t.Reporter,
		&tags,
		&metadata,
		&t.CreatedAt,
		&t.UpdatedAt,
		&closedAt,
		&snap.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	t.Resolution = resolution.String
	t.Assignee = assignee.String
	if closedAt.Valid {
		at := closedAt.Time
		t.ClosedAt = &at
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &t.Tags); err != nil {
			return nil, fmt.Errorf("decode archived tags for %s: %w", t.ID, err)
		}
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &t.Metadata); err != nil {
			return nil, fmt.Errorf("decode archived metadata for %s: %w", t.ID, err)
		}
	}
	return &snap, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
