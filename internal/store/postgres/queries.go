package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stackline/tickd/internal/model"
)

// archiveColumns is the column order used for INSERT and SELECT on the
// archived_tickets table. Several of these ("type", "priority") collide
// with reserved or semi-reserved words, so every identifier is quoted.
var archiveColumns = []string{
	"id", "title", "description", "resolution",
	"status", "priority", "type", "category",
	"assignee", "reporter", "tags", "metadata",
	"created_at", "updated_at", "closed_at", "archived_at",
}

// quoteIdent quotes a column identifier, escaping embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quotedColumnList() string {
	quoted := make([]string, len(archiveColumns))
	for i, col := range archiveColumns {
		quoted[i] = quoteIdent(col)
	}
	return strings.Join(quoted, ", ")
}

func placeholderList(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Snapshot is one archived row: the ticket projection at closure time plus
// the archive timestamp.
type Snapshot struct {
	Ticket     model.Ticket
	ArchivedAt time.Time
}

// InsertTicket writes a full snapshot of the ticket into the archive within
// the given transaction. The snapshot is insert-only: re-archiving the same
// id after a reopen adds a new row rather than rewriting the old one.
func (s *Store) InsertTicket(ctx context.Context, t *model.Ticket, txn *Txn) error {
	var db executor = s.db
	if txn != nil {
		db = txn.tx
	}

	if t.ClosedAt == nil {
		return fmt.Errorf("archive ticket %s: closed_at not set", t.ID)
	}

	tags, err := encodeJSONText(t.Tags)
	if err != nil {
		return fmt.Errorf("archive ticket %s: encode tags: %w", t.ID, err)
	}
	metadata, err := encodeJSONText(t.Metadata)
	if err != nil {
		return fmt.Errorf("archive ticket %s: encode metadata: %w", t.ID, err)
	}

	query := `INSERT INTO archived_tickets (` + quotedColumnList() + `) VALUES (` +
		placeholderList(len(archiveColumns)) + `)`

	_, err = db.ExecContext(ctx, query,
		t.ID,
		t.Title,
		nullString(t.Description),
		nullString(t.Resolution),
		string(t.Status),
		string(t.Priority),
		t.Type,
		t.Category,
		nullString(t.Assignee),
		t.Reporter,
		tags,
		metadata,
		t.CreatedAt,
		t.UpdatedAt,
		*t.ClosedAt,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("archive ticket %s: %w", t.ID, err)
	}
	return nil
}

// GetTicket returns the most recent archived snapshot for id, or
// sql.ErrNoRows when the ticket was never archived.
func (s *Store) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+quotedColumnList()+` FROM archived_tickets
		 WHERE `+quoteIdent("id")+` = $1
		 ORDER BY `+quoteIdent("archived_at")+` DESC LIMIT 1`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, err
	}
	return &snap.Ticket, nil
}

// HasTicket reports whether any archived snapshot exists for id.
func (s *Store) HasTicket(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM archived_tickets WHERE `+quoteIdent("id")+` = $1 LIMIT 1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check archive for %s: %w", id, err)
	}
	return true, nil
}

// ListIDs returns the distinct set of archived ticket ids.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT `+quoteIdent("id")+` FROM archived_tickets`)
	if err != nil {
		return nil, fmt.Errorf("list archived ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan archived id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListSnapshots returns every archived row ordered by archive time. Used by
// the snapshot exporter.
func (s *Store) ListSnapshots(ctx context.Context) ([]*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quotedColumnList()+` FROM archived_tickets
		 ORDER BY `+quoteIdent("archived_at")+` ASC`)
	if err != nil {
		return nil, fmt.Errorf("list archived snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func encodeJSONText(v any) (sql.NullString, error) {
	switch vv := v.(type) {
	case []string:
		if len(vv) == 0 {
			return sql.NullString{}, nil
		}
	case map[string]string:
		if len(vv) == 0 {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
