// Package export writes periodic JSONL snapshots of the durable archive to
// one or more destinations (S3-compatible object storage or a local file).
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/stackline/tickd/internal/model"
	"github.com/stackline/tickd/internal/store/postgres"
)

// Source is the archive view the exporter reads from. Implemented by
// *postgres.Store.
type Source interface {
	ListSnapshots(ctx context.Context) ([]*postgres.Snapshot, error)
}

// header is the first JSONL record written by WriteJSONL.
type header struct {
	Version       string    `json:"version"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	SnapshotCount int       `json:"snapshot_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// snapshotLine is the JSONL shape of one archived row.
type snapshotLine struct {
	Ticket     model.Ticket `json:"ticket"`
	ArchivedAt time.Time    `json:"archived_at"`
}

// WriteJSONL writes every archived snapshot as JSONL to w, oldest first.
func WriteJSONL(ctx context.Context, src Source, w io.Writer) error {
	snaps, err := src.ListSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:       "1",
		Type:          "header",
		Timestamp:     time.Now().UTC(),
		SnapshotCount: len(snaps),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, snap := range snaps {
		line := snapshotLine{Ticket: snap.Ticket, ArchivedAt: snap.ArchivedAt}
		if err := enc.Encode(record{Type: "ticket", Data: line}); err != nil {
			return fmt.Errorf("encode snapshot %s: %w", snap.Ticket.ID, err)
		}
	}

	return nil
}
