package events

import (
	"context"

	"github.com/stackline/tickd/internal/model"
)

// Event topic constants
const (
	TopicTicketCreated  = "tickets.ticket.created"
	TopicTicketUpdated  = "tickets.ticket.updated"
	TopicTicketClosed   = "tickets.ticket.closed"
	TopicTicketReopened = "tickets.ticket.reopened"
	TopicTicketDeleted  = "tickets.ticket.deleted"

	TopicNoteCreated = "tickets.note.created"

	// Reconciliation sweep results.
	TopicDriftRepaired = "tickets.reconcile.repaired"
)

// Event types

type TicketCreated struct {
	Ticket *model.Ticket `json:"ticket"`
}

type TicketUpdated struct {
	Ticket  *model.Ticket  `json:"ticket"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type TicketClosed struct {
	Ticket *model.Ticket `json:"ticket"`
	// Reconcile is set when the archive write succeeded but the fast-store
	// batch did not; the sweep owns the repair.
	Reconcile bool `json:"reconcile,omitempty"`
}

type TicketReopened struct {
	Ticket *model.Ticket `json:"ticket"`
}

type TicketDeleted struct {
	TicketID string `json:"ticket_id"`
}

type NoteCreated struct {
	Note *model.Note `json:"note"`
}

type DriftRepaired struct {
	TicketID string `json:"ticket_id"`
	Repair   string `json:"repair"` // e.g. "missing_archive_row", "missing_ttl"
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
