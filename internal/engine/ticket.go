package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stackline/tickd/internal/events"
	"github.com/stackline/tickd/internal/idgen"
	"github.com/stackline/tickd/internal/index"
	"github.com/stackline/tickd/internal/model"
	redisstore "github.com/stackline/tickd/internal/store/redis"
)

// CreateTicket holds the caller-supplied fields for a new ticket.
type CreateTicket struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Priority    model.Priority    `json:"priority"`
	Type        string            `json:"type"`
	Category    string            `json:"category"`
	Reporter    string            `json:"reporter"`
	Assignee    string            `json:"assignee,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Create validates the input, generates an id, and writes the ticket and
// its index memberships to the fast store as one atomic batch. New tickets
// always start open; only the fast tier is touched.
func (e *Engine) Create(ctx context.Context, in CreateTicket) (*model.Ticket, error) {
	const op = "engine.Create"

	now := e.now().UTC()
	id, err := idgen.Ticket(now)
	if err != nil {
		return nil, model.E(model.CodeOperation, op, "", "generate id", err)
	}

	t := &model.Ticket{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Status:      model.StatusOpen,
		Priority:    in.Priority,
		Type:        in.Type,
		Category:    in.Category,
		Reporter:    in.Reporter,
		Assignee:    in.Assignee,
		Tags:        append([]string(nil), in.Tags...),
		Metadata:    in.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := model.ValidateTicket(t); err != nil {
		return nil, err
	}

	batch, err := e.writeBatch(nil, t)
	if err != nil {
		return nil, model.E(model.CodeOperation, op, id, "encode ticket", err)
	}
	if err := e.fast.Apply(ctx, batch); err != nil {
		return nil, model.E(model.CodeConnection, op, id, "write fast store", err)
	}

	e.publish(ctx, events.TopicTicketCreated, id, events.TicketCreated{Ticket: t})
	return t, nil
}

// Get returns the current projection for id, reading the fast store first
// and falling back to the archive (closed tickets may have expired from the
// fast tier).
func (e *Engine) Get(ctx context.Context, id string) (*model.Ticket, error) {
	const op = "engine.Get"

	t, err := e.readFast(ctx, id)
	if err != nil {
		return nil, model.E(model.CodeOperation, op, id, "read fast store", err)
	}
	if t != nil {
		return t, nil
	}

	t, err = e.archive.GetTicket(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound(op, id)
	}
	if err != nil {
		return nil, model.E(model.CodeOperation, op, id, "read archive", err)
	}
	return t, nil
}

// Update merges the given changes into the current projection and applies
// the resulting transition:
//
//   - non-terminal to non-terminal: one atomic fast-store batch.
//   - non-terminal to terminal: the closure saga (see close below).
//   - terminal to non-terminal: reopen; the archive row is left untouched.
//   - terminal to terminal: field edit on an archived ticket; indexes move,
//     the retention horizon restarts, the archive is not rewritten.
func (e *Engine) Update(ctx context.Context, id string, u model.Update) (*Result, error) {
	const op = "engine.Update"

	if err := model.ValidateUpdate(u); err != nil {
		return nil, err
	}

	old, err := e.readFast(ctx, id)
	if err != nil {
		return nil, model.E(model.CodeOperation, op, id, "read fast store", err)
	}
	if old == nil {
		return nil, model.NotFound(op, id)
	}

	next := u.Apply(old)
	next.UpdatedAt = e.now().UTC()

	switch {
	case !old.Status.Terminal() && next.Status.Terminal():
		return e.close(ctx, old, next)
	case old.Status.Terminal() && !next.Status.Terminal():
		return e.reopen(ctx, old, next)
	default:
		return e.plainUpdate(ctx, old, next, u)
	}
}

// plainUpdate covers the two branches that never touch the archive: both
// statuses non-terminal, or both terminal.
func (e *Engine) plainUpdate(ctx context.Context, old, next *model.Ticket, u model.Update) (*Result, error) {
	const op = "engine.Update"

	if err := model.ValidateTicket(next); err != nil {
		return nil, err
	}

	batch, err := e.writeBatch(old, next)
	if err != nil {
		return nil, model.E(model.CodeOperation, op, next.ID, "encode ticket", err)
	}
	if err := e.fast.Apply(ctx, batch); err != nil {
		return nil, model.E(model.CodeConnection, op, next.ID, "write fast store", err)
	}

	e.publish(ctx, events.TopicTicketUpdated, next.ID,
		events.TicketUpdated{Ticket: next, Changes: changesOf(u)})
	return &Result{Ticket: next}, nil
}

// close runs the closure saga. Step order: archive transaction (begin,
// insert, commit), then the best-effort vector upsert, then the fast-store
// terminal batch. The archive commit comes first because it is the
// durability-bearing step; a fast-store failure after it is surfaced as a
// partial success flagged for reconciliation, never as grounds for
// rollback. The window between commit and the fast-store batch is the
// accepted consistency hazard; the sweep repairs detectable drift.
func (e *Engine) close(ctx context.Context, old, next *model.Ticket) (*Result, error) {
	const op = "engine.Close"
	id := next.ID

	closedAt := next.UpdatedAt
	next.ClosedAt = &closedAt
	if err := model.ValidateTicket(next); err != nil {
		return nil, err
	}

	txn, err := e.archive.Begin(ctx)
	if err != nil {
		return nil, model.E(model.CodeTransaction, op, id, "begin archive transaction", err)
	}
	if err := e.archive.InsertTicket(ctx, next, txn); err != nil {
		if rbErr := e.archive.Rollback(txn); rbErr != nil {
			e.logger.Warn("rollback after failed archive insert", "ticket_id", id, "error", rbErr)
		}
		return nil, model.E(model.CodeTransaction, op, id, "archive insert", err)
	}
	if err := e.archive.Commit(txn); err != nil {
		if rbErr := e.archive.Rollback(txn); rbErr != nil {
			e.logger.Warn("rollback after failed archive commit", "ticket_id", id, "error", rbErr)
		}
		return nil, model.E(model.CodeTransaction, op, id, "archive commit", err)
	}

	res := &Result{Ticket: next}

	// The snapshot is durable from here on. Nothing below may fail the
	// operation outright.
	e.upsertVector(ctx, res, id, "ticket", next.Title, embedText(next))

	batch, err := e.writeBatch(old, next)
	if err == nil {
		err = e.fast.Apply(ctx, batch)
	}
	if err != nil {
		res.ReconcileRequired = true
		res.warn(model.CodeOperation, fmt.Sprintf("fast-store batch failed after archive commit: %v", err))
		e.logger.Error("closure committed to archive but fast store not updated; reconciliation required",
			"ticket_id", id, "error", err)
	}

	e.publish(ctx, events.TopicTicketClosed, id,
		events.TicketClosed{Ticket: next, Reconcile: res.ReconcileRequired})
	return res, nil
}

// reopen moves a terminal ticket back into the active set: the expiry is
// cleared, residency flips, indexes follow. The archived snapshot is never
// deleted or rewritten.
func (e *Engine) reopen(ctx context.Context, old, next *model.Ticket) (*Result, error) {
	const op = "engine.Reopen"

	next.ClosedAt = nil
	if err := model.ValidateTicket(next); err != nil {
		return nil, err
	}

	batch, err := e.writeBatch(old, next)
	if err != nil {
		return nil, model.E(model.CodeOperation, op, next.ID, "encode ticket", err)
	}
	if err := e.fast.Apply(ctx, batch); err != nil {
		return nil, model.E(model.CodeConnection, op, next.ID, "write fast store", err)
	}

	e.publish(ctx, events.TopicTicketReopened, next.ID, events.TicketReopened{Ticket: next})
	return &Result{Ticket: next}, nil
}

// Delete removes the hash record and every secondary-index membership keyed
// by the ticket's last-known field values. Deleting an absent id is a
// success no-op. The archived snapshot, if any, stays.
func (e *Engine) Delete(ctx context.Context, id string) error {
	const op = "engine.Delete"

	t, err := e.readFast(ctx, id)
	if err != nil {
		return model.E(model.CodeOperation, op, id, "read fast store", err)
	}
	if t == nil {
		return nil
	}

	var batch redisstore.Batch
	batch.Del(index.TicketKey(id))
	batch.IndexOps(index.Removal(t))
	if err := e.fast.Apply(ctx, &batch); err != nil {
		return model.E(model.CodeConnection, op, id, "write fast store", err)
	}

	if e.vector != nil {
		if err := e.vector.Delete(ctx, id); err != nil {
			e.logger.Warn("vector delete failed", "ticket_id", id, "error", err)
		}
	}

	e.publish(ctx, events.TopicTicketDeleted, id, events.TicketDeleted{TicketID: id})
	return nil
}

// List returns the tickets matching the filter. Each populated filter field
// maps to one index set; multiple fields intersect. An empty filter scans
// the full created-at ordering index. Sorting and pagination happen here,
// after the candidate records are fetched.
func (e *Engine) List(ctx context.Context, f model.Filter) ([]*model.Ticket, error) {
	const op = "engine.List"

	var (
		ids []string
		err error
	)
	if keys := index.FilterKeys(f); len(keys) > 0 {
		ids, err = e.fast.Intersect(ctx, keys...)
	} else {
		ids, err = e.fast.Range(ctx, index.ByCreated, true)
	}
	if err != nil {
		return nil, model.E(model.CodeConnection, op, "", "resolve filter", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = index.TicketKey(id)
	}
	records, err := e.fast.ReadManyFields(ctx, keys)
	if err != nil {
		return nil, model.E(model.CodeConnection, op, "", "fetch records", err)
	}

	tickets := make([]*model.Ticket, 0, len(records))
	for i, fields := range records {
		if fields == nil {
			// Expired between the index read and the fetch; skip.
			continue
		}
		t, err := redisstore.ParseTicket(fields)
		if err != nil {
			return nil, model.E(model.CodeOperation, op, ids[i], "decode record", err)
		}
		tickets = append(tickets, t)
	}

	sortTickets(tickets, f.Sort)

	if f.Offset > 0 {
		if f.Offset >= len(tickets) {
			return nil, nil
		}
		tickets = tickets[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(tickets) {
		tickets = tickets[:f.Limit]
	}
	return tickets, nil
}

// readFast reads and decodes the fast-store projection, returning nil when
// the record is absent.
func (e *Engine) readFast(ctx context.Context, id string) (*model.Ticket, error) {
	fields, err := e.fast.ReadFields(ctx, index.TicketKey(id))
	if err != nil || fields == nil {
		return nil, err
	}
	return redisstore.ParseTicket(fields)
}

// writeBatch builds the atomic fast-store batch for a projection change:
// rewrite the hash record, apply the index diff, then set or clear the
// expiry so that a finite TTL exists if and only if the status is terminal.
func (e *Engine) writeBatch(old, next *model.Ticket) (*redisstore.Batch, error) {
	fields, err := redisstore.TicketFields(next)
	if err != nil {
		return nil, err
	}
	key := index.TicketKey(next.ID)

	var batch redisstore.Batch
	// Del clears residual fields (and any TTL); the expiry is re-established
	// below in the same transaction.
	batch.Del(key)
	batch.HSet(key, fields)
	batch.IndexOps(index.Diff(old, next))
	if next.Status.Terminal() {
		batch.Expire(key, e.retention)
	} else {
		batch.Persist(key)
	}
	return &batch, nil
}

// upsertVector embeds the text and upserts it, attaching a warning to the
// result on any failure. It never returns an error.
func (e *Engine) upsertVector(ctx context.Context, res *Result, refID, kind, title, text string) {
	if e.vector == nil || e.embedder == nil {
		return
	}
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		res.warn(model.CodeExternal, fmt.Sprintf("embedding failed: %v", err))
		e.logger.Warn("embedding failed", "ref_id", refID, "error", err)
		return
	}
	if err := e.vector.Upsert(ctx, refID, kind, title, vec); err != nil {
		res.warn(model.CodeExternal, fmt.Sprintf("vector upsert failed: %v", err))
		e.logger.Warn("vector upsert failed", "ref_id", refID, "error", err)
	}
}

// embedText is the text sent to the embedder for a ticket.
func embedText(t *model.Ticket) string {
	parts := []string{t.Title, t.Description, t.Resolution}
	parts = append(parts, t.Tags...)
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// changesOf flattens an update into the event payload's change map.
func changesOf(u model.Update) map[string]any {
	changes := make(map[string]any)
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.Resolution != nil {
		changes["resolution"] = *u.Resolution
	}
	if u.Status != nil {
		changes["status"] = string(*u.Status)
	}
	if u.Priority != nil {
		changes["priority"] = string(*u.Priority)
	}
	if u.Type != nil {
		changes["type"] = *u.Type
	}
	if u.Category != nil {
		changes["category"] = *u.Category
	}
	if u.Assignee != nil {
		changes["assignee"] = *u.Assignee
	}
	if u.Reporter != nil {
		changes["reporter"] = *u.Reporter
	}
	if u.Tags != nil {
		changes["tags"] = *u.Tags
	}
	if len(u.Metadata) > 0 {
		changes["metadata"] = u.Metadata
	}
	return changes
}

// sortTickets orders tickets by the requested field. A "-" prefix sorts
// descending; unknown fields fall back to the default of newest first.
func sortTickets(tickets []*model.Ticket, sortBy string) {
	desc := strings.HasPrefix(sortBy, "-")
	field := strings.TrimPrefix(sortBy, "-")

	var less func(a, b *model.Ticket) bool
	switch field {
	case "priority":
		less = func(a, b *model.Ticket) bool { return a.Priority.Score() < b.Priority.Score() }
	case "updated_at":
		less = func(a, b *model.Ticket) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "title":
		less = func(a, b *model.Ticket) bool { return a.Title < b.Title }
	case "status":
		less = func(a, b *model.Ticket) bool { return a.Status < b.Status }
	case "created_at":
		less = func(a, b *model.Ticket) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		// Default ordering is newest first.
		less = func(a, b *model.Ticket) bool { return a.CreatedAt.Before(b.CreatedAt) }
		desc = true
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		if desc {
			return less(tickets[j], tickets[i])
		}
		return less(tickets[i], tickets[j])
	})
}
