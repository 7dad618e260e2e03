package engine

import (
	"context"
	"time"

	"github.com/stackline/tickd/internal/events"
	"github.com/stackline/tickd/internal/index"
	"github.com/stackline/tickd/internal/model"
	redisstore "github.com/stackline/tickd/internal/store/redis"
)

// Repair kinds reported by the sweep.
const (
	RepairMissingArchiveRow = "missing_archive_row"
	RepairMissingTTL        = "missing_ttl"
	RepairResidency         = "residency"
)

// Repair is one corrected drift instance.
type Repair struct {
	TicketID string `json:"ticket_id"`
	Kind     string `json:"kind"`
}

// Report summarizes one reconciliation sweep.
type Report struct {
	Checked  int      `json:"checked"`
	Repairs  []Repair `json:"repairs,omitempty"`
	Skipped  int      `json:"skipped"` // closed-set members with no fast-store record left
	Duration time.Duration
}

// Reconcile diffs closed-set residency against archive presence and repairs
// the drift the crash window between archive commit and the fast-store
// batch can leave behind. Every repair is logged and published; nothing is
// fixed silently.
func (e *Engine) Reconcile(ctx context.Context) (*Report, error) {
	const op = "engine.Reconcile"
	start := e.now()
	report := &Report{}

	closedIDs, err := e.fast.Range(ctx, index.Closed, false)
	if err != nil {
		return nil, model.E(model.CodeConnection, op, "", "scan closed set", err)
	}

	for _, id := range closedIDs {
		report.Checked++

		t, err := e.readFast(ctx, id)
		if err != nil {
			return report, model.E(model.CodeOperation, op, id, "read fast store", err)
		}
		if t == nil {
			// Expired from the fast tier; the closed-set entry is the only
			// trace left and that is the expected end state.
			report.Skipped++
			continue
		}

		if !t.Status.Terminal() {
			// The hash record is authoritative; a non-terminal ticket in the
			// closed set means an interrupted reopen. Flip residency back.
			var batch redisstore.Batch
			batch.ZRem(index.Closed, id)
			batch.ZAdd(index.Active, float64(t.CreatedAt.UnixMilli()), id)
			batch.Persist(index.TicketKey(id))
			if err := e.fast.Apply(ctx, &batch); err != nil {
				return report, model.E(model.CodeConnection, op, id, "repair residency", err)
			}
			e.repaired(ctx, report, id, RepairResidency)
			continue
		}

		archived, err := e.archive.HasTicket(ctx, id)
		if err != nil {
			return report, model.E(model.CodeOperation, op, id, "check archive", err)
		}
		if !archived {
			// Terminal in the fast store but never archived: re-run the
			// durable half of the closure from the fast-store snapshot.
			if err := e.rearchive(ctx, t); err != nil {
				return report, err
			}
			e.repaired(ctx, report, id, RepairMissingArchiveRow)
		}

		ttl, err := e.fast.TTL(ctx, index.TicketKey(id))
		if err != nil {
			return report, model.E(model.CodeConnection, op, id, "check ttl", err)
		}
		if ttl < 0 {
			// Terminal residency without a finite expiry violates the TTL
			// invariant; restore the retention horizon.
			var batch redisstore.Batch
			batch.Expire(index.TicketKey(id), e.retention)
			if err := e.fast.Apply(ctx, &batch); err != nil {
				return report, model.E(model.CodeConnection, op, id, "repair ttl", err)
			}
			e.repaired(ctx, report, id, RepairMissingTTL)
		}
	}

	report.Duration = e.now().Sub(start)
	if len(report.Repairs) > 0 {
		e.logger.Info("reconciliation sweep repaired drift",
			"checked", report.Checked, "repaired", len(report.Repairs))
	}
	return report, nil
}

func (e *Engine) rearchive(ctx context.Context, t *model.Ticket) error {
	const op = "engine.Reconcile"

	txn, err := e.archive.Begin(ctx)
	if err != nil {
		return model.E(model.CodeTransaction, op, t.ID, "begin archive transaction", err)
	}
	if err := e.archive.InsertTicket(ctx, t, txn); err != nil {
		if rbErr := e.archive.Rollback(txn); rbErr != nil {
			e.logger.Warn("rollback after failed reconcile insert", "ticket_id", t.ID, "error", rbErr)
		}
		return model.E(model.CodeTransaction, op, t.ID, "archive insert", err)
	}
	if err := e.archive.Commit(txn); err != nil {
		return model.E(model.CodeTransaction, op, t.ID, "archive commit", err)
	}
	return nil
}

func (e *Engine) repaired(ctx context.Context, report *Report, id, kind string) {
	report.Repairs = append(report.Repairs, Repair{TicketID: id, Kind: kind})
	e.logger.Warn("repaired cross-store drift", "ticket_id", id, "repair", kind)
	e.publish(ctx, events.TopicDriftRepaired, id, events.DriftRepaired{TicketID: id, Repair: kind})
}

// SweepLoop runs Reconcile on the given interval until the context is
// cancelled. Sweep errors are logged, not fatal; the next tick retries.
func (e *Engine) SweepLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.Reconcile(ctx); err != nil {
				e.logger.Warn("reconciliation sweep failed", "error", err)
			}
		}
	}
}
