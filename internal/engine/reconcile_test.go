package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stackline/tickd/internal/events"
	"github.com/stackline/tickd/internal/index"
	redisstore "github.com/stackline/tickd/internal/store/redis"
)

func repairKinds(report *Report) map[string]int {
	kinds := make(map[string]int)
	for _, r := range report.Repairs {
		kinds[r.Kind]++
	}
	return kinds
}

func TestReconcile_CleanStateNoRepairs(t *testing.T) {
	te := newTestEngine(t)
	tk := te.create(t, "Implement login flow")
	te.close(t, tk.ID)

	report, err := te.eng.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.Checked != 1 || len(report.Repairs) != 0 || report.Skipped != 0 {
		t.Errorf("report = %+v, want 1 checked and nothing repaired", report)
	}
}

func TestReconcile_MissingArchiveRow(t *testing.T) {
	te := newTestEngine(t)
	tk := te.create(t, "Implement login flow")
	te.close(t, tk.ID)

	// Drop the archive row to simulate a closure whose durable half was
	// lost (the inverse of the documented crash window, same repair).
	te.archive.mu.Lock()
	delete(te.archive.rows, tk.ID)
	te.archive.mu.Unlock()

	report, err := te.eng.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if repairKinds(report)[RepairMissingArchiveRow] != 1 {
		t.Errorf("repairs = %+v, want one missing_archive_row", report.Repairs)
	}
	if te.archive.snapshots(tk.ID) != 1 {
		t.Error("sweep should have re-archived the ticket")
	}
	if !te.pub.published(events.TopicDriftRepaired) {
		t.Error("repair event not published")
	}
}

func TestReconcile_MissingTTL(t *testing.T) {
	te := newTestEngine(t)
	tk := te.create(t, "Implement login flow")
	te.close(t, tk.ID)

	// Clear the expiry to simulate a terminal record without retention.
	var b redisstore.Batch
	b.Persist(index.TicketKey(tk.ID))
	if err := te.fast.Apply(context.Background(), &b); err != nil {
		t.Fatalf("inject drift: %v", err)
	}

	report, err := te.eng.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if repairKinds(report)[RepairMissingTTL] != 1 {
		t.Errorf("repairs = %+v, want one missing_ttl", report.Repairs)
	}
	if te.mr.TTL(index.TicketKey(tk.ID)) != time.Hour {
		t.Errorf("ttl = %s, want restored retention", te.mr.TTL(index.TicketKey(tk.ID)))
	}
}

func TestReconcile_InterruptedReopen(t *testing.T) {
	te := newTestEngine(t)
	tk := te.create(t, "Implement login flow")

	// An open ticket stranded in the closed set: the residency flip of a
	// reopen applied its hash write but the crash left the old membership.
	var b redisstore.Batch
	b.ZRem(index.Active, tk.ID)
	b.ZAdd(index.Closed, float64(tk.CreatedAt.UnixMilli()), tk.ID)
	if err := te.fast.Apply(context.Background(), &b); err != nil {
		t.Fatalf("inject drift: %v", err)
	}

	report, err := te.eng.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if repairKinds(report)[RepairResidency] != 1 {
		t.Errorf("repairs = %+v, want one residency", report.Repairs)
	}
	if _, err := te.mr.ZScore(index.Active, tk.ID); err != nil {
		t.Error("ticket should be back in the active set")
	}
	if _, err := te.mr.ZScore(index.Closed, tk.ID); err == nil {
		t.Error("ticket should have left the closed set")
	}
	if te.mr.TTL(index.TicketKey(tk.ID)) != 0 {
		t.Error("repaired open ticket must not carry a TTL")
	}
}

func TestReconcile_ExpiredRecordSkipped(t *testing.T) {
	te := newTestEngine(t)

	// A closed-set entry whose hash record already expired is the expected
	// end state, not drift.
	var b redisstore.Batch
	b.ZAdd(index.Closed, 1000, "tk-20260101-gone00")
	if err := te.fast.Apply(context.Background(), &b); err != nil {
		t.Fatalf("seed closed set: %v", err)
	}

	report, err := te.eng.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if report.Skipped != 1 || len(report.Repairs) != 0 {
		t.Errorf("report = %+v, want 1 skipped and nothing repaired", report)
	}
}

func TestSweepLoop_DisabledInterval(t *testing.T) {
	te := newTestEngine(t)
	done := make(chan struct{})
	go func() {
		te.eng.SweepLoop(context.Background(), 0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SweepLoop with interval 0 should return immediately")
	}
}

func TestSweepLoop_StopsOnCancel(t *testing.T) {
	te := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		te.eng.SweepLoop(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SweepLoop did not stop on context cancellation")
	}
}
