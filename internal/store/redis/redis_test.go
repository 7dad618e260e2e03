package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/stackline/tickd/internal/index"
	"github.com/stackline/tickd/internal/model"
)

// newTestStore spins up an in-process server and connects a store to it.
func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s := NewWithClient(rdb)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

// sIsMember checks set membership directly on the server.
func sIsMember(t *testing.T, mr *miniredis.Miniredis, key, member string) bool {
	t.Helper()
	ok, err := mr.IsMember(key, member)
	if err != nil {
		return false
	}
	return ok
}

func TestApply_EmptyBatchIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Apply(context.Background(), &Batch{}); err != nil {
		t.Fatalf("Apply empty batch: %v", err)
	}
}

func TestApply_WritesHashAndIndexes(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	var b Batch
	b.HSet("ticket:tk-1", map[string]string{"id": "tk-1", "status": "open"})
	b.SAdd(index.StatusKey(model.StatusOpen), "tk-1")
	b.ZAdd(index.Active, 1000, "tk-1")
	if err := s.Apply(ctx, &b); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	fields, err := s.ReadFields(ctx, "ticket:tk-1")
	if err != nil {
		t.Fatalf("ReadFields: %v", err)
	}
	if fields["status"] != "open" {
		t.Errorf("status = %q", fields["status"])
	}
	if !sIsMember(t, mr, index.StatusKey(model.StatusOpen), "tk-1") {
		t.Error("status index missing member")
	}
	score, err := mr.ZScore(index.Active, "tk-1")
	if err != nil || score != 1000 {
		t.Errorf("active score = %v, %v", score, err)
	}
}

func TestApply_ExpireAndPersist(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	var b Batch
	b.HSet("ticket:tk-1", map[string]string{"id": "tk-1"})
	b.Expire("ticket:tk-1", time.Hour)
	if err := s.Apply(ctx, &b); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	ttl, err := s.TTL(ctx, "ticket:tk-1")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("ttl = %s, want finite and at most 1h", ttl)
	}

	var p Batch
	p.Persist("ticket:tk-1")
	if err := s.Apply(ctx, &p); err != nil {
		t.Fatalf("Apply persist: %v", err)
	}
	ttl, err = s.TTL(ctx, "ticket:tk-1")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl >= 0 {
		t.Errorf("expected no expiry after persist, ttl = %s", ttl)
	}
	if mr.TTL("ticket:tk-1") != 0 {
		t.Errorf("server still holds a ttl: %s", mr.TTL("ticket:tk-1"))
	}
}

func TestApply_DelClearsResidualFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var first Batch
	first.HSet("ticket:tk-1", map[string]string{"id": "tk-1", "assignee": "noor"})
	if err := s.Apply(ctx, &first); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// A rewrite deletes the key before re-setting so stale fields vanish.
	var second Batch
	second.Del("ticket:tk-1")
	second.HSet("ticket:tk-1", map[string]string{"id": "tk-1"})
	if err := s.Apply(ctx, &second); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	fields, err := s.ReadFields(ctx, "ticket:tk-1")
	if err != nil {
		t.Fatalf("ReadFields: %v", err)
	}
	if _, ok := fields["assignee"]; ok {
		t.Error("stale assignee field survived the rewrite")
	}
}

func TestReadFields_AbsentIsNil(t *testing.T) {
	s, _ := newTestStore(t)
	fields, err := s.ReadFields(context.Background(), "ticket:nope")
	if err != nil {
		t.Fatalf("ReadFields: %v", err)
	}
	if fields != nil {
		t.Errorf("expected nil for absent key, got %v", fields)
	}
}

func TestReadManyFields_IndexAligned(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var b Batch
	b.HSet("ticket:tk-1", map[string]string{"id": "tk-1"})
	b.HSet("ticket:tk-3", map[string]string{"id": "tk-3"})
	if err := s.Apply(ctx, &b); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	out, err := s.ReadManyFields(ctx, []string{"ticket:tk-1", "ticket:tk-2", "ticket:tk-3"})
	if err != nil {
		t.Fatalf("ReadManyFields: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0] == nil || out[0]["id"] != "tk-1" {
		t.Errorf("out[0] = %v", out[0])
	}
	if out[1] != nil {
		t.Errorf("absent key should yield nil, got %v", out[1])
	}
	if out[2] == nil || out[2]["id"] != "tk-3" {
		t.Errorf("out[2] = %v", out[2])
	}
}

func TestIntersect(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var b Batch
	b.SAdd("idx:a", "tk-1")
	b.SAdd("idx:a", "tk-2")
	b.SAdd("idx:b", "tk-2")
	b.SAdd("idx:b", "tk-3")
	if err := s.Apply(ctx, &b); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, err := s.Intersect(ctx, "idx:a", "idx:b")
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if len(got) != 1 || got[0] != "tk-2" {
		t.Errorf("Intersect = %v, want [tk-2]", got)
	}

	single, err := s.Intersect(ctx, "idx:a")
	if err != nil {
		t.Fatalf("Intersect single: %v", err)
	}
	if len(single) != 2 {
		t.Errorf("single-key intersect = %v", single)
	}
}

func TestRange_Order(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var b Batch
	b.ZAdd(index.ByCreated, 1, "tk-old")
	b.ZAdd(index.ByCreated, 2, "tk-mid")
	b.ZAdd(index.ByCreated, 3, "tk-new")
	if err := s.Apply(ctx, &b); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	asc, err := s.Range(ctx, index.ByCreated, false)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if asc[0] != "tk-old" || asc[2] != "tk-new" {
		t.Errorf("ascending = %v", asc)
	}

	desc, err := s.Range(ctx, index.ByCreated, true)
	if err != nil {
		t.Fatalf("Range rev: %v", err)
	}
	if desc[0] != "tk-new" || desc[2] != "tk-old" {
		t.Errorf("descending = %v", desc)
	}
}

func TestApply_IndexOps(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	var b Batch
	b.IndexOps([]index.Op{
		{Kind: index.SetAdd, Key: "idx:a", Member: "tk-1"},
		{Kind: index.ZAdd, Key: index.Active, Member: "tk-1", Score: 42},
		{Kind: index.ZRemove, Key: index.Closed, Member: "tk-1"},
	})
	if err := s.Apply(ctx, &b); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !sIsMember(t, mr, "idx:a", "tk-1") {
		t.Error("SetAdd op not applied")
	}
	if score, err := mr.ZScore(index.Active, "tk-1"); err != nil || score != 42 {
		t.Errorf("ZAdd op score = %v, %v", score, err)
	}

	var rm Batch
	rm.IndexOps([]index.Op{
		{Kind: index.SetRemove, Key: "idx:a", Member: "tk-1"},
	})
	if err := s.Apply(ctx, &rm); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if sIsMember(t, mr, "idx:a", "tk-1") {
		t.Error("SetRemove op not applied")
	}
}
