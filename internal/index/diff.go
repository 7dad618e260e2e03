package index

import "github.com/stackline/tickd/internal/model"

// OpKind identifies a single fast-store index mutation.
type OpKind int

const (
	SetRemove OpKind = iota
	SetAdd
	ZRemove
	ZAdd
)

// Op is one index mutation. Score is meaningful only for ZAdd.
type Op struct {
	Kind   OpKind
	Key    string
	Member string
	Score  float64
}

// Diff computes the index operations that bring every secondary index in
// line with the new projection: removals of stale memberships first, then
// additions, then ordering-index upserts, then the residency move. old is
// nil on create. The returned slice is applied by the lifecycle manager as
// part of a single atomic fast-store batch.
func Diff(old, next *model.Ticket) []Op {
	var removes, adds []Op
	id := next.ID

	scalar := func(oldKey, newKey string, oldEmpty, newEmpty bool) {
		changed := old == nil || oldKey != newKey || oldEmpty != newEmpty
		if !changed {
			return
		}
		if old != nil && !oldEmpty {
			removes = append(removes, Op{Kind: SetRemove, Key: oldKey, Member: id})
		}
		if !newEmpty {
			adds = append(adds, Op{Kind: SetAdd, Key: newKey, Member: id})
		}
	}

	var o model.Ticket
	if old != nil {
		o = *old
	}

	scalar(StatusKey(o.Status), StatusKey(next.Status), o.Status == "", next.Status == "")
	scalar(PriorityKey(o.Priority), PriorityKey(next.Priority), o.Priority == "", next.Priority == "")
	scalar(TypeKey(o.Type), TypeKey(next.Type), o.Type == "", next.Type == "")
	scalar(CategoryKey(o.Category), CategoryKey(next.Category), o.Category == "", next.Category == "")
	scalar(AssigneeKey(o.Assignee), AssigneeKey(next.Assignee), o.Assignee == "", next.Assignee == "")
	scalar(ReporterKey(o.Reporter), ReporterKey(next.Reporter), o.Reporter == "", next.Reporter == "")

	// Tags: remove stale memberships, add new ones.
	oldTags := make(map[string]bool, len(o.Tags))
	for _, tag := range o.Tags {
		oldTags[tag] = true
	}
	newTags := make(map[string]bool, len(next.Tags))
	for _, tag := range next.Tags {
		newTags[tag] = true
	}
	for _, tag := range o.Tags {
		if !newTags[tag] {
			removes = append(removes, Op{Kind: SetRemove, Key: TagKey(tag), Member: id})
		}
	}
	for _, tag := range next.Tags {
		if !oldTags[tag] {
			adds = append(adds, Op{Kind: SetAdd, Key: TagKey(tag), Member: id})
		}
	}

	ops := append(removes, adds...)

	// Ordering upserts. ZAdd overwrites the score for an existing member,
	// so these are emitted unconditionally.
	ops = append(ops,
		Op{Kind: ZAdd, Key: ByCreated, Member: id, Score: float64(next.CreatedAt.UnixMilli())},
		Op{Kind: ZAdd, Key: ByUpdated, Member: id, Score: float64(next.UpdatedAt.UnixMilli())},
		Op{Kind: ZAdd, Key: ByPriority, Member: id, Score: float64(next.Priority.Score())},
	)

	// Residency move. Removing from the set the ticket is not entering is a
	// no-op when it was never there, so both halves are always emitted.
	if next.Status.Terminal() {
		closedAt := next.UpdatedAt
		if next.ClosedAt != nil {
			closedAt = *next.ClosedAt
		}
		ops = append(ops,
			Op{Kind: ZRemove, Key: Active, Member: id},
			Op{Kind: ZAdd, Key: Closed, Member: id, Score: float64(closedAt.UnixMilli())},
		)
	} else {
		ops = append(ops,
			Op{Kind: ZRemove, Key: Closed, Member: id},
			Op{Kind: ZAdd, Key: Active, Member: id, Score: float64(next.CreatedAt.UnixMilli())},
		)
	}

	return ops
}

// Removal computes the operations that erase every index membership held
// by the ticket, used on delete. The hash record itself is removed by the
// caller in the same batch.
func Removal(t *model.Ticket) []Op {
	id := t.ID
	ops := []Op{}
	if t.Status != "" {
		ops = append(ops, Op{Kind: SetRemove, Key: StatusKey(t.Status), Member: id})
	}
	if t.Priority != "" {
		ops = append(ops, Op{Kind: SetRemove, Key: PriorityKey(t.Priority), Member: id})
	}
	if t.Type != "" {
		ops = append(ops, Op{Kind: SetRemove, Key: TypeKey(t.Type), Member: id})
	}
	if t.Category != "" {
		ops = append(ops, Op{Kind: SetRemove, Key: CategoryKey(t.Category), Member: id})
	}
	if t.Assignee != "" {
		ops = append(ops, Op{Kind: SetRemove, Key: AssigneeKey(t.Assignee), Member: id})
	}
	if t.Reporter != "" {
		ops = append(ops, Op{Kind: SetRemove, Key: ReporterKey(t.Reporter), Member: id})
	}
	for _, tag := range t.Tags {
		ops = append(ops, Op{Kind: SetRemove, Key: TagKey(tag), Member: id})
	}
	ops = append(ops,
		Op{Kind: ZRemove, Key: ByCreated, Member: id},
		Op{Kind: ZRemove, Key: ByUpdated, Member: id},
		Op{Kind: ZRemove, Key: ByPriority, Member: id},
		Op{Kind: ZRemove, Key: Active, Member: id},
		Op{Kind: ZRemove, Key: Closed, Member: id},
	)
	return ops
}
