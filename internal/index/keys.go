// Package index computes the fast-store mutations needed to keep the
// secondary indexes of a ticket consistent with its hash record. It is
// pure: it performs no I/O and only emits operations for the fast-store
// adapter to apply as one atomic batch.
package index

import "github.com/stackline/tickd/internal/model"

// Ordering and residency sorted sets.
const (
	ByCreated  = "tickets:by:created"
	ByUpdated  = "tickets:by:updated"
	ByPriority = "tickets:by:priority"

	// Residency: any live ticket id is a member of exactly one of these.
	Active = "tickets:active"
	Closed = "tickets:closed"

	// Note keys.
	NotesByCreated = "notes:by:created"
)

// TicketKey is the hash key holding a ticket projection.
func TicketKey(id string) string {
	return "ticket:" + id
}

// NoteKey is the hash key holding a note.
func NoteKey(id string) string {
	return "note:" + id
}

func StatusKey(s model.Status) string {
	return "tickets:idx:status:" + string(s)
}

func PriorityKey(p model.Priority) string {
	return "tickets:idx:priority:" + string(p)
}

func TypeKey(t string) string {
	return "tickets:idx:type:" + t
}

func CategoryKey(c string) string {
	return "tickets:idx:category:" + c
}

func AssigneeKey(a string) string {
	return "tickets:idx:assignee:" + a
}

func ReporterKey(r string) string {
	return "tickets:idx:reporter:" + r
}

func TagKey(tag string) string {
	return "tickets:idx:tag:" + tag
}

func NoteTagKey(tag string) string {
	return "notes:idx:tag:" + tag
}

// FilterKeys maps each populated filter field to its index key. The
// returned keys are intersected to produce candidate ids; an empty result
// means the filter is unindexed and the caller should scan the ordering
// index instead.
func FilterKeys(f model.Filter) []string {
	var keys []string
	if f.Status != "" {
		keys = append(keys, StatusKey(f.Status))
	}
	if f.Priority != "" {
		keys = append(keys, PriorityKey(f.Priority))
	}
	if f.Type != "" {
		keys = append(keys, TypeKey(f.Type))
	}
	if f.Category != "" {
		keys = append(keys, CategoryKey(f.Category))
	}
	if f.Assignee != "" {
		keys = append(keys, AssigneeKey(f.Assignee))
	}
	if f.Reporter != "" {
		keys = append(keys, ReporterKey(f.Reporter))
	}
	for _, tag := range f.Tags {
		keys = append(keys, TagKey(tag))
	}
	return keys
}
