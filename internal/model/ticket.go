package model

import (
	"time"
)

// Status represents the current state of a ticket.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusReview     Status = "review"
	StatusTesting    Status = "testing"
	StatusClosed     Status = "closed"
	StatusCancelled  Status = "cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusReview,
		StatusTesting, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status is terminal. A ticket entering a
// terminal status is archived and carries a retention TTL in the fast store.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// Priority is the urgency classification of a ticket.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// IsValid checks whether the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Score maps the priority to its ordering score. Unknown or missing
// priorities map to 0 and sort last.
func (p Priority) Score() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Ticket is the core work-item record.
type Ticket struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Resolution  string     `json:"resolution,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Assignee    string     `json:"assignee,omitempty"`
	Reporter    string     `json:"reporter"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`

	// Metadata is an opaque key/value bag. It is persisted but never indexed.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the ticket.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	if t.ClosedAt != nil {
		at := *t.ClosedAt
		c.ClosedAt = &at
	}
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.Metadata != nil {
		c.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// HasTag reports whether the ticket carries the given tag.
func (t *Ticket) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// Update holds a partial ticket mutation. Nil fields are left unchanged by
// Apply; non-nil fields replace the current value wholesale (tags and
// metadata included).
type Update struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Resolution  *string   `json:"resolution,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Type        *string   `json:"type,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Assignee    *string   `json:"assignee,omitempty"`
	Reporter    *string   `json:"reporter,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`

	// Metadata entries are merged key-by-key; an empty value deletes the key.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IsZero reports whether the update changes nothing.
func (u Update) IsZero() bool {
	return u.Title == nil && u.Description == nil && u.Resolution == nil &&
		u.Status == nil && u.Priority == nil && u.Type == nil &&
		u.Category == nil && u.Assignee == nil && u.Reporter == nil &&
		u.Tags == nil && len(u.Metadata) == 0
}

// Apply merges the update into a copy of the ticket and returns it.
// The receiver is not modified.
func (u Update) Apply(t *Ticket) *Ticket {
	next := t.Clone()
	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.Description != nil {
		next.Description = *u.Description
	}
	if u.Resolution != nil {
		next.Resolution = *u.Resolution
	}
	if u.Status != nil {
		next.Status = *u.Status
	}
	if u.Priority != nil {
		next.Priority = *u.Priority
	}
	if u.Type != nil {
		next.Type = *u.Type
	}
	if u.Category != nil {
		next.Category = *u.Category
	}
	if u.Assignee != nil {
		next.Assignee = *u.Assignee
	}
	if u.Reporter != nil {
		next.Reporter = *u.Reporter
	}
	if u.Tags != nil {
		next.Tags = append([]string(nil), (*u.Tags)...)
	}
	if len(u.Metadata) > 0 {
		if next.Metadata == nil {
			next.Metadata = make(map[string]string, len(u.Metadata))
		}
		for k, v := range u.Metadata {
			if v == "" {
				delete(next.Metadata, k)
			} else {
				next.Metadata[k] = v
			}
		}
	}
	return next
}
