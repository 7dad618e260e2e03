package redis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stackline/tickd/internal/model"
)

// Hash field names for the ticket projection. Array and object fields are
// JSON-encoded strings; timestamps are RFC 3339 with nanoseconds.
const (
	fID          = "id"
	fTitle       = "title"
	fDescription = "description"
	fResolution  = "resolution"
	fStatus      = "status"
	fPriority    = "priority"
	fType        = "type"
	fCategory    = "category"
	fAssignee    = "assignee"
	fReporter    = "reporter"
	fTags        = "tags"
	fCreatedAt   = "created_at"
	fUpdatedAt   = "updated_at"
	fClosedAt    = "closed_at"
	fMetadata    = "metadata"
)

// TicketFields encodes a ticket into hash fields.
func TicketFields(t *model.Ticket) (map[string]string, error) {
	fields := map[string]string{
		fID:          t.ID,
		fTitle:       t.Title,
		fDescription: t.Description,
		fResolution:  t.Resolution,
		fStatus:      string(t.Status),
		fPriority:    string(t.Priority),
		fType:        t.Type,
		fCategory:    t.Category,
		fAssignee:    t.Assignee,
		fReporter:    t.Reporter,
		fCreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
		fUpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if t.ClosedAt != nil {
		fields[fClosedAt] = t.ClosedAt.UTC().Format(time.RFC3339Nano)
	}
	if len(t.Tags) > 0 {
		data, err := json.Marshal(t.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
		fields[fTags] = string(data)
	}
	if len(t.Metadata) > 0 {
		data, err := json.Marshal(t.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		fields[fMetadata] = string(data)
	}
	return fields, nil
}

// ParseTicket decodes hash fields into a ticket.
func ParseTicket(fields map[string]string) (*model.Ticket, error) {
	t := &model.Ticket{
		ID:          fields[fID],
		Title:       fields[fTitle],
		Description: fields[fDescription],
		Resolution:  fields[fResolution],
		Status:      model.Status(fields[fStatus]),
		Priority:    model.Priority(fields[fPriority]),
		Type:        fields[fType],
		Category:    fields[fCategory],
		Assignee:    fields[fAssignee],
		Reporter:    fields[fReporter],
	}

	var err error
	if t.CreatedAt, err = parseTime(fields[fCreatedAt]); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(fields[fUpdatedAt]); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	if raw := fields[fClosedAt]; raw != "" {
		at, err := parseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("decode closed_at: %w", err)
		}
		t.ClosedAt = &at
	}
	if raw := fields[fTags]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &t.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if raw := fields[fMetadata]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &t.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return t, nil
}

// NoteFields encodes a note into hash fields.
func NoteFields(n *model.Note) (map[string]string, error) {
	fields := map[string]string{
		"id":         n.ID,
		"content":    n.Content,
		"mode":       string(n.Mode),
		"ticket_id":  n.TicketID,
		"created_at": n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if len(n.Tags) > 0 {
		data, err := json.Marshal(n.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
		fields["tags"] = string(data)
	}
	return fields, nil
}

// ParseNote decodes hash fields into a note.
func ParseNote(fields map[string]string) (*model.Note, error) {
	n := &model.Note{
		ID:       fields["id"],
		Content:  fields["content"],
		Mode:     model.NoteMode(fields["mode"]),
		TicketID: fields["ticket_id"],
	}
	var err error
	if n.CreatedAt, err = parseTime(fields["created_at"]); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if raw := fields["tags"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &n.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return n, nil
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	return time.Parse(time.RFC3339Nano, raw)
}
