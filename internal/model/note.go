package model

import "time"

// NoteMode is the classification assigned to a note by the external
// content analyzers. Modes are extensible; any non-empty value is accepted.
type NoteMode string

// Well-known modes.
const (
	ModeIdea     NoteMode = "idea"
	ModeQuestion NoteMode = "question"
	ModeDecision NoteMode = "decision"
	ModeLog      NoteMode = "log"
)

// Note is a free-form thought record. Notes have no lifecycle: they are
// never archived and carry no TTL.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Mode      NoteMode  `json:"mode,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	TicketID  string    `json:"ticket_id,omitempty"` // optional back-reference
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the note.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	return &c
}
