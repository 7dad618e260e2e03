package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// ValidateTicket checks a Ticket for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the ticket is valid.
func ValidateTicket(t *Ticket) error {
	var ve ValidationError

	if strings.TrimSpace(t.ID) == "" {
		ve.add("id", "is required")
	}

	// Title: required and at most 500 characters.
	title := strings.TrimSpace(t.Title)
	if title == "" {
		ve.add("title", "is required")
	} else if len([]rune(title)) > 500 {
		ve.add("title", "must be 500 characters or fewer")
	}

	// Status: must be a valid enum value (closed set).
	if !t.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", t.Status))
	}

	// Priority: must be a valid enum value (closed set).
	if !t.Priority.IsValid() {
		ve.add("priority", fmt.Sprintf("invalid value %q", t.Priority))
	}

	if strings.TrimSpace(t.Type) == "" {
		ve.add("type", "is required")
	}
	if strings.TrimSpace(t.Category) == "" {
		ve.add("category", "is required")
	}
	if strings.TrimSpace(t.Reporter) == "" {
		ve.add("reporter", "is required")
	}

	// ClosedAt consistency with Status.
	if t.Status.Terminal() && t.ClosedAt == nil {
		ve.add("closed_at", "must be set on a terminal ticket")
	}
	if !t.Status.Terminal() && t.ClosedAt != nil {
		ve.add("closed_at", "must be unset on a non-terminal ticket")
	}

	for _, tag := range t.Tags {
		if strings.TrimSpace(tag) == "" {
			ve.add("tags", "must not contain empty tags")
			break
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateUpdate checks an Update for values that can never be applied.
func ValidateUpdate(u Update) error {
	var ve ValidationError

	if u.IsZero() {
		ve.add("update", "no fields to update")
	}
	if u.Status != nil && !u.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", *u.Status))
	}
	if u.Priority != nil && !u.Priority.IsValid() {
		ve.add("priority", fmt.Sprintf("invalid value %q", *u.Priority))
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		ve.add("title", "must not be empty")
	}
	if u.Type != nil && strings.TrimSpace(*u.Type) == "" {
		ve.add("type", "must not be empty")
	}
	if u.Reporter != nil && strings.TrimSpace(*u.Reporter) == "" {
		ve.add("reporter", "must not be empty")
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateNote checks a Note for constraint violations.
func ValidateNote(n *Note) error {
	var ve ValidationError

	if strings.TrimSpace(n.ID) == "" {
		ve.add("id", "is required")
	}
	if strings.TrimSpace(n.Content) == "" {
		ve.add("content", "is required")
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
