package model

import (
	"strings"
	"testing"
	"time"
)

// validTicket returns a Ticket that passes all validation rules.
func validTicket() Ticket {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return Ticket{
		ID:        "tk-20260314-abc123",
		Title:     "Implement login flow",
		Status:    StatusOpen,
		Priority:  PriorityMedium,
		Type:      "task",
		Category:  "auth",
		Reporter:  "mika",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// fieldErrors extracts a *ValidationError from err or fails the test.
func fieldErrors(t *testing.T, err error) []FieldError {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve.Errors
}

// hasFieldError reports whether the error list contains an error for the given field.
func hasFieldError(errs []FieldError, field string) bool {
	for _, fe := range errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func TestValidateTicket_Valid(t *testing.T) {
	tk := validTicket()
	if err := ValidateTicket(&tk); err != nil {
		t.Errorf("expected no error for valid ticket, got: %v", err)
	}
}

func TestValidateTicket_TitleRequired(t *testing.T) {
	tk := validTicket()
	tk.Title = ""
	errs := fieldErrors(t, ValidateTicket(&tk))
	if !hasFieldError(errs, "title") {
		t.Error("expected error on field 'title' for empty title")
	}
}

func TestValidateTicket_TitleWhitespaceOnly(t *testing.T) {
	tk := validTicket()
	tk.Title = "   \t\n  "
	errs := fieldErrors(t, ValidateTicket(&tk))
	if !hasFieldError(errs, "title") {
		t.Error("expected error on field 'title' for whitespace-only title")
	}
}

func TestValidateTicket_TitleTooLong(t *testing.T) {
	tk := validTicket()
	tk.Title = strings.Repeat("a", 501)
	errs := fieldErrors(t, ValidateTicket(&tk))
	if !hasFieldError(errs, "title") {
		t.Error("expected error on field 'title' for title exceeding 500 chars")
	}
}

func TestValidateTicket_TitleExactly500(t *testing.T) {
	tk := validTicket()
	tk.Title = strings.Repeat("a", 500)
	if err := ValidateTicket(&tk); err != nil {
		t.Errorf("title with exactly 500 chars should be valid, got: %v", err)
	}
}

func TestValidateTicket_TitleRuneCounted(t *testing.T) {
	tk := validTicket()
	tk.Title = strings.Repeat("ü", 500)
	if err := ValidateTicket(&tk); err != nil {
		t.Errorf("500-rune multibyte title should be valid, got: %v", err)
	}
}

func TestValidateTicket_InvalidStatus(t *testing.T) {
	tk := validTicket()
	tk.Status = Status("archived")
	errs := fieldErrors(t, ValidateTicket(&tk))
	if !hasFieldError(errs, "status") {
		t.Error("expected error on field 'status' for unknown value")
	}
}

func TestValidateTicket_InvalidPriority(t *testing.T) {
	tk := validTicket()
	tk.Priority = Priority("urgent")
	errs := fieldErrors(t, ValidateTicket(&tk))
	if !hasFieldError(errs, "priority") {
		t.Error("expected error on field 'priority' for unknown value")
	}
}

func TestValidateTicket_RequiredFields(t *testing.T) {
	tk := validTicket()
	tk.Type = ""
	tk.Category = " "
	tk.Reporter = ""
	errs := fieldErrors(t, ValidateTicket(&tk))
	for _, field := range []string{"type", "category", "reporter"} {
		if !hasFieldError(errs, field) {
			t.Errorf("expected error on field %q", field)
		}
	}
}

func TestValidateTicket_TerminalRequiresClosedAt(t *testing.T) {
	tk := validTicket()
	tk.Status = StatusClosed
	errs := fieldErrors(t, ValidateTicket(&tk))
	if !hasFieldError(errs, "closed_at") {
		t.Error("expected error on field 'closed_at' for terminal ticket without closed_at")
	}
}

func TestValidateTicket_NonTerminalRejectsClosedAt(t *testing.T) {
	tk := validTicket()
	at := tk.CreatedAt
	tk.ClosedAt = &at
	errs := fieldErrors(t, ValidateTicket(&tk))
	if !hasFieldError(errs, "closed_at") {
		t.Error("expected error on field 'closed_at' for open ticket carrying closed_at")
	}
}

func TestValidateTicket_TerminalWithClosedAtValid(t *testing.T) {
	tk := validTicket()
	tk.Status = StatusCancelled
	at := tk.UpdatedAt
	tk.ClosedAt = &at
	if err := ValidateTicket(&tk); err != nil {
		t.Errorf("cancelled ticket with closed_at should be valid, got: %v", err)
	}
}

func TestValidateTicket_EmptyTag(t *testing.T) {
	tk := validTicket()
	tk.Tags = []string{"auth", ""}
	errs := fieldErrors(t, ValidateTicket(&tk))
	if !hasFieldError(errs, "tags") {
		t.Error("expected error on field 'tags' for empty tag")
	}
}

func TestValidateUpdate_Empty(t *testing.T) {
	errs := fieldErrors(t, ValidateUpdate(Update{}))
	if !hasFieldError(errs, "update") {
		t.Error("expected error for update with no fields")
	}
}

func TestValidateUpdate_InvalidStatus(t *testing.T) {
	s := Status("done")
	errs := fieldErrors(t, ValidateUpdate(Update{Status: &s}))
	if !hasFieldError(errs, "status") {
		t.Error("expected error on field 'status' for unknown value")
	}
}

func TestValidateUpdate_EmptyTitle(t *testing.T) {
	title := "  "
	errs := fieldErrors(t, ValidateUpdate(Update{Title: &title}))
	if !hasFieldError(errs, "title") {
		t.Error("expected error on field 'title' for whitespace-only title")
	}
}

func TestValidateUpdate_Valid(t *testing.T) {
	p := PriorityHigh
	if err := ValidateUpdate(Update{Priority: &p}); err != nil {
		t.Errorf("expected no error for priority-only update, got: %v", err)
	}
}

func TestValidateNote_ContentRequired(t *testing.T) {
	n := Note{ID: "nt-20260314-xyz789"}
	errs := fieldErrors(t, ValidateNote(&n))
	if !hasFieldError(errs, "content") {
		t.Error("expected error on field 'content' for empty content")
	}
}

func TestValidateNote_Valid(t *testing.T) {
	n := Note{ID: "nt-20260314-xyz789", Content: "remember to rotate keys"}
	if err := ValidateNote(&n); err != nil {
		t.Errorf("expected no error for valid note, got: %v", err)
	}
}
