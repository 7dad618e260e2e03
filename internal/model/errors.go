package model

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error classification. Every failure
// surfaced to a caller carries one, plus enough context (operation name,
// ticket id) to support retry or manual reconciliation.
type Code string

const (
	// CodeValidation marks missing or malformed input. No side effects.
	CodeValidation Code = "validation"
	// CodeNotFound marks an unknown id on update or delete.
	CodeNotFound Code = "not_found"
	// CodeConnection marks an adapter that was unreachable at call time.
	CodeConnection Code = "connection"
	// CodeTransaction marks an archive begin/commit/rollback failure,
	// always paired with a rollback attempt.
	CodeTransaction Code = "transaction"
	// CodeExternal marks a vector-adapter failure. Always non-fatal;
	// absorbed into a result warning, never propagated as an error.
	CodeExternal Code = "external_service"
	// CodeOperation marks an unexpected adapter response.
	CodeOperation Code = "operation"
)

// Error is the coded error type returned by the lifecycle manager and the
// store adapters.
type Error struct {
	Code     Code
	Op       string // operation name, e.g. "engine.Update"
	TicketID string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.TicketID != "" {
		return fmt.Sprintf("%s: %s [%s %s]", e.Op, msg, e.Code, e.TicketID)
	}
	return fmt.Sprintf("%s: %s [%s]", e.Op, msg, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a coded error. The ticket id may be empty.
func E(code Code, op, ticketID, message string, err error) *Error {
	return &Error{Code: code, Op: op, TicketID: ticketID, Message: message, Err: err}
}

// NotFound builds the standard unknown-id error.
func NotFound(op, ticketID string) *Error {
	return &Error{Code: CodeNotFound, Op: op, TicketID: ticketID, Message: "ticket not found"}
}

// CodeOf extracts the code from err, or CodeOperation if err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return CodeValidation
	}
	return CodeOperation
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
