package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := E(CodeTransaction, "engine.Update", "tk-20260314-abc123", "archive commit", errors.New("connection reset"))
	msg := err.Error()
	for _, want := range []string{"engine.Update", "archive commit", "transaction", "tk-20260314-abc123"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := E(CodeConnection, "redis.Apply", "", "apply batch", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{NotFound("engine.Get", "tk-x"), CodeNotFound},
		{E(CodeExternal, "qdrant.Upsert", "", "upsert", nil), CodeExternal},
		{&ValidationError{Errors: []FieldError{{Field: "title"}}}, CodeValidation},
		{errors.New("plain"), CodeOperation},
		{fmt.Errorf("wrapped: %w", NotFound("engine.Get", "tk-x")), CodeNotFound},
	}
	for _, tc := range cases {
		if got := CodeOf(tc.err); got != tc.want {
			t.Errorf("CodeOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("engine.Get", "tk-x")) {
		t.Error("expected IsNotFound = true for NotFound error")
	}
	if IsNotFound(E(CodeConnection, "redis.Apply", "", "", nil)) {
		t.Error("expected IsNotFound = false for connection error")
	}
}
