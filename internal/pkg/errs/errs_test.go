package errs

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewError_FormatsTemplate(t *testing.T) {
	err := NewError(ErrUserNotFound, "nope")
	if err.Status != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", err.Status)
	}
	if err.Message != "No user: nope" {
		t.Fatalf("message=%q", err.Message)
	}
}

func TestNewError_StripsUnfilledTemplate(t *testing.T) {
	err := NewError(ErrRoomNotFound)
	if err.Message != "No room" {
		t.Fatalf("message=%q, want %q", err.Message, "No room")
	}
}

func TestNewError_UnauthorizedIsGeneric(t *testing.T) {
	err := NewError(ErrUnauthorized)
	if err.Status != http.StatusUnauthorized || err.Message != "Unauthorized" {
		t.Fatalf("got %d %q", err.Status, err.Message)
	}
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	err := NewError(424242)
	if err.Code != ErrUnknown || err.Status != http.StatusInternalServerError {
		t.Fatalf("got %+v", err)
	}
}

func TestNewError_UnknownHidesUnderlyingError(t *testing.T) {
	err := NewError(ErrUnknown, errors.New("pq: relation users does not exist"))
	if err.Message != "Internal Server Error" {
		t.Fatalf("message=%q leaks detail", err.Message)
	}
}

func TestNewError_DoesNotMutateTemplate(t *testing.T) {
	_ = NewError(ErrUserAlreadyExists, "alice")
	second := NewError(ErrUserAlreadyExists, "bob")
	if second.Message != "Duplicate username: bob" {
		t.Fatalf("message=%q", second.Message)
	}
}

func TestIs(t *testing.T) {
	var err error = NewError(ErrUnauthorized)
	if !Is(err, ErrUnauthorized) {
		t.Fatalf("Is should match")
	}
	if Is(err, ErrInvalidCredentials) {
		t.Fatalf("Is should not match a different code")
	}
	if Is(errors.New("x"), ErrUnauthorized) {
		t.Fatalf("plain errors never match")
	}
}

func TestEveryCodeHasStatus(t *testing.T) {
	for code, ce := range errorMap {
		if ce.Status == 0 {
			t.Fatalf("code %d has no status", code)
		}
		if ce.Code != code {
			t.Fatalf("code %d maps to CustomError with code %d", code, ce.Code)
		}
	}
}
