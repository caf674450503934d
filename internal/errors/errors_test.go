package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainErrorIsAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := WrapError(ErrInternal, cause)

	if !errors.Is(wrapped, ErrInternal) {
		t.Fatal("wrapped error does not match its sentinel")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("wrapped error lost its cause")
	}
	if errors.Is(wrapped, ErrBadCredentials) {
		t.Fatal("wrapped error matches an unrelated sentinel")
	}
}

func TestWrapErrorKeepsSentinelUntouched(t *testing.T) {
	cause := errors.New("boom")
	wrapped := WrapError(ErrBadCredentials, cause)

	if wrapped == ErrBadCredentials {
		t.Fatal("WrapError mutated the sentinel")
	}
	if ErrBadCredentials.Err != nil {
		t.Fatal("sentinel carries a cause after wrapping")
	}
	if wrapped.Code != ErrBadCredentials.Code {
		t.Fatalf("code = %q, want %q", wrapped.Code, ErrBadCredentials.Code)
	}
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrBadCredentials, http.StatusUnauthorized},
		{ErrRefreshTokenExpired, http.StatusUnauthorized},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrAccountLocked, http.StatusLocked},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotPostOwner, http.StatusForbidden},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrPostNotFound, http.StatusNotFound},
		{ErrMediaNotFound, http.StatusNotFound},
		{ErrTagNotFound, http.StatusNotFound},
		{ErrDuplicateUsername, http.StatusConflict},
		{ErrDuplicateTitle, http.StatusConflict},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
		{WrapError(ErrAccountLocked, errors.New("cause")), http.StatusLocked},
		{fmt.Errorf("outer: %w", ErrPostNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		if got := ToHTTPStatus(tt.err); got != tt.want {
			t.Errorf("ToHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestGetErrorMessage(t *testing.T) {
	if msg := GetErrorMessage(nil); msg != "" {
		t.Fatalf("nil message = %q", msg)
	}
	if msg := GetErrorMessage(ErrAccountLocked); msg != ErrAccountLocked.Message {
		t.Fatalf("message = %q, want %q", msg, ErrAccountLocked.Message)
	}
	if msg := GetErrorMessage(errors.New("plain")); msg != "plain" {
		t.Fatalf("plain message = %q", msg)
	}
	if msg := GetErrorMessage(WrapError(ErrInternal, errors.New("db down"))); msg != ErrInternal.Message {
		t.Fatalf("wrapped message = %q, leaks the cause", msg)
	}
}
