package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches two domain errors by code so wrapped instances still compare
// equal to their sentinel.
func (e *DomainError) Is(target error) bool {
	var domainErr *DomainError
	if errors.As(target, &domainErr) {
		return e.Code == domainErr.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// Authentication errors. ErrBadCredentials covers both unknown
	// usernames and wrong passwords so responses never reveal whether an
	// account exists.
	ErrBadCredentials      = NewDomainError("BAD_CREDENTIALS", "bad credentials")
	ErrAccountLocked       = NewDomainError("ACCOUNT_LOCKED", "account is temporarily locked")
	ErrRefreshTokenExpired = NewDomainError("REFRESH_TOKEN_EXPIRED", "refresh token has expired")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrForbidden           = NewDomainError("FORBIDDEN", "access forbidden")

	// User errors
	ErrDuplicateUsername = NewDomainError("DUPLICATE_USERNAME", "username already exists")
	ErrUserNotFound      = NewDomainError("USER_NOT_FOUND", "user not found")

	// Blog errors
	ErrPostNotFound   = NewDomainError("POST_NOT_FOUND", "blog post not found")
	ErrDuplicateTitle = NewDomainError("DUPLICATE_TITLE", "a post with this title already exists")
	ErrNotPostOwner   = NewDomainError("NOT_POST_OWNER", "only the author may modify this post")
	ErrMediaNotFound  = NewDomainError("MEDIA_NOT_FOUND", "media file not found")
	ErrTagNotFound    = NewDomainError("TAG_NOT_FOUND", "tag not found")

	// Validation errors
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "invalid input")

	// System errors
	ErrInternal = NewDomainError("INTERNAL_ERROR", "internal server error")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

// domainErrorToHTTPStatus maps specific domain errors to HTTP status codes
func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_INPUT":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "BAD_CREDENTIALS", "REFRESH_TOKEN_EXPIRED":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "FORBIDDEN", "NOT_POST_OWNER":
		return http.StatusForbidden

	// 404 Not Found
	case "USER_NOT_FOUND", "POST_NOT_FOUND", "MEDIA_NOT_FOUND", "TAG_NOT_FOUND":
		return http.StatusNotFound

	// 409 Conflict
	case "DUPLICATE_USERNAME", "DUPLICATE_TITLE":
		return http.StatusConflict

	// 423 Locked
	case "ACCOUNT_LOCKED":
		return http.StatusLocked

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
