package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/care-access/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewUnauthenticated reports a missing or invalid bearer token.
func NewUnauthenticated(message string) error {
	return NewDomainError("UNAUTHENTICATED", message, http.StatusUnauthorized, nil)
}

// NewRateLimited reports a throttled principal.
func NewRateLimited(message string) error {
	return NewDomainError("RATE_LIMITED", message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// sentinels maps domain failures to stable transport codes. Order matters only
// for errors wrapping more than one sentinel.
var sentinels = []struct {
	err    error
	code   string
	status int
}{
	{domain.ErrUnauthorized, "UNAUTHORIZED", http.StatusForbidden},
	{domain.ErrNotApproved, "NOT_APPROVED", http.StatusForbidden},
	{domain.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrInvalidExpiry, "INVALID_EXPIRY", http.StatusUnprocessableEntity},
	{domain.ErrNotTemporaryAdmin, "NOT_TEMPORARY_ADMIN", http.StatusConflict},
	{domain.ErrNotAdmin, "NOT_ADMIN", http.StatusConflict},
	{domain.ErrInvalidRole, "INVALID_ROLE", http.StatusBadRequest},
	{domain.ErrInvalidInput, "VALIDATION_FAILED", http.StatusBadRequest},
	{domain.ErrConflict, "CONFLICT", http.StatusConflict},
}

// ToDomainError converts generic errors to DomainError. Wrapped domain
// sentinels keep their wrapping context as the message.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return &DomainError{Code: s.code, Message: err.Error(), HTTPStatus: s.status}
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
