package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/support-tickets/internal/domain"
)

// DomainError standardizes application errors at the HTTP edge.
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

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts errors to DomainError, mapping the ticket domain
// taxonomy onto HTTP codes.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	switch {
	case errors.Is(err, domain.ErrTicketNotFound):
		return &DomainError{Code: "NOT_FOUND", Message: "ticket not found", HTTPStatus: http.StatusNotFound, Err: err}
	case errors.Is(err, domain.ErrPermissionDenied):
		return &DomainError{Code: "FORBIDDEN", Message: "permission denied", HTTPStatus: http.StatusForbidden, Err: err}
	case errors.Is(err, domain.ErrAlreadyClosed):
		return &DomainError{Code: "ALREADY_CLOSED", Message: "ticket already closed", HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, domain.ErrInvalidTransition):
		return &DomainError{Code: "INVALID_TRANSITION", Message: "invalid status transition", HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, domain.ErrInvalidPriorityTransition):
		return &DomainError{Code: "INVALID_PRIORITY_TRANSITION", Message: "invalid priority transition", HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, domain.ErrUnknownStatus), errors.Is(err, domain.ErrInvalidData):
		return &DomainError{Code: "VALIDATION_FAILED", Message: err.Error(), HTTPStatus: http.StatusBadRequest, Err: err}
	}

	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
