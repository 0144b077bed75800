package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-tickets/internal/domain"
)

func TestToDomainErrorMapsTicketErrors(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{err: domain.ErrTicketNotFound, code: "NOT_FOUND", status: http.StatusNotFound},
		{err: domain.ErrPermissionDenied, code: "FORBIDDEN", status: http.StatusForbidden},
		{err: domain.ErrAlreadyClosed, code: "ALREADY_CLOSED", status: http.StatusConflict},
		{err: domain.ErrInvalidTransition, code: "INVALID_TRANSITION", status: http.StatusConflict},
		{err: domain.ErrInvalidPriorityTransition, code: "INVALID_PRIORITY_TRANSITION", status: http.StatusConflict},
		{err: domain.ErrUnknownStatus, code: "VALIDATION_FAILED", status: http.StatusBadRequest},
		{err: domain.ErrInvalidData, code: "VALIDATION_FAILED", status: http.StatusBadRequest},
		{err: errors.New("boom"), code: "INTERNAL_ERROR", status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		mapped := ToDomainError(tc.err)
		require.NotNil(t, mapped, tc.err.Error())
		assert.Equal(t, tc.code, mapped.Code, tc.err.Error())
		assert.Equal(t, tc.status, mapped.HTTPStatus, tc.err.Error())
	}
}

func TestToDomainErrorUnwrapsWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("save ticket: %w", domain.ErrTicketNotFound)

	mapped := ToDomainError(wrapped)

	assert.Equal(t, "NOT_FOUND", mapped.Code)
	assert.ErrorIs(t, mapped, domain.ErrTicketNotFound)
}

func TestToDomainErrorPassesThroughDomainError(t *testing.T) {
	original := NewValidationError("bad input", map[string]any{"field": "title"})

	mapped := ToDomainError(original)

	assert.Same(t, original, mapped)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
