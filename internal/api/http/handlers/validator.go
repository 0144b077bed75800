package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/support-tickets/pkg/util"
)

// RequestValidator wraps go-playground/validator for request DTOs.
type RequestValidator struct {
	validator *validator.Validate
}

// NewRequestValidator creates a new RequestValidator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: validator.New()}
}

// Validate validates a struct using validator tags.
func (v *RequestValidator) Validate(i any) error {
	if err := v.validator.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return apperrors.NewValidationError(
				fmt.Sprintf("%s failed on '%s' validation", fe.Field(), fe.Tag()), nil)
		}
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
