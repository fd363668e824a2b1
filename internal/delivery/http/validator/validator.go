// Package validator adapts go-playground/validator to Echo's Validator
// interface so request DTOs are checked by their struct tags at bind time.
package validator

import (
	domainerrors "folio/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// echoValidator wraps a shared validator instance.
type echoValidator struct {
	validate *validator.Validate
}

// New constructs the validator used by the Echo server.
func New() *echoValidator {
	return &echoValidator{validate: validator.New()}
}

// Validate implements echo.Validator. Tag violations surface as the
// validation error of the response taxonomy, carrying the offending
// fields in the details.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
