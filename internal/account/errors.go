package account

import (
	"errors"
	"fmt"
)

var (
	ErrPasswordMismatch    = errors.New("Passwords do not match!")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountExists       = errors.New("an account with this email or username already exists")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// ValidationError reports the first invalid field of a form
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
