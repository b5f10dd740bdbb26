package organization

import (
	"errors"
	"fmt"
)

// Errors returned by the membership workflow. Handlers classify them with errors.Is / errors.As.
var (
	ErrNotFound        = errors.New("organization not found")
	ErrAlreadyExists   = errors.New("organization id already exists")
	ErrAlreadyMember   = errors.New("already a member of this organization")
	ErrJoinFailed      = errors.New("failed to join organization")
	ErrCreateFailed    = errors.New("failed to create organization")
	ErrNotAMember      = errors.New("not a member of this organization")
	ErrMissingIdentity = errors.New("user id is required")
)

// ValidationError is a field-level failure of the client-side rules; it never reaches the store
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// PartialFailureError means the organization row exists but its creator was not made admin
type PartialFailureError struct {
	OrganizationID string
	Err            error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("organization %s created but admin assignment failed: %v", e.OrganizationID, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsPartialFailure checks if an error is a PartialFailureError
func IsPartialFailure(err error) bool {
	var partialErr *PartialFailureError
	return errors.As(err, &partialErr)
}

// UserMessage renders an error from the workflow the way the setup screens show it
func UserMessage(err error) string {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return validationErr.Message
	case IsPartialFailure(err):
		return "Organization created but failed to add you as admin. Please contact support."
	case errors.Is(err, ErrNotFound):
		return "Organization not found. Please check the ID and try again."
	case errors.Is(err, ErrAlreadyMember):
		return "You are already a member of this organization."
	case errors.Is(err, ErrAlreadyExists):
		return "Organization ID already exists. Please choose a different ID."
	case errors.Is(err, ErrJoinFailed):
		return "Failed to join organization. Please try again."
	case errors.Is(err, ErrCreateFailed):
		return "Failed to create organization. Please try again."
	case errors.Is(err, ErrNotAMember):
		return "You are not a member of this organization."
	default:
		return "An unexpected error occurred. Please try again."
	}
}
