// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Taxonomy for remote call outcomes. The REST client maps every failed
// response onto exactly one of these; nothing above it swallows or rewraps
// them into other categories.
var (
	// ErrNetwork indicates the request failed to complete at all.
	ErrNetwork = errors.New("network failure")

	// ErrUnauthorized indicates the service rejected the credential (401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the credential is valid but lacks permission
	// for the operation (403), e.g. a non-owner renaming a chat.
	ErrForbidden = errors.New("permission denied")

	// ErrValidation indicates a field-level conflict (422).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested entity does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrUnknown indicates any other non-2xx response.
	ErrUnknown = errors.New("unexpected server response")
)

// DuplicateFieldError reports which entity field collided on a 422, e.g. a
// username or email that is already taken. Matches ErrValidation.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s already taken", e.Field)
}

func (e *DuplicateFieldError) Is(target error) bool { return target == ErrValidation }
