package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
	// ErrAuthenticity indicates a webhook signature did not verify.
	ErrAuthenticity = errors.New("signature verification failed")
	// ErrMalformedEvent indicates a verified webhook body could not be decoded.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrUpstreamTransport indicates a dependency could not be reached or failed with 5xx.
	ErrUpstreamTransport = errors.New("upstream unavailable")
)

// ValidationError reports malformed caller input. Field names the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation builds a ValidationError for field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an item identifier the catalog could not resolve.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %q not found", e.ID)
}

// Is lets callers match a NotFoundError with errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UpstreamValidationError carries user-facing messages returned by the payment provider.
type UpstreamValidationError struct {
	Messages []string
}

func (e *UpstreamValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}
