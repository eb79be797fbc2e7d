package errors

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyTerminal    = errors.New("payment status already terminal")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStoreUnavailable   = errors.New("order store unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotifierDisabled   = errors.New("notifier not configured")
	ErrRequestInFlight    = errors.New("request with the same idempotency key is in progress")
)

// ErrEmptyItems rejects orders without line items.
var ErrEmptyItems = &ValidationError{Fields: map[string]string{"items": "at least one item is required"}}

// ValidationError lists rejected input fields. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
