package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrWriteNotAcknowledged marks a store mutation that reported an unexpected affected-row count.
var ErrWriteNotAcknowledged = errors.New("write not acknowledged by store")

// ValidationError reports a missing or malformed field on user creation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewMissingFieldError creates a validation error for an absent required field.
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " required"}
}

// InvalidFilterError reports a list filter that matches no gender.
type InvalidFilterError struct {
	Value string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid gender filter %q", e.Value)
}

// NotFoundError reports a user id absent from the store.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %s not found", e.ID)
}

// ConflictError reports a caller-supplied id that is already taken.
type ConflictError struct {
	ID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("user %s already exists", e.ID)
}

// StorageError wraps a backend failure. The directory passes it through untouched.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error during %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("storage error during %s", e.Op)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError wraps cause for the given store operation.
func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{Op: op, Cause: cause}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
