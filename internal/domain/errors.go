package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrConcurrencyConflict = errors.New("resource was modified concurrently, please retry later")
	ErrConsistency         = errors.New("data consistency violation")
	ErrDuplicate           = errors.New("duplicate value")
)

// NotFoundError names the missing entity and matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %v not found", e.Entity, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError carries a user-facing rule and matches ErrValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a validation failure for a specific rule.
func Invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// ErrRoomUnavailable is the overlap rule; it is also raised by the database
// exclusion constraint.
var ErrRoomUnavailable = Invalid("room not available for selected dates")
