package jd

import (
	"errors"
	"fmt"
)

// Error is the engine's error type. Callers branch on Code, either directly
// or through the Is* helpers, which see through wrapping.
//
// Validation, has-children and duplicate errors are raised before any write
// happens. A persistence error means the transaction was rolled back.
type Error struct {
	// Code identifies the error kind.
	Code ErrorCode

	// Message is a human-readable description suitable for display verbatim.
	Message string

	// Entity is the entity kind the operation targeted, if any.
	Entity EntityType

	// ID is the surrogate key the operation targeted, if any.
	ID int64

	// Field names the offending input field for validation errors.
	Field string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeValidation indicates malformed or missing input.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeHasChildren indicates a delete of a parent with live children.
	ErrCodeHasChildren ErrorCode = "HAS_CHILDREN"

	// ErrCodeNotFound indicates a referenced id does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeDuplicate indicates a unique number is already taken.
	ErrCodeDuplicate ErrorCode = "DUPLICATE"

	// ErrCodeExhausted indicates a parent has no two-digit sequence left.
	ErrCodeExhausted ErrorCode = "SEQUENCE_EXHAUSTED"

	// ErrCodePersistence indicates the durable write failed and was rolled back.
	ErrCodePersistence ErrorCode = "PERSISTENCE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation returns true if err is a validation error.
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

// IsHasChildren returns true if err is a has-children error.
func IsHasChildren(err error) bool { return CodeOf(err) == ErrCodeHasChildren }

// IsNotFound returns true if err is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsDuplicate returns true if err is a duplicate-number error.
func IsDuplicate(err error) bool { return CodeOf(err) == ErrCodeDuplicate }

// IsExhausted returns true if err is a sequence-exhausted error.
func IsExhausted(err error) bool { return CodeOf(err) == ErrCodeExhausted }

// IsPersistence returns true if err is a persistence error.
func IsPersistence(err error) bool { return CodeOf(err) == ErrCodePersistence }

// NewValidationError creates an Error for malformed or missing input.
func NewValidationError(field, message string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewHasChildrenError creates an Error for a blocked delete.
func NewHasChildrenError(entity EntityType, id int64, child EntityType, count int) *Error {
	return &Error{
		Code:    ErrCodeHasChildren,
		Message: fmt.Sprintf("cannot delete %s %d: %d %s record(s) still reference it", entity, id, count, child),
		Entity:  entity,
		ID:      id,
	}
}

// NewNotFoundError creates an Error for a missing entity.
func NewNotFoundError(entity EntityType, id int64) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %d not found", entity, id),
		Entity:  entity,
		ID:      id,
	}
}

// NewDuplicateError creates an Error for a number already in use.
func NewDuplicateError(entity EntityType, field, number string) *Error {
	return &Error{
		Code:    ErrCodeDuplicate,
		Message: fmt.Sprintf("%s %s %q already exists", entity, field, number),
		Entity:  entity,
		Field:   field,
	}
}

// NewExhaustedError creates an Error for a parent whose next sequence
// would exceed MaxSequence.
func NewExhaustedError(entity EntityType, parentNumber string) *Error {
	return &Error{
		Code:    ErrCodeExhausted,
		Message: fmt.Sprintf("no %s numbers left under %s (max sequence %d)", entity, parentNumber, MaxSequence),
		Entity:  entity,
	}
}

// NewPersistenceError creates an Error wrapping a failed durable write.
func NewPersistenceError(op string, err error) *Error {
	return &Error{
		Code:    ErrCodePersistence,
		Message: op + " was not persisted",
		Err:     err,
	}
}
