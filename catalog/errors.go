package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is the family of errors for missing books, users, and loans.
var ErrNotFound = errors.New("not found")

// ErrBookNotFound and friends are members of the ErrNotFound family.
var (
	ErrBookNotFound = fmt.Errorf("book %w", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	ErrLoanNotFound = fmt.Errorf("loan %w", ErrNotFound)
)

// ErrConflict is the family of business rule violations.
var ErrConflict = errors.New("conflict")

var (
	ErrInventoryExhausted   = fmt.Errorf("book has no available copies: %w", ErrConflict)
	ErrLoanLimitExceeded    = fmt.Errorf("user reached the maximum of active loans: %w", ErrConflict)
	ErrDuplicateActiveLoan  = fmt.Errorf("user already has an active loan for this book: %w", ErrConflict)
	ErrAlreadyReturned      = fmt.Errorf("loan was already returned: %w", ErrConflict)
	ErrDuplicateISBN        = fmt.Errorf("a book with this ISBN already exists: %w", ErrConflict)
	ErrDuplicateEmail       = fmt.Errorf("a user with this email already exists: %w", ErrConflict)
	ErrDuplicateDocument    = fmt.Errorf("a user with this identification document already exists: %w", ErrConflict)
	ErrTotalBelowLentCopies = fmt.Errorf("total quantity is lower than the number of lent copies: %w", ErrConflict)
)

// ErrInvalidInput is the family of validation errors.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrInvalidBook = fmt.Errorf("invalid book: %w", ErrInvalidInput)
	ErrInvalidUser = fmt.Errorf("invalid user: %w", ErrInvalidInput)
)

// ErrConcurrencyConflict is returned by a Store when a unit of work lost a race against another one
// (serialization failure, deadlock). The unit of work may be retried.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrCounterInvariantViolated is returned in strict mode when a counter would have to be clamped,
// which means it had already drifted from the set of active loans.
var ErrCounterInvariantViolated = errors.New("counter invariant violated")

// FieldError attaches the name of the offending input field to a validation or conflict error.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError wraps err with the field name it refers to.
func NewFieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// FieldOf returns the field name attached to err, if any.
func FieldOf(err error) string {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Field
	}

	return ""
}
