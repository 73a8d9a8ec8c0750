package catalog

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

// MaxActiveLoans is the number of books a user may hold at the same time.
const MaxActiveLoans = 3

// User is a registered library patron.
type User struct {
	ID                     uuid.UUID
	Name                   string
	IdentificationDocument string
	Email                  string
	ActiveLoans            int
}

// NewUser validates the input and returns a User without active loans.
func NewUser(name, identificationDocument, email string) (User, error) {
	if err := validateUser(name, identificationDocument, email); err != nil {
		return User{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return User{}, err
	}

	return User{
		ID:                     id,
		Name:                   strings.TrimSpace(name),
		IdentificationDocument: strings.TrimSpace(identificationDocument),
		Email:                  normalizeEmail(email),
	}, nil
}

// CanBorrow reports whether the user is below the active loan limit.
func (u User) CanBorrow() bool {
	return u.ActiveLoans < MaxActiveLoans
}

// IncrementActive counts one more active loan for the user.
func (u *User) IncrementActive() error {
	if !u.CanBorrow() {
		return ErrLoanLimitExceeded
	}

	u.ActiveLoans++

	return nil
}

// DecrementActive counts one active loan less, never going below zero.
// It reports whether the decrement had to be clamped.
func (u *User) DecrementActive() (clamped bool) {
	if u.ActiveLoans <= 0 {
		u.ActiveLoans = 0
		return true
	}

	u.ActiveLoans--

	return false
}

// Revise replaces the user's personal data. The active loan counter is left untouched.
func (u *User) Revise(name, identificationDocument, email string) error {
	if err := validateUser(name, identificationDocument, email); err != nil {
		return err
	}

	u.Name = strings.TrimSpace(name)
	u.IdentificationDocument = strings.TrimSpace(identificationDocument)
	u.Email = normalizeEmail(email)

	return nil
}

func validateUser(name, identificationDocument, email string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return NewFieldError("name", ErrInvalidUser)
	case strings.TrimSpace(identificationDocument) == "":
		return NewFieldError("identificationDocument", ErrInvalidUser)
	case strings.TrimSpace(email) == "":
		return NewFieldError("email", ErrInvalidUser)
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return NewFieldError("email", ErrInvalidUser)
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
