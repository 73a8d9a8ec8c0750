package catalog

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus is the lifecycle state of a Loan.
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "ACTIVE"
	LoanStatusReturned LoanStatus = "RETURNED"
)

// Loan records that a user holds one copy of a book.
// A loan starts ACTIVE and moves to RETURNED exactly once.
type Loan struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	BookID     uuid.UUID
	LoanDate   time.Time
	ReturnDate *time.Time
	Status     LoanStatus
}

// NewLoan returns an ACTIVE loan dated now.
func NewLoan(userID, bookID uuid.UUID, now time.Time) (Loan, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Loan{}, err
	}

	return Loan{
		ID:       id,
		UserID:   userID,
		BookID:   bookID,
		LoanDate: ToTimestamp(now),
		Status:   LoanStatusActive,
	}, nil
}

// IsActive reports whether the loan still holds a copy.
func (l Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// MarkReturned closes the loan.
func (l *Loan) MarkReturned(now time.Time) error {
	if !l.IsActive() {
		return ErrAlreadyReturned
	}

	returnDate := ToTimestamp(now)
	l.ReturnDate = &returnDate
	l.Status = LoanStatusReturned

	return nil
}

// ToTimestamp normalizes t the way timestamps are persisted: UTC with microsecond precision.
func ToTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
