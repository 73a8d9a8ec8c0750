package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Reader provides the read operations shared by a Store and a Tx.
// List operations return entities in creation order.
type Reader interface {
	GetBook(ctx context.Context, id uuid.UUID) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetLoan(ctx context.Context, id uuid.UUID) (Loan, error)
	ListLoans(ctx context.Context) ([]Loan, error)
	ListActiveLoansByUser(ctx context.Context, userID uuid.UUID) ([]Loan, error)
}

// Tx is a unit of work. Everything written through a Tx becomes visible atomically when the
// function passed to Store.WithinTx returns nil, and is discarded otherwise.
//
// The Lock methods read a row and keep it locked against concurrent units of work until the Tx ends.
// Insert and Update methods enforce uniqueness of ISBN, email, and identification document.
// DeleteBook and DeleteUser remove the loans referencing the deleted row as well.
type Tx interface {
	Reader

	LockBook(ctx context.Context, id uuid.UUID) (Book, error)
	LockUser(ctx context.Context, id uuid.UUID) (User, error)
	LockLoan(ctx context.Context, id uuid.UUID) (Loan, error)

	HasActiveLoan(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	ListActiveLoansByBook(ctx context.Context, bookID uuid.UUID) ([]Loan, error)

	InsertBook(ctx context.Context, book Book) error
	UpdateBook(ctx context.Context, book Book) error
	DeleteBook(ctx context.Context, id uuid.UUID) error

	InsertUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	InsertLoan(ctx context.Context, loan Loan) error
	UpdateLoan(ctx context.Context, loan Loan) error
}

// Store is the transactional catalog storage.
type Store interface {
	Reader

	// WithinTx runs fn inside a new unit of work and commits it if fn returns nil.
	// A Store returns ErrConcurrencyConflict when the unit of work could not be serialized
	// against a concurrent one.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
