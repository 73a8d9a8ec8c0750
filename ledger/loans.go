package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

// CreateLoan lends one copy of the book to the user.
//
// Checks, in this order: the user exists, the book exists, the user has no ACTIVE loan for the book,
// the book has an available copy, the user is below catalog.MaxActiveLoans. Only when all checks pass
// the loan is inserted and both counters are adjusted, in one unit of work.
func (l *Ledger) CreateLoan(ctx context.Context, userID, bookID uuid.UUID) (catalog.Loan, error) {
	var created catalog.Loan

	err := l.observe(ctx, OperationCreateLoan, true, func(ctx context.Context) error {
		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			user, err := tx.LockUser(ctx, userID)
			if err != nil {
				return err
			}

			book, err := tx.LockBook(ctx, bookID)
			if err != nil {
				return err
			}

			hasActiveLoan, err := tx.HasActiveLoan(ctx, user.ID, book.ID)
			if err != nil {
				return err
			}

			if hasActiveLoan {
				return catalog.ErrDuplicateActiveLoan
			}

			if err = book.DecrementAvailable(); err != nil {
				return err
			}

			if err = user.IncrementActive(); err != nil {
				return err
			}

			loan, err := catalog.NewLoan(user.ID, book.ID, l.now())
			if err != nil {
				return err
			}

			if err = tx.InsertLoan(ctx, loan); err != nil {
				return err
			}

			if err = tx.UpdateBook(ctx, book); err != nil {
				return err
			}

			if err = tx.UpdateUser(ctx, user); err != nil {
				return err
			}

			created = loan

			return nil
		})
	})

	if err != nil {
		return catalog.Loan{}, err
	}

	return created, nil
}

// ReturnLoan closes an ACTIVE loan and gives the copy and the loan slot back, in one unit of work.
func (l *Ledger) ReturnLoan(ctx context.Context, loanID uuid.UUID) (catalog.Loan, error) {
	var returned catalog.Loan

	err := l.observe(ctx, OperationReturnLoan, true, func(ctx context.Context) error {
		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			loan, err := tx.LockLoan(ctx, loanID)
			if err != nil {
				return err
			}

			if err = loan.MarkReturned(l.now()); err != nil {
				return err
			}

			user, err := tx.LockUser(ctx, loan.UserID)
			if err != nil {
				return err
			}

			book, err := tx.LockBook(ctx, loan.BookID)
			if err != nil {
				return err
			}

			if clamped := book.RestoreAvailable(); clamped {
				if err = l.counterClamped(ctx, catalog.CounterKindBookAvailable, book.ID); err != nil {
					return err
				}
			}

			if clamped := user.DecrementActive(); clamped {
				if err = l.counterClamped(ctx, catalog.CounterKindUserActive, user.ID); err != nil {
					return err
				}
			}

			if err = tx.UpdateLoan(ctx, loan); err != nil {
				return err
			}

			if err = tx.UpdateBook(ctx, book); err != nil {
				return err
			}

			if err = tx.UpdateUser(ctx, user); err != nil {
				return err
			}

			returned = loan

			return nil
		})
	})

	if err != nil {
		return catalog.Loan{}, err
	}

	return returned, nil
}

// ListAllLoans returns every loan, ACTIVE and RETURNED, in creation order.
func (l *Ledger) ListAllLoans(ctx context.Context) ([]catalog.Loan, error) {
	var loans []catalog.Loan

	err := l.observe(ctx, OperationListAllLoans, false, func(ctx context.Context) error {
		var err error
		loans, err = l.store.ListLoans(ctx)

		return err
	})

	return loans, err
}

// ListActiveLoansByUser returns the ACTIVE loans of the user in creation order.
// An unknown user has no loans, so the result is empty rather than an error.
func (l *Ledger) ListActiveLoansByUser(ctx context.Context, userID uuid.UUID) ([]catalog.Loan, error) {
	var loans []catalog.Loan

	err := l.observe(ctx, OperationListActiveLoansByUser, false, func(ctx context.Context) error {
		var err error
		loans, err = l.store.ListActiveLoansByUser(ctx, userID)

		return err
	})

	return loans, err
}
