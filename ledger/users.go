package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

// UserInput carries the caller-editable fields of a user.
type UserInput struct {
	Name                   string
	IdentificationDocument string
	Email                  string
}

// RegisterUser adds a patron without active loans.
func (l *Ledger) RegisterUser(ctx context.Context, input UserInput) (catalog.User, error) {
	user, err := catalog.NewUser(input.Name, input.IdentificationDocument, input.Email)
	if err != nil {
		return catalog.User{}, err
	}

	err = l.observe(ctx, OperationRegisterUser, true, func(ctx context.Context) error {
		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			return tx.InsertUser(ctx, user)
		})
	})

	if err != nil {
		return catalog.User{}, err
	}

	return user, nil
}

// ReviseUser replaces the user's personal data.
func (l *Ledger) ReviseUser(ctx context.Context, id uuid.UUID, input UserInput) (catalog.User, error) {
	var revised catalog.User

	err := l.observe(ctx, OperationReviseUser, true, func(ctx context.Context) error {
		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			user, err := tx.LockUser(ctx, id)
			if err != nil {
				return err
			}

			if err = user.Revise(input.Name, input.IdentificationDocument, input.Email); err != nil {
				return err
			}

			if err = tx.UpdateUser(ctx, user); err != nil {
				return err
			}

			revised = user

			return nil
		})
	})

	if err != nil {
		return catalog.User{}, err
	}

	return revised, nil
}

// DeleteUser removes the user and their loans. Every book the user holds an ACTIVE loan on gets
// the copy back first.
func (l *Ledger) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return l.observe(ctx, OperationDeleteUser, true, func(ctx context.Context) error {
		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			user, err := tx.LockUser(ctx, id)
			if err != nil {
				return err
			}

			activeLoans, err := tx.ListActiveLoansByUser(ctx, user.ID)
			if err != nil {
				return err
			}

			for _, loan := range activeLoans {
				book, err := tx.LockBook(ctx, loan.BookID)
				if err != nil {
					return err
				}

				if clamped := book.RestoreAvailable(); clamped {
					if err = l.counterClamped(ctx, catalog.CounterKindBookAvailable, book.ID); err != nil {
						return err
					}
				}

				if err = tx.UpdateBook(ctx, book); err != nil {
					return err
				}
			}

			return tx.DeleteUser(ctx, user.ID)
		})
	})
}

// GetUser returns one user.
func (l *Ledger) GetUser(ctx context.Context, id uuid.UUID) (catalog.User, error) {
	var user catalog.User

	err := l.observe(ctx, OperationGetUser, false, func(ctx context.Context) error {
		var err error
		user, err = l.store.GetUser(ctx, id)

		return err
	})

	return user, err
}

// ListUsers returns all users in creation order.
func (l *Ledger) ListUsers(ctx context.Context) ([]catalog.User, error) {
	var users []catalog.User

	err := l.observe(ctx, OperationListUsers, false, func(ctx context.Context) error {
		var err error
		users, err = l.store.ListUsers(ctx)

		return err
	})

	return users, err
}
