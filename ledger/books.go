package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

// BookInput carries the caller-editable fields of a book.
type BookInput struct {
	Title         string
	Author        string
	ISBN          string
	TotalQuantity int
}

// RegisterBook adds a title to the catalog with all copies available.
func (l *Ledger) RegisterBook(ctx context.Context, input BookInput) (catalog.Book, error) {
	book, err := catalog.NewBook(input.Title, input.Author, input.ISBN, input.TotalQuantity)
	if err != nil {
		return catalog.Book{}, err
	}

	err = l.observe(ctx, OperationRegisterBook, true, func(ctx context.Context) error {
		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			return tx.InsertBook(ctx, book)
		})
	})

	if err != nil {
		return catalog.Book{}, err
	}

	return book, nil
}

// ReviseBook replaces the book's fields. The available quantity is derived again from the new total
// and the number of ACTIVE loans on the book.
func (l *Ledger) ReviseBook(ctx context.Context, id uuid.UUID, input BookInput) (catalog.Book, error) {
	var revised catalog.Book

	err := l.observe(ctx, OperationReviseBook, true, func(ctx context.Context) error {
		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			book, err := tx.LockBook(ctx, id)
			if err != nil {
				return err
			}

			activeLoans, err := tx.ListActiveLoansByBook(ctx, book.ID)
			if err != nil {
				return err
			}

			if err = book.Revise(input.Title, input.Author, input.ISBN, input.TotalQuantity, len(activeLoans)); err != nil {
				return err
			}

			if err = tx.UpdateBook(ctx, book); err != nil {
				return err
			}

			revised = book

			return nil
		})
	})

	if err != nil {
		return catalog.Book{}, err
	}

	return revised, nil
}

// DeleteBook removes the book and its loans. Every user holding an ACTIVE loan on the book gets
// the loan slot back first.
func (l *Ledger) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return l.observe(ctx, OperationDeleteBook, true, func(ctx context.Context) error {
		return l.store.WithinTx(ctx, func(ctx context.Context, tx catalog.Tx) error {
			book, err := tx.LockBook(ctx, id)
			if err != nil {
				return err
			}

			activeLoans, err := tx.ListActiveLoansByBook(ctx, book.ID)
			if err != nil {
				return err
			}

			for _, loan := range activeLoans {
				user, err := tx.LockUser(ctx, loan.UserID)
				if err != nil {
					return err
				}

				if clamped := user.DecrementActive(); clamped {
					if err = l.counterClamped(ctx, catalog.CounterKindUserActive, user.ID); err != nil {
						return err
					}
				}

				if err = tx.UpdateUser(ctx, user); err != nil {
					return err
				}
			}

			return tx.DeleteBook(ctx, book.ID)
		})
	})
}

// GetBook returns one book.
func (l *Ledger) GetBook(ctx context.Context, id uuid.UUID) (catalog.Book, error) {
	var book catalog.Book

	err := l.observe(ctx, OperationGetBook, false, func(ctx context.Context) error {
		var err error
		book, err = l.store.GetBook(ctx, id)

		return err
	})

	return book, err
}

// ListBooks returns all books in creation order.
func (l *Ledger) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	var books []catalog.Book

	err := l.observe(ctx, OperationListBooks, false, func(ctx context.Context) error {
		var err error
		books, err = l.store.ListBooks(ctx)

		return err
	})

	return books, err
}
