package memoryengine

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

// tx operates on the staged state of a unit of work. The Store mutex is held for its whole
// lifetime, so the Lock methods are plain reads.
type tx struct {
	st *state
}

func (t *tx) GetBook(_ context.Context, id uuid.UUID) (catalog.Book, error) {
	return t.st.getBook(id)
}

func (t *tx) ListBooks(_ context.Context) ([]catalog.Book, error) {
	return t.st.listBooks(), nil
}

func (t *tx) GetUser(_ context.Context, id uuid.UUID) (catalog.User, error) {
	return t.st.getUser(id)
}

func (t *tx) ListUsers(_ context.Context) ([]catalog.User, error) {
	return t.st.listUsers(), nil
}

func (t *tx) GetLoan(_ context.Context, id uuid.UUID) (catalog.Loan, error) {
	return t.st.getLoan(id)
}

func (t *tx) ListLoans(_ context.Context) ([]catalog.Loan, error) {
	return t.st.listLoans(func(catalog.Loan) bool { return true }), nil
}

func (t *tx) ListActiveLoansByUser(_ context.Context, userID uuid.UUID) ([]catalog.Loan, error) {
	return t.st.listLoans(activeOfUser(userID)), nil
}

func (t *tx) LockBook(_ context.Context, id uuid.UUID) (catalog.Book, error) {
	return t.st.getBook(id)
}

func (t *tx) LockUser(_ context.Context, id uuid.UUID) (catalog.User, error) {
	return t.st.getUser(id)
}

func (t *tx) LockLoan(_ context.Context, id uuid.UUID) (catalog.Loan, error) {
	return t.st.getLoan(id)
}

func (t *tx) HasActiveLoan(_ context.Context, userID, bookID uuid.UUID) (bool, error) {
	for _, l := range t.st.loans {
		if l.IsActive() && l.UserID == userID && l.BookID == bookID {
			return true, nil
		}
	}

	return false, nil
}

func (t *tx) ListActiveLoansByBook(_ context.Context, bookID uuid.UUID) ([]catalog.Loan, error) {
	return t.st.listLoans(activeOfBook(bookID)), nil
}

func (t *tx) InsertBook(_ context.Context, book catalog.Book) error {
	if err := t.st.checkBookUnique(book); err != nil {
		return err
	}

	if _, exists := t.st.books[book.ID]; !exists {
		t.st.bookOrder = append(t.st.bookOrder, book.ID)
	}

	t.st.books[book.ID] = book

	return nil
}

func (t *tx) UpdateBook(_ context.Context, book catalog.Book) error {
	if _, ok := t.st.books[book.ID]; !ok {
		return catalog.ErrBookNotFound
	}

	if err := t.st.checkBookUnique(book); err != nil {
		return err
	}

	t.st.books[book.ID] = book

	return nil
}

func (t *tx) DeleteBook(_ context.Context, id uuid.UUID) error {
	if _, ok := t.st.books[id]; !ok {
		return catalog.ErrBookNotFound
	}

	t.st.deleteLoansWhere(func(l catalog.Loan) bool { return l.BookID == id })
	delete(t.st.books, id)
	t.st.bookOrder = slices.DeleteFunc(t.st.bookOrder, func(other uuid.UUID) bool { return other == id })

	return nil
}

func (t *tx) InsertUser(_ context.Context, user catalog.User) error {
	if err := t.st.checkUserUnique(user); err != nil {
		return err
	}

	if _, exists := t.st.users[user.ID]; !exists {
		t.st.userOrder = append(t.st.userOrder, user.ID)
	}

	t.st.users[user.ID] = user

	return nil
}

func (t *tx) UpdateUser(_ context.Context, user catalog.User) error {
	if _, ok := t.st.users[user.ID]; !ok {
		return catalog.ErrUserNotFound
	}

	if err := t.st.checkUserUnique(user); err != nil {
		return err
	}

	t.st.users[user.ID] = user

	return nil
}

func (t *tx) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := t.st.users[id]; !ok {
		return catalog.ErrUserNotFound
	}

	t.st.deleteLoansWhere(func(l catalog.Loan) bool { return l.UserID == id })
	delete(t.st.users, id)
	t.st.userOrder = slices.DeleteFunc(t.st.userOrder, func(other uuid.UUID) bool { return other == id })

	return nil
}

func (t *tx) InsertLoan(ctx context.Context, loan catalog.Loan) error {
	if _, ok := t.st.users[loan.UserID]; !ok {
		return catalog.ErrUserNotFound
	}

	if _, ok := t.st.books[loan.BookID]; !ok {
		return catalog.ErrBookNotFound
	}

	if loan.IsActive() {
		duplicate, err := t.HasActiveLoan(ctx, loan.UserID, loan.BookID)
		if err != nil {
			return err
		}

		if duplicate {
			return catalog.ErrDuplicateActiveLoan
		}
	}

	if _, exists := t.st.loans[loan.ID]; !exists {
		t.st.loanOrder = append(t.st.loanOrder, loan.ID)
	}

	t.st.loans[loan.ID] = loan

	return nil
}

func (t *tx) UpdateLoan(_ context.Context, loan catalog.Loan) error {
	if _, ok := t.st.loans[loan.ID]; !ok {
		return catalog.ErrLoanNotFound
	}

	t.st.loans[loan.ID] = loan

	return nil
}
