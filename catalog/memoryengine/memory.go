package memoryengine

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

// ErrNilLogger is returned when WithLogger is called with nil.
var ErrNilLogger = errors.New("logger must not be nil")

const (
	logMsgCommitted  = "memoryengine: unit of work committed"
	logMsgRolledBack = "memoryengine: unit of work rolled back"
	logAttrError     = "error"
)

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets the logger for unit of work diagnostics.
func WithLogger(logger catalog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return ErrNilLogger
		}

		s.logger = logger

		return nil
	}
}

// Store is an in-memory catalog.Store.
type Store struct {
	mu     sync.RWMutex
	state  *state
	logger catalog.Logger
}

// NewStore creates an empty Store.
func NewStore(options ...Option) (*Store, error) {
	s := &Store{state: newState()}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// WithinTx runs fn on a staged copy of the state and commits the copy if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()

	if err := fn(ctx, &tx{st: staged}); err != nil {
		s.debug(logMsgRolledBack, logAttrError, err.Error())
		return err
	}

	if err := ctx.Err(); err != nil {
		s.debug(logMsgRolledBack, logAttrError, err.Error())
		return err
	}

	s.state = staged
	s.debug(logMsgCommitted)

	return nil
}

func (s *Store) GetBook(_ context.Context, id uuid.UUID) (catalog.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.getBook(id)
}

func (s *Store) ListBooks(_ context.Context) ([]catalog.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.listBooks(), nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (catalog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.getUser(id)
}

func (s *Store) ListUsers(_ context.Context) ([]catalog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.listUsers(), nil
}

func (s *Store) GetLoan(_ context.Context, id uuid.UUID) (catalog.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.getLoan(id)
}

func (s *Store) ListLoans(_ context.Context) ([]catalog.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.listLoans(func(catalog.Loan) bool { return true }), nil
}

func (s *Store) ListActiveLoansByUser(_ context.Context, userID uuid.UUID) ([]catalog.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.listLoans(activeOfUser(userID)), nil
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func activeOfUser(userID uuid.UUID) func(catalog.Loan) bool {
	return func(l catalog.Loan) bool { return l.IsActive() && l.UserID == userID }
}

func activeOfBook(bookID uuid.UUID) func(catalog.Loan) bool {
	return func(l catalog.Loan) bool { return l.IsActive() && l.BookID == bookID }
}

type state struct {
	books     map[uuid.UUID]catalog.Book
	bookOrder []uuid.UUID
	users     map[uuid.UUID]catalog.User
	userOrder []uuid.UUID
	loans     map[uuid.UUID]catalog.Loan
	loanOrder []uuid.UUID
}

func newState() *state {
	return &state{
		books: make(map[uuid.UUID]catalog.Book),
		users: make(map[uuid.UUID]catalog.User),
		loans: make(map[uuid.UUID]catalog.Loan),
	}
}

func (st *state) clone() *state {
	c := &state{
		books:     make(map[uuid.UUID]catalog.Book, len(st.books)),
		bookOrder: slices.Clone(st.bookOrder),
		users:     make(map[uuid.UUID]catalog.User, len(st.users)),
		userOrder: slices.Clone(st.userOrder),
		loans:     make(map[uuid.UUID]catalog.Loan, len(st.loans)),
		loanOrder: slices.Clone(st.loanOrder),
	}

	for id, b := range st.books {
		c.books[id] = b
	}

	for id, u := range st.users {
		c.users[id] = u
	}

	for id, l := range st.loans {
		c.loans[id] = l
	}

	return c
}

func (st *state) getBook(id uuid.UUID) (catalog.Book, error) {
	b, ok := st.books[id]
	if !ok {
		return catalog.Book{}, catalog.ErrBookNotFound
	}

	return b, nil
}

func (st *state) getUser(id uuid.UUID) (catalog.User, error) {
	u, ok := st.users[id]
	if !ok {
		return catalog.User{}, catalog.ErrUserNotFound
	}

	return u, nil
}

func (st *state) getLoan(id uuid.UUID) (catalog.Loan, error) {
	l, ok := st.loans[id]
	if !ok {
		return catalog.Loan{}, catalog.ErrLoanNotFound
	}

	return l, nil
}

func (st *state) listBooks() []catalog.Book {
	books := make([]catalog.Book, 0, len(st.bookOrder))
	for _, id := range st.bookOrder {
		books = append(books, st.books[id])
	}

	return books
}

func (st *state) listUsers() []catalog.User {
	users := make([]catalog.User, 0, len(st.userOrder))
	for _, id := range st.userOrder {
		users = append(users, st.users[id])
	}

	return users
}

func (st *state) listLoans(match func(catalog.Loan) bool) []catalog.Loan {
	loans := make([]catalog.Loan, 0)
	for _, id := range st.loanOrder {
		if l := st.loans[id]; match(l) {
			loans = append(loans, l)
		}
	}

	return loans
}

func (st *state) checkBookUnique(book catalog.Book) error {
	for id, other := range st.books {
		if id != book.ID && other.ISBN == book.ISBN {
			return catalog.NewFieldError("isbn", catalog.ErrDuplicateISBN)
		}
	}

	return nil
}

func (st *state) checkUserUnique(user catalog.User) error {
	for id, other := range st.users {
		if id == user.ID {
			continue
		}

		if other.Email == user.Email {
			return catalog.NewFieldError("email", catalog.ErrDuplicateEmail)
		}

		if other.IdentificationDocument == user.IdentificationDocument {
			return catalog.NewFieldError("identificationDocument", catalog.ErrDuplicateDocument)
		}
	}

	return nil
}

func (st *state) deleteLoansWhere(match func(catalog.Loan) bool) {
	st.loanOrder = slices.DeleteFunc(st.loanOrder, func(id uuid.UUID) bool {
		if match(st.loans[id]) {
			delete(st.loans, id)
			return true
		}

		return false
	})
}
