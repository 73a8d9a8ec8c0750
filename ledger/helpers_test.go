package ledger_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/catalog"
	"github.com/AntonStoeckl/library-loans-go/catalog/memoryengine"
	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/testutil/spies"
)

var fixedNow = time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func newMemoryStore(t *testing.T) *memoryengine.Store {
	t.Helper()

	store, err := memoryengine.NewStore()
	require.NoError(t, err)

	return store
}

func newLedger(t *testing.T, store catalog.Store, options ...ledger.Option) *ledger.Ledger {
	t.Helper()

	options = append([]ledger.Option{
		ledger.WithClock(fixedClock),
		ledger.WithRetryOptions(ledger.WithBaseDelay(time.Millisecond)),
	}, options...)

	l, err := ledger.New(store, options...)
	require.NoError(t, err)

	return l
}

func givenBook(t *testing.T, l *ledger.Ledger, isbn string, total int) catalog.Book {
	t.Helper()

	book, err := l.RegisterBook(context.Background(), ledger.BookInput{
		Title:         "Title " + isbn,
		Author:        "Author " + isbn,
		ISBN:          isbn,
		TotalQuantity: total,
	})
	require.NoError(t, err)

	return book
}

func givenUser(t *testing.T, l *ledger.Ledger, document string) catalog.User {
	t.Helper()

	user, err := l.RegisterUser(context.Background(), ledger.UserInput{
		Name:                   "User " + document,
		IdentificationDocument: document,
		Email:                  "user" + document + "@example.com",
	})
	require.NoError(t, err)

	return user
}

func givenLoan(t *testing.T, l *ledger.Ledger, user catalog.User, book catalog.Book) catalog.Loan {
	t.Helper()

	loan, err := l.CreateLoan(context.Background(), user.ID, book.ID)
	require.NoError(t, err)

	return loan
}

func mustGetBook(t *testing.T, store catalog.Store, book catalog.Book) catalog.Book {
	t.Helper()

	stored, err := store.GetBook(context.Background(), book.ID)
	require.NoError(t, err)

	return stored
}

func mustGetUser(t *testing.T, store catalog.Store, user catalog.User) catalog.User {
	t.Helper()

	stored, err := store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)

	return stored
}

// forceBookCounter writes a counter value that bypasses the ledger, simulating drift.
func forceBookCounter(t *testing.T, store catalog.Store, bookID uuid.UUID, available int) {
	t.Helper()

	require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, tx catalog.Tx) error {
		book, err := tx.GetBook(ctx, bookID)
		if err != nil {
			return err
		}

		book.AvailableQuantity = available

		return tx.UpdateBook(ctx, book)
	}))
}

// forceUserCounter writes a counter value that bypasses the ledger, simulating drift.
func forceUserCounter(t *testing.T, store catalog.Store, userID uuid.UUID, active int) {
	t.Helper()

	require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, tx catalog.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}

		user.ActiveLoans = active

		return tx.UpdateUser(ctx, user)
	}))
}

func requireNoDrift(t *testing.T, store catalog.Store) {
	t.Helper()

	ctx := context.Background()
	books, err := store.ListBooks(ctx)
	require.NoError(t, err)
	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	loans, err := store.ListLoans(ctx)
	require.NoError(t, err)

	require.Empty(t, catalog.DetectCounterDrift(books, users, loans))
}

// conflictingStore fails the first failures units of work with a concurrency conflict.
type conflictingStore struct {
	catalog.Store

	mu       sync.Mutex
	failures int
	calls    int
}

func (s *conflictingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Tx) error) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.failures
	s.mu.Unlock()

	if fail {
		return catalog.ErrConcurrencyConflict
	}

	return s.Store.WithinTx(ctx, fn)
}

const warnLevel = slog.LevelWarn

func newMetricsSpy() *spies.MetricsCollectorSpy {
	return spies.NewMetricsCollectorSpy(true)
}

func newLogSpy() (*spies.LogHandlerSpy, *slog.Logger) {
	spy := spies.NewLogHandlerSpy(false)

	return spy, slog.New(spy)
}
