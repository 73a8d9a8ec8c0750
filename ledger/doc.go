// Package ledger implements the loan lifecycle and keeps the inventory and patron counters consistent
// with the set of active loans.
//
// Every public operation runs in exactly one unit of work of a catalog.Store. The counter changes of
// an operation (book availability, user active loans) and the loan row it creates or closes become
// visible together or not at all. Units of work failing with catalog.ErrConcurrencyConflict are retried
// with exponential backoff; business rule violations are returned immediately.
//
// Usage:
//
//	l, err := ledger.New(store, ledger.WithLogger(logger))
//	if err != nil {
//		// handle error
//	}
//
//	loan, err := l.CreateLoan(ctx, userID, bookID)
//	if errors.Is(err, catalog.ErrInventoryExhausted) {
//		// no copy left
//	}
//
//	loan, err = l.ReturnLoan(ctx, loan.ID)
package ledger
