// Package catalog provides the core types of the library loan system: books, users (patrons),
// and the loans linking them.
//
// Book and User carry counters that are a cached projection of the set of ACTIVE loans:
//   - Book.AvailableQuantity == Book.TotalQuantity - count(ACTIVE loans on the book)
//   - User.ActiveLoans == count(ACTIVE loans of the user)
//
// The entity methods only ever touch their own counter. Keeping both counters in step with the
// loan set is the job of the ledger package, which mutates them inside a single unit of work
// obtained from a Store.
//
// Key types:
//   - Book, User, Loan: the entities
//   - Store, Reader, Tx: the transactional storage contract implemented by the storage engines
//   - Logger, MetricsCollector, TracingCollector: dependency-free observability hooks
package catalog
