// Package postgresengine provides a PostgreSQL implementation of catalog.Store.
//
// It works with pgx.Pool, sql.DB (lib/pq), and sqlx.DB through internal adapters. All statements are
// built with goqu and sent as interpolated SQL. Units of work run as READ COMMITTED transactions in which
// every row whose counter is about to change is locked with SELECT ... FOR UPDATE.
//
// Constraint violations are translated into catalog errors: unique violations become the duplicate
// errors, a second ACTIVE loan for the same user and book becomes catalog.ErrDuplicateActiveLoan, and
// serialization failures and deadlocks become catalog.ErrConcurrencyConflict so callers can retry.
//
// The schema lives in schema.sql and is applied with Migrate.
package postgresengine
