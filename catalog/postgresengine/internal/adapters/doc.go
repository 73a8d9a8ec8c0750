// Package adapters provide database adapter implementations for the PostgreSQL catalog store.
//
// The adapters support pgx.Pool, sql.DB, and sqlx.DB behind the common DBAdapter interface,
// including READ COMMITTED transactions, so the store works with any of the three connection types.
package adapters
