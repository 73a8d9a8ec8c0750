package adapters

import "context"

// Querier runs queries that return rows.
type Querier interface {
	Query(ctx context.Context, query string) (DBRows, error)
}

// DBAdapter defines the interface for database operations needed by the catalog store.
type DBAdapter interface {
	Querier
	Exec(ctx context.Context, query string) (DBResult, error)
	BeginTx(ctx context.Context) (DBTx, error)
}

// DBTx is a READ COMMITTED database transaction.
type DBTx interface {
	Querier
	Exec(ctx context.Context, query string) (DBResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
