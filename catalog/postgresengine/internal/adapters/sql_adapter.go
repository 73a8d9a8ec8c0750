package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter runs catalog statements on a database/sql handle (lib/pq driver).
type SQLAdapter struct {
	stdStatements
	db *sql.DB
}

// NewSQLAdapter wraps the given handle.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{stdStatements: stdStatements{runner: db}, db: db}
}

// BeginTx opens a READ COMMITTED transaction.
func (a *SQLAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := a.db.BeginTx(ctx, readCommitted)
	if err != nil {
		return nil, err
	}

	return newStdTx(tx), nil
}
