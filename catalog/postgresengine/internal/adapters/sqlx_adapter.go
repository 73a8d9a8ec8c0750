package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter runs catalog statements on a sqlx handle.
type SQLXAdapter struct {
	stdStatements
	db *sqlx.DB
}

// NewSQLXAdapter wraps the given handle.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{stdStatements: stdStatements{runner: db}, db: db}
}

// BeginTx opens a READ COMMITTED transaction through BeginTxx.
func (a *SQLXAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := a.db.BeginTxx(ctx, readCommitted)
	if err != nil {
		return nil, err
	}

	return stdTx{stdStatements: stdStatements{runner: tx}, commit: tx.Commit, rollback: tx.Rollback}, nil
}
