package adapters

import (
	"context"
	"database/sql"
)

var readCommitted = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// stdRunner is satisfied by *sql.DB, *sql.Tx, *sqlx.DB and *sqlx.Tx.
type stdRunner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type stdStatements struct {
	runner stdRunner
}

func (s stdStatements) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.runner.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (s stdStatements) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.runner.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// stdTx covers database/sql transactions, including the *sqlx.Tx flavor.
type stdTx struct {
	stdStatements
	commit   func() error
	rollback func() error
}

func newStdTx(tx *sql.Tx) stdTx {
	return stdTx{stdStatements: stdStatements{runner: tx}, commit: tx.Commit, rollback: tx.Rollback}
}

func (t stdTx) Commit(context.Context) error   { return t.commit() }
func (t stdTx) Rollback(context.Context) error { return t.rollback() }
