package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxRunner is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxRunner interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgxStatements struct {
	runner pgxRunner
}

func (s pgxStatements) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.runner.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgxRows{Rows: rows}, nil
}

func (s pgxStatements) Exec(ctx context.Context, query string) (DBResult, error) {
	tag, err := s.runner.Exec(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgxResult(tag), nil
}

// PGXAdapter runs catalog statements on a pgx connection pool.
type PGXAdapter struct {
	pgxStatements
	pool *pgxpool.Pool
}

// NewPGXAdapter wraps the given pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pgxStatements: pgxStatements{runner: pool}, pool: pool}
}

// BeginTx opens a READ COMMITTED transaction on a pooled connection.
func (a *PGXAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := a.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}

	return pgxTx{pgxStatements: pgxStatements{runner: tx}, tx: tx}, nil
}

type pgxTx struct {
	pgxStatements
	tx pgx.Tx
}

func (t pgxTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t pgxTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// pgxRows adapts pgx.Rows, whose Close does not report an error.
type pgxRows struct {
	pgx.Rows
}

func (r pgxRows) Close() error {
	r.Rows.Close()
	return nil
}

type pgxResult pgconn.CommandTag

func (r pgxResult) RowsAffected() (int64, error) {
	return pgconn.CommandTag(r).RowsAffected(), nil
}
