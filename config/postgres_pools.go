package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

const (
	pgxMaxConns          = int32(8)
	pgxMinConns          = int32(2)
	pgxHealthCheckPeriod = time.Minute
	pgxConnectTimeout    = 5 * time.Second

	sqlMaxOpenConns = 50
	sqlMaxIdleConns = 10

	connMaxLifetime = time.Hour
	connMaxIdleTime = 5 * time.Minute
)

// ErrConnectingFailed is returned when a pool cannot be created or the database does not answer.
var ErrConnectingFailed = errors.New("connecting to postgres failed")

// NewPGXPool creates a pgx pool for dsn and checks that the database answers.
func NewPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	poolConfig.MaxConns, poolConfig.MinConns = pgxMaxConns, pgxMinConns
	poolConfig.MaxConnLifetime, poolConfig.MaxConnIdleTime = connMaxLifetime, connMaxIdleTime
	poolConfig.HealthCheckPeriod = pgxHealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = pgxConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	return pool, nil
}

// NewSQLDB opens a database/sql pool on lib/pq for dsn and checks that the database answers.
func NewSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	tuneSQLPool(db)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	return db, nil
}

// NewSQLXDB opens a sqlx pool on lib/pq for dsn and checks that the database answers.
func NewSQLXDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	tuneSQLPool(db.DB)

	return db, nil
}

func tuneSQLPool(db *sql.DB) {
	db.SetMaxOpenConns(sqlMaxOpenConns)
	db.SetMaxIdleConns(sqlMaxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)
}
