package postgresengine

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-loans-go/catalog"
	"github.com/AntonStoeckl/library-loans-go/catalog/postgresengine/internal/adapters"
)

//go:embed schema.sql
var schemaSQL string

const (
	logMsgBuildQueryFailed  = "failed to build query"
	logMsgDBQueryFailed     = "database query execution failed"
	logMsgDBExecFailed      = "database execution failed"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgScanRowFailed     = "failed to scan database row"
	logMsgRollbackFailed    = "failed to roll back transaction"
	logMsgCommitFailed      = "failed to commit transaction"
	logMsgSQLExecuted       = "executed sql for: "
	logMsgSchemaMigrated    = "catalog schema migrated"
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrDurationMS       = "duration_ms"
	logActionQuery          = "query"
	logActionExec           = "exec"
	logActionMigrate        = "migrate"
	defaultSlowQueryWarning = 500 * time.Millisecond
	logMsgSlowQuery         = "slow sql statement"
)

// ErrNilLogger is returned when WithLogger is called with nil.
var ErrNilLogger = errors.New("logger must not be nil")

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithLogger sets the logger for SQL query logging, warnings, and error reporting.
func WithLogger(logger catalog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return ErrNilLogger
		}

		s.logger = logger

		return nil
	}
}

// WithSlowQueryThreshold sets the duration above which a statement is logged as a warning.
func WithSlowQueryThreshold(threshold time.Duration) Option {
	return func(s *Store) error {
		s.slowQueryThreshold = threshold
		return nil
	}
}

// Store is a PostgreSQL catalog.Store.
type Store struct {
	reader

	db adapters.DBAdapter
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{db: db}
	s.slowQueryThreshold = defaultSlowQueryWarning

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.reader.q = db

	return s, nil
}

// Migrate creates the tables, constraints, and indexes if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	start := time.Now()

	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		s.logError(logMsgDBExecFailed, logAttrError, err.Error())
		return errors.Join(ErrMigrationFailed, err)
	}

	s.logQueryWithDuration(logActionMigrate, "schema.sql", time.Since(start))

	if s.logger != nil {
		s.logger.Info(logMsgSchemaMigrated)
	}

	return nil
}

// WithinTx runs fn in a READ COMMITTED transaction and commits it if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Tx) error) (err error) {
	dbTx, err := s.db.BeginTx(ctx)
	if err != nil {
		return classify(errors.Join(ErrBeginTxFailed, err))
	}

	defer func() {
		if p := recover(); p != nil {
			s.rollback(ctx, dbTx)
			panic(p)
		}
	}()

	t := &tx{reader: reader{q: dbTx, observer: s.observer}, dbTx: dbTx}

	if err = fn(ctx, t); err != nil {
		s.rollback(ctx, dbTx)
		return err
	}

	if err = dbTx.Commit(ctx); err != nil {
		s.logError(logMsgCommitFailed, logAttrError, err.Error())
		return classify(errors.Join(ErrCommitFailed, err))
	}

	return nil
}

func (s *Store) rollback(ctx context.Context, dbTx adapters.DBTx) {
	// the rollback has to reach the server even when ctx is already canceled
	if err := dbTx.Rollback(context.WithoutCancel(ctx)); err != nil {
		s.logWarn(logMsgRollbackFailed, logAttrError, err.Error())
	}
}
