package postgresengine

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

var (
	// ErrNilDatabaseConnection is returned when a constructor gets a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrBuildingQueryFailed is returned when goqu fails to render a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrQueryFailed is returned when a query fails to execute.
	ErrQueryFailed = errors.New("query failed")

	// ErrExecFailed is returned when a statement fails to execute.
	ErrExecFailed = errors.New("exec failed")

	// ErrScanFailed is returned when a result row cannot be scanned.
	ErrScanFailed = errors.New("scanning row failed")

	// ErrRowsAffectedFailed is returned when the number of affected rows cannot be read.
	ErrRowsAffectedFailed = errors.New("reading rows affected failed")

	// ErrBeginTxFailed is returned when a transaction cannot be started.
	ErrBeginTxFailed = errors.New("beginning transaction failed")

	// ErrCommitFailed is returned when a transaction cannot be committed.
	ErrCommitFailed = errors.New("committing transaction failed")

	// ErrMigrationFailed is returned when the schema cannot be applied.
	ErrMigrationFailed = errors.New("schema migration failed")
)

const (
	pgCodeUniqueViolation      = "23505"
	pgCodeForeignKeyViolation  = "23503"
	pgCodeCheckViolation       = "23514"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
)

// classify adds the catalog error matching the PostgreSQL error code and constraint to err.
// Errors from pgx and from lib/pq are both understood.
func classify(err error) error {
	code, constraint, ok := pgErrorDetails(err)
	if !ok {
		return err
	}

	switch code {
	case pgCodeSerializationFailure, pgCodeDeadlockDetected:
		return errors.Join(catalog.ErrConcurrencyConflict, err)

	case pgCodeUniqueViolation:
		switch constraint {
		case "books_isbn_key":
			return catalog.NewFieldError("isbn", errors.Join(catalog.ErrDuplicateISBN, err))
		case "users_email_key":
			return catalog.NewFieldError("email", errors.Join(catalog.ErrDuplicateEmail, err))
		case "users_identification_document_key":
			return catalog.NewFieldError("identificationDocument", errors.Join(catalog.ErrDuplicateDocument, err))
		case "loans_one_active_per_user_book":
			return errors.Join(catalog.ErrDuplicateActiveLoan, err)
		}

	case pgCodeForeignKeyViolation:
		switch constraint {
		case "loans_user_id_fkey":
			return errors.Join(catalog.ErrUserNotFound, err)
		case "loans_book_id_fkey":
			return errors.Join(catalog.ErrBookNotFound, err)
		}

	case pgCodeCheckViolation:
		return errors.Join(catalog.ErrCounterInvariantViolated, err)
	}

	return err
}

func pgErrorDetails(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}

	return "", "", false
}
