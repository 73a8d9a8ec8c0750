package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/catalog"
	"github.com/AntonStoeckl/library-loans-go/catalog/postgresengine/internal/adapters"
)

const (
	dialectPostgres = "postgres"

	tableBooks = "books"
	tableUsers = "users"
	tableLoans = "loans"

	colSeq                    = "seq"
	colID                     = "id"
	colTitle                  = "title"
	colAuthor                 = "author"
	colISBN                   = "isbn"
	colTotalQuantity          = "total_quantity"
	colAvailableQuantity      = "available_quantity"
	colName                   = "name"
	colIdentificationDocument = "identification_document"
	colEmail                  = "email"
	colActiveLoans            = "active_loans"
	colUserID                 = "user_id"
	colBookID                 = "book_id"
	colLoanDate               = "loan_date"
	colReturnDate             = "return_date"
	colStatus                 = "status"
)

var (
	bookColumns = []any{
		goqu.L("id::text"), goqu.C(colTitle), goqu.C(colAuthor), goqu.C(colISBN),
		goqu.C(colTotalQuantity), goqu.C(colAvailableQuantity),
	}

	userColumns = []any{
		goqu.L("id::text"), goqu.C(colName), goqu.C(colIdentificationDocument), goqu.C(colEmail),
		goqu.C(colActiveLoans),
	}

	loanColumns = []any{
		goqu.L("id::text"), goqu.L("user_id::text"), goqu.L("book_id::text"),
		goqu.C(colLoanDate), goqu.C(colReturnDate), goqu.C(colStatus),
	}
)

// reader implements catalog.Reader on top of any Querier, a pool or an open transaction.
type reader struct {
	observer

	q adapters.Querier
}

func (r reader) GetBook(ctx context.Context, id uuid.UUID) (catalog.Book, error) {
	return r.getBook(ctx, id, false)
}

func (r reader) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	stmt := goqu.Dialect(dialectPostgres).From(tableBooks).Select(bookColumns...).Order(goqu.C(colSeq).Asc())

	return queryAll(ctx, r, stmt, scanBook)
}

func (r reader) GetUser(ctx context.Context, id uuid.UUID) (catalog.User, error) {
	return r.getUser(ctx, id, false)
}

func (r reader) ListUsers(ctx context.Context) ([]catalog.User, error) {
	stmt := goqu.Dialect(dialectPostgres).From(tableUsers).Select(userColumns...).Order(goqu.C(colSeq).Asc())

	return queryAll(ctx, r, stmt, scanUser)
}

func (r reader) GetLoan(ctx context.Context, id uuid.UUID) (catalog.Loan, error) {
	return r.getLoan(ctx, id, false)
}

func (r reader) ListLoans(ctx context.Context) ([]catalog.Loan, error) {
	stmt := goqu.Dialect(dialectPostgres).From(tableLoans).Select(loanColumns...).Order(goqu.C(colSeq).Asc())

	return queryAll(ctx, r, stmt, scanLoan)
}

func (r reader) ListActiveLoansByUser(ctx context.Context, userID uuid.UUID) ([]catalog.Loan, error) {
	return r.listActiveLoans(ctx, goqu.Ex{colUserID: userID.String()})
}

func (r reader) listActiveLoans(ctx context.Context, by goqu.Ex) ([]catalog.Loan, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(tableLoans).
		Select(loanColumns...).
		Where(by, goqu.Ex{colStatus: string(catalog.LoanStatusActive)}).
		Order(goqu.C(colSeq).Asc())

	return queryAll(ctx, r, stmt, scanLoan)
}

func (r reader) getBook(ctx context.Context, id uuid.UUID, forUpdate bool) (catalog.Book, error) {
	stmt := byID(tableBooks, id, forUpdate).Select(bookColumns...)

	return queryOne(ctx, r, stmt, scanBook, catalog.ErrBookNotFound)
}

func (r reader) getUser(ctx context.Context, id uuid.UUID, forUpdate bool) (catalog.User, error) {
	stmt := byID(tableUsers, id, forUpdate).Select(userColumns...)

	return queryOne(ctx, r, stmt, scanUser, catalog.ErrUserNotFound)
}

func (r reader) getLoan(ctx context.Context, id uuid.UUID, forUpdate bool) (catalog.Loan, error) {
	stmt := byID(tableLoans, id, forUpdate).Select(loanColumns...)

	return queryOne(ctx, r, stmt, scanLoan, catalog.ErrLoanNotFound)
}

func byID(table string, id uuid.UUID, forUpdate bool) *goqu.SelectDataset {
	stmt := goqu.Dialect(dialectPostgres).From(table).Where(goqu.Ex{colID: id.String()})
	if forUpdate {
		stmt = stmt.ForUpdate(exp.Wait)
	}

	return stmt
}

// query renders stmt and runs it, logging the statement and its duration.
func (r reader) query(ctx context.Context, stmt *goqu.SelectDataset) (adapters.DBRows, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		r.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := r.q.Query(ctx, sqlQuery)
	r.logQueryWithDuration(logActionQuery, sqlQuery, time.Since(start))

	if queryErr != nil {
		r.logError(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, classify(errors.Join(ErrQueryFailed, queryErr))
	}

	return rows, nil
}

func (r reader) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		r.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

type scanFunc[T any] func(rows adapters.DBRows) (T, error)

func queryAll[T any](ctx context.Context, r reader, stmt *goqu.SelectDataset, scan scanFunc[T]) ([]T, error) {
	rows, err := r.query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer r.closeRows(rows)

	result := make([]T, 0)

	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			r.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(ErrScanFailed, scanErr)
		}

		result = append(result, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		r.logError(logMsgDBQueryFailed, logAttrError, rowsErr.Error())
		return nil, classify(errors.Join(ErrQueryFailed, rowsErr))
	}

	return result, nil
}

func queryOne[T any](ctx context.Context, r reader, stmt *goqu.SelectDataset, scan scanFunc[T], notFound error) (T, error) {
	var empty T

	items, err := queryAll(ctx, r, stmt.Limit(1), scan)
	if err != nil {
		return empty, err
	}

	if len(items) == 0 {
		return empty, notFound
	}

	return items[0], nil
}

func scanBook(rows adapters.DBRows) (catalog.Book, error) {
	var (
		b  catalog.Book
		id string
	)

	if err := rows.Scan(&id, &b.Title, &b.Author, &b.ISBN, &b.TotalQuantity, &b.AvailableQuantity); err != nil {
		return catalog.Book{}, err
	}

	var err error
	b.ID, err = uuid.Parse(id)

	return b, err
}

func scanUser(rows adapters.DBRows) (catalog.User, error) {
	var (
		u  catalog.User
		id string
	)

	if err := rows.Scan(&id, &u.Name, &u.IdentificationDocument, &u.Email, &u.ActiveLoans); err != nil {
		return catalog.User{}, err
	}

	var err error
	u.ID, err = uuid.Parse(id)

	return u, err
}

func scanLoan(rows adapters.DBRows) (catalog.Loan, error) {
	var (
		l                  catalog.Loan
		id, userID, bookID string
		status             string
		returnDate         sql.NullTime
	)

	if err := rows.Scan(&id, &userID, &bookID, &l.LoanDate, &returnDate, &status); err != nil {
		return catalog.Loan{}, err
	}

	ids := make([]uuid.UUID, 0, 3)
	for _, raw := range []string{id, userID, bookID} {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return catalog.Loan{}, err
		}

		ids = append(ids, parsed)
	}

	l.ID, l.UserID, l.BookID = ids[0], ids[1], ids[2]
	l.LoanDate = l.LoanDate.UTC()
	l.Status = catalog.LoanStatus(status)

	if returnDate.Valid {
		rd := returnDate.Time.UTC()
		l.ReturnDate = &rd
	}

	return l, nil
}
