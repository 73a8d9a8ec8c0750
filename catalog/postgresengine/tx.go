package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/catalog"
	"github.com/AntonStoeckl/library-loans-go/catalog/postgresengine/internal/adapters"
)

// tx implements catalog.Tx on an open READ COMMITTED transaction.
// Lock methods use SELECT ... FOR UPDATE.
type tx struct {
	reader

	dbTx adapters.DBTx
}

func (t *tx) LockBook(ctx context.Context, id uuid.UUID) (catalog.Book, error) {
	return t.getBook(ctx, id, true)
}

func (t *tx) LockUser(ctx context.Context, id uuid.UUID) (catalog.User, error) {
	return t.getUser(ctx, id, true)
}

func (t *tx) LockLoan(ctx context.Context, id uuid.UUID) (catalog.Loan, error) {
	return t.getLoan(ctx, id, true)
}

func (t *tx) HasActiveLoan(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(tableLoans).
		Select(goqu.L("1")).
		Where(goqu.Ex{
			colUserID: userID.String(),
			colBookID: bookID.String(),
			colStatus: string(catalog.LoanStatusActive),
		}).
		Limit(1)

	found, err := queryAll(ctx, t.reader, stmt, func(rows adapters.DBRows) (int, error) {
		var one int
		return one, rows.Scan(&one)
	})
	if err != nil {
		return false, err
	}

	return len(found) > 0, nil
}

func (t *tx) ListActiveLoansByBook(ctx context.Context, bookID uuid.UUID) ([]catalog.Loan, error) {
	return t.listActiveLoans(ctx, goqu.Ex{colBookID: bookID.String()})
}

func (t *tx) InsertBook(ctx context.Context, book catalog.Book) error {
	stmt := goqu.Dialect(dialectPostgres).Insert(tableBooks).Rows(bookRecord(book))

	_, err := t.exec(ctx, stmt)

	return err
}

func (t *tx) UpdateBook(ctx context.Context, book catalog.Book) error {
	record := bookRecord(book)
	delete(record, colID)

	stmt := goqu.Dialect(dialectPostgres).Update(tableBooks).Set(record).Where(goqu.Ex{colID: book.ID.String()})

	return t.execExpectingRow(ctx, stmt, catalog.ErrBookNotFound)
}

func (t *tx) DeleteBook(ctx context.Context, id uuid.UUID) error {
	stmt := goqu.Dialect(dialectPostgres).Delete(tableBooks).Where(goqu.Ex{colID: id.String()})

	return t.execExpectingRow(ctx, stmt, catalog.ErrBookNotFound)
}

func (t *tx) InsertUser(ctx context.Context, user catalog.User) error {
	stmt := goqu.Dialect(dialectPostgres).Insert(tableUsers).Rows(userRecord(user))

	_, err := t.exec(ctx, stmt)

	return err
}

func (t *tx) UpdateUser(ctx context.Context, user catalog.User) error {
	record := userRecord(user)
	delete(record, colID)

	stmt := goqu.Dialect(dialectPostgres).Update(tableUsers).Set(record).Where(goqu.Ex{colID: user.ID.String()})

	return t.execExpectingRow(ctx, stmt, catalog.ErrUserNotFound)
}

func (t *tx) DeleteUser(ctx context.Context, id uuid.UUID) error {
	stmt := goqu.Dialect(dialectPostgres).Delete(tableUsers).Where(goqu.Ex{colID: id.String()})

	return t.execExpectingRow(ctx, stmt, catalog.ErrUserNotFound)
}

func (t *tx) InsertLoan(ctx context.Context, loan catalog.Loan) error {
	stmt := goqu.Dialect(dialectPostgres).Insert(tableLoans).Rows(loanRecord(loan))

	_, err := t.exec(ctx, stmt)

	return err
}

func (t *tx) UpdateLoan(ctx context.Context, loan catalog.Loan) error {
	record := loanRecord(loan)
	delete(record, colID)

	stmt := goqu.Dialect(dialectPostgres).Update(tableLoans).Set(record).Where(goqu.Ex{colID: loan.ID.String()})

	return t.execExpectingRow(ctx, stmt, catalog.ErrLoanNotFound)
}

type sqlExpression interface {
	ToSQL() (string, []any, error)
}

func (t *tx) exec(ctx context.Context, stmt sqlExpression) (int64, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		t.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	result, execErr := t.dbTx.Exec(ctx, sqlQuery)
	t.logQueryWithDuration(logActionExec, sqlQuery, time.Since(start))

	if execErr != nil {
		t.logError(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return 0, classify(errors.Join(ErrExecFailed, execErr))
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, errors.Join(ErrRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

func (t *tx) execExpectingRow(ctx context.Context, stmt sqlExpression, notFound error) error {
	rowsAffected, err := t.exec(ctx, stmt)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

func bookRecord(b catalog.Book) goqu.Record {
	return goqu.Record{
		colID:                b.ID.String(),
		colTitle:             b.Title,
		colAuthor:            b.Author,
		colISBN:              b.ISBN,
		colTotalQuantity:     b.TotalQuantity,
		colAvailableQuantity: b.AvailableQuantity,
	}
}

func userRecord(u catalog.User) goqu.Record {
	return goqu.Record{
		colID:                     u.ID.String(),
		colName:                   u.Name,
		colIdentificationDocument: u.IdentificationDocument,
		colEmail:                  u.Email,
		colActiveLoans:            u.ActiveLoans,
	}
}

func loanRecord(l catalog.Loan) goqu.Record {
	var returnDate any
	if l.ReturnDate != nil {
		returnDate = l.ReturnDate.UTC()
	}

	return goqu.Record{
		colID:         l.ID.String(),
		colUserID:     l.UserID.String(),
		colBookID:     l.BookID.String(),
		colLoanDate:   l.LoanDate.UTC(),
		colReturnDate: returnDate,
		colStatus:     string(l.Status),
	}
}
