package catalog_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

func Test_NewLoan_IsActiveWithoutReturnDate(t *testing.T) {
	// arrange
	userID, bookID := uuid.New(), uuid.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))

	// act
	loan, err := catalog.NewLoan(userID, bookID, now)

	// assert
	require.NoError(t, err)
	assert.True(t, loan.IsActive())
	assert.Nil(t, loan.ReturnDate)
	assert.Equal(t, userID, loan.UserID)
	assert.Equal(t, bookID, loan.BookID)
	assert.Equal(t, time.UTC, loan.LoanDate.Location())
	assert.Equal(t, 123456000, loan.LoanDate.Nanosecond())
}

func Test_Loan_MarkReturned_IsTerminal(t *testing.T) {
	// arrange
	loan, err := catalog.NewLoan(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)
	returnedAt := time.Now().Add(time.Hour)

	// act
	firstErr := loan.MarkReturned(returnedAt)
	secondErr := loan.MarkReturned(returnedAt.Add(time.Hour))

	// assert
	assert.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, catalog.ErrAlreadyReturned)
	assert.Equal(t, catalog.LoanStatusReturned, loan.Status)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, catalog.ToTimestamp(returnedAt), *loan.ReturnDate)
}
