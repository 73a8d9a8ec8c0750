package catalog_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

func Test_NewBook_StartsWithAllCopiesAvailable(t *testing.T) {
	// act
	book, err := catalog.NewBook(" Dune ", "Frank Herbert", "978-0441013593", 3)

	// assert
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, 3, book.TotalQuantity)
	assert.Equal(t, 3, book.AvailableQuantity)
}

func Test_NewBook_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name          string
		title         string
		author        string
		isbn          string
		total         int
		expectedField string
	}{
		{name: "blank title", title: "  ", author: "a", isbn: "i", total: 1, expectedField: "title"},
		{name: "blank author", title: "t", author: "", isbn: "i", total: 1, expectedField: "author"},
		{name: "blank isbn", title: "t", author: "a", isbn: "", total: 1, expectedField: "isbn"},
		{name: "zero copies", title: "t", author: "a", isbn: "i", total: 0, expectedField: "totalQuantity"},
		{name: "negative copies", title: "t", author: "a", isbn: "i", total: -2, expectedField: "totalQuantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.NewBook(tt.title, tt.author, tt.isbn, tt.total)

			assert.ErrorIs(t, err, catalog.ErrInvalidBook)
			assert.ErrorIs(t, err, catalog.ErrInvalidInput)
			assert.Equal(t, tt.expectedField, catalog.FieldOf(err))
		})
	}
}

func Test_Book_DecrementAvailable_FailsWhenExhausted(t *testing.T) {
	// arrange
	book := catalog.Book{TotalQuantity: 1, AvailableQuantity: 1}

	// act
	firstErr := book.DecrementAvailable()
	secondErr := book.DecrementAvailable()

	// assert
	assert.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, catalog.ErrInventoryExhausted)
	assert.ErrorIs(t, secondErr, catalog.ErrConflict)
	assert.Equal(t, 0, book.AvailableQuantity)
	assert.False(t, book.HasAvailableCopy())
}

func Test_Book_RestoreAvailable_ClampsAtTotal(t *testing.T) {
	// arrange
	book := catalog.Book{TotalQuantity: 2, AvailableQuantity: 1}

	// act
	firstClamped := book.RestoreAvailable()
	secondClamped := book.RestoreAvailable()

	// assert
	assert.False(t, firstClamped)
	assert.True(t, secondClamped)
	assert.Equal(t, 2, book.AvailableQuantity)
}

func Test_Book_Revise_DerivesAvailableFromLentCopies(t *testing.T) {
	// arrange
	book := catalog.Book{Title: "t", Author: "a", ISBN: "i", TotalQuantity: 3, AvailableQuantity: 1}

	// act
	err := book.Revise("t2", "a2", "i2", 5, book.LentCopies())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 5, book.TotalQuantity)
	assert.Equal(t, 3, book.AvailableQuantity)
	assert.Equal(t, "t2", book.Title)
}

func Test_Book_Revise_RejectsTotalBelowLentCopies(t *testing.T) {
	// arrange
	book := catalog.Book{Title: "t", Author: "a", ISBN: "i", TotalQuantity: 3, AvailableQuantity: 0}

	// act
	err := book.Revise("t", "a", "i", 2, book.LentCopies())

	// assert
	assert.ErrorIs(t, err, catalog.ErrTotalBelowLentCopies)
	assert.Equal(t, "totalQuantity", catalog.FieldOf(err))
	assert.Equal(t, 3, book.TotalQuantity)
	assert.Equal(t, 0, book.AvailableQuantity)
}
