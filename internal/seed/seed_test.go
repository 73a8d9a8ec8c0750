package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/catalog/memoryengine"
	"github.com/AntonStoeckl/library-loans-go/internal/seed"
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

func Test_Run_IsRepeatable(t *testing.T) {
	// arrange
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	l, err := ledger.New(store)
	require.NoError(t, err)
	ctx := context.Background()

	// act
	first, err := seed.Run(ctx, l)
	require.NoError(t, err)
	second, err := seed.Run(ctx, l)
	require.NoError(t, err)

	// assert
	assert.Equal(t, seed.Report{UsersCreated: len(seed.Users), BooksCreated: len(seed.Books)}, first)
	assert.Equal(t, seed.Report{UsersSkipped: len(seed.Users), BooksSkipped: len(seed.Books)}, second)

	books, err := l.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, len(seed.Books))
	for _, b := range books {
		assert.Equal(t, b.TotalQuantity, b.AvailableQuantity)
	}
}
