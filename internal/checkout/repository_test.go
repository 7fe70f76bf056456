package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/dbtest"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

func TestDecrementStockMergesAndDecrements(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	book := dbtest.SeedBook(t, conn, func(b *models.Book) { b.Stock = 5 })

	err := repo.DecrementStock(context.Background(), []StockDecrement{
		{BookID: book.ID, Quantity: 2},
		{BookID: book.ID, Quantity: 1},
	})
	require.NoError(t, err)

	var stored models.Book
	require.NoError(t, conn.First(&stored, "id = ?", book.ID).Error)
	assert.Equal(t, 2, stored.Stock)
}

func TestDecrementStockRollsBackWhenAnyRowFails(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ok := dbtest.SeedBook(t, conn, func(b *models.Book) { b.Stock = 5 })
	short := dbtest.SeedBook(t, conn, func(b *models.Book) { b.Stock = 1 })

	err := conn.Transaction(func(tx *gorm.DB) error {
		return repo.WithTx(tx).DecrementStock(context.Background(), []StockDecrement{
			{BookID: ok.ID, Quantity: 1},
			{BookID: short.ID, Quantity: 2},
		})
	})
	var exhausted *StockExhaustedError
	require.True(t, errors.As(err, &exhausted), "got %v", err)
	assert.Equal(t, short.ID, exhausted.BookID)

	var okRow, shortRow models.Book
	require.NoError(t, conn.First(&okRow, "id = ?", ok.ID).Error)
	assert.Equal(t, 5, okRow.Stock)
	require.NoError(t, conn.First(&shortRow, "id = ?", short.ID).Error)
	assert.Equal(t, 1, shortRow.Stock)
}

func TestDecrementStockUnknownBook(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	err := repo.DecrementStock(context.Background(), []StockDecrement{{BookID: uuid.New(), Quantity: 1}})
	var exhausted *StockExhaustedError
	assert.True(t, errors.As(err, &exhausted))
}

func TestDecrementStockRejectsNonPositiveQuantity(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	err := repo.DecrementStock(context.Background(), []StockDecrement{{BookID: uuid.New(), Quantity: 0}})
	require.Error(t, err)
	var exhausted *StockExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}
