package transactions

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/dbtest"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/pagination"
)

func seedTransaction(t *testing.T, conn *gorm.DB, userID uuid.UUID, at time.Time) models.Transaction {
	t.Helper()
	txn := models.Transaction{
		UserID:        userID,
		PaymentMethod: enums.PaymentMethodCard,
		Total:         decimal.NewFromInt(200),
		CreatedAt:     at,
		Items: []models.TransactionItem{{
			BookID:    uuid.New(),
			Quantity:  2,
			UnitPrice: decimal.NewFromInt(100),
			LineTotal: decimal.NewFromInt(200),
		}},
	}
	require.NoError(t, NewRepository(conn).Create(context.Background(), &txn))
	return txn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), logger.New(logger.Options{Output: io.Discard}))
	require.NoError(t, err)
	return svc
}

func TestListAllPagesNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	oldest := seedTransaction(t, conn, uuid.New(), base)
	middle := seedTransaction(t, conn, uuid.New(), base.Add(time.Hour))
	newest := seedTransaction(t, conn, uuid.New(), base.Add(2*time.Hour))

	first, err := svc.ListAll(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Transactions, 2)
	assert.Equal(t, newest.ID, first.Transactions[0].ID)
	assert.Equal(t, middle.ID, first.Transactions[1].ID)
	require.NotEmpty(t, first.NextCursor)
	require.Len(t, first.Transactions[0].Items, 1)
	assert.Equal(t, "200", first.Transactions[0].Total.String())

	second, err := svc.ListAll(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Transactions, 1)
	assert.Equal(t, oldest.ID, second.Transactions[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestListMineOnlyReturnsOwnTransactions(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	me := uuid.New()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mine := seedTransaction(t, conn, me, at)
	seedTransaction(t, conn, uuid.New(), at.Add(time.Minute))

	page, err := svc.ListMine(ctx, me, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, mine.ID, page.Transactions[0].ID)
	assert.Equal(t, "card", page.Transactions[0].PaymentMethod)
}

func TestListRejectsBadCursor(t *testing.T) {
	svc := newTestService(t, dbtest.Open(t))
	_, err := svc.ListAll(context.Background(), pagination.Params{Cursor: "not-base64!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
