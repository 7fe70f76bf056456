package checkout

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/internal/books"
	"github.com/pallab-BJIT/mid-term-project/internal/cart"
	"github.com/pallab-BJIT/mid-term-project/internal/discounts"
	"github.com/pallab-BJIT/mid-term-project/internal/transactions"
	"github.com/pallab-BJIT/mid-term-project/internal/users"
	"github.com/pallab-BJIT/mid-term-project/pkg/db"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/dbtest"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/metrics"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	conn *gorm.DB
	svc  Service
	reg  *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{Output: io.Discard})
	reg := prometheus.NewRegistry()
	bookRepo := books.NewRepository(conn)
	svc, err := NewService(Deps{
		Tx:           db.Wrap(conn),
		Users:        users.NewRepository(conn),
		Carts:        cart.NewRepository(conn),
		Books:        bookRepo,
		Campaigns:    discounts.NewRepository(conn),
		Stock:        NewRepository(conn),
		Transactions: transactions.NewRepository(conn),
		Outbox:       outbox.NewService(outbox.NewRepository(conn), logg),
		Metrics:      metrics.NewCheckoutMetrics(reg),
		Logger:       logg,
	})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return fixedNow }
	return fixture{conn: conn, svc: svc, reg: reg}
}

// seedCart writes a cart for userID holding qty units of each book.
func (f fixture) seedCart(t *testing.T, userID uuid.UUID, qty int, bookIDs ...uuid.UUID) models.Cart {
	t.Helper()
	record := models.Cart{UserID: userID}
	for _, id := range bookIDs {
		record.Items = append(record.Items, models.CartItem{BookID: id, Quantity: qty})
	}
	require.NoError(t, f.conn.Create(&record).Error)
	return record
}

func (f fixture) reload(t *testing.T, dest any, id uuid.UUID) {
	t.Helper()
	require.NoError(t, f.conn.First(dest, "id = ?", id).Error)
}

func (f fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(model).Count(&n).Error)
	return n
}

func (f fixture) cartItems(t *testing.T, cartID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&n).Error)
	return n
}

func card(cartID uuid.UUID) Input {
	return Input{CartID: cartID, PaymentMethod: "card"}
}

func TestCheckoutCommitsAllWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, nil)
	book := dbtest.SeedBook(t, f.conn, func(b *models.Book) { b.Stock = 5 })
	record := f.seedCart(t, user.ID, 2, book.ID)

	view, err := f.svc.Execute(ctx, Buyer{UserID: user.ID}, card(record.ID))
	require.NoError(t, err)
	assert.Equal(t, "200", view.Total.String())
	assert.Equal(t, "card", view.PaymentMethod)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)

	var storedBook models.Book
	f.reload(t, &storedBook, book.ID)
	assert.Equal(t, 3, storedBook.Stock)

	var storedUser models.User
	f.reload(t, &storedUser, user.ID)
	assert.True(t, storedUser.Balance.Equal(decimal.NewFromInt(800)), "balance %s", storedUser.Balance)
	assert.Equal(t, user.Version+1, storedUser.Version)

	// emptied, not deleted
	var storedCart models.Cart
	f.reload(t, &storedCart, record.ID)
	assert.Zero(t, f.cartItems(t, record.ID))

	assert.EqualValues(t, 1, f.count(t, &models.Transaction{}))
	var event models.OutboxEvent
	require.NoError(t, f.conn.First(&event).Error)
	assert.Equal(t, enums.EventTransactionCreated, event.EventType)
	assert.Equal(t, view.ID, event.AggregateID)
}

func TestCheckoutAppliesCountryDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, nil)
	override := decimal.NewFromInt(80)
	book := dbtest.SeedBook(t, f.conn, func(b *models.Book) { b.DiscountPrice = &override })

	require.NoError(t, discounts.NewRepository(f.conn).Create(ctx, &models.DiscountCampaign{
		Percentage: 20,
		StartDate:  fixedNow.Add(-time.Hour),
		EndDate:    fixedNow.Add(24 * time.Hour),
		Books:      []models.DiscountCampaignBook{{BookID: book.ID}},
		Countries:  []models.DiscountCampaignCountry{{Country: enums.CountryBangladesh}},
	}))
	record := f.seedCart(t, user.ID, 1, book.ID)

	view, err := f.svc.Execute(ctx, Buyer{UserID: user.ID}, card(record.ID))
	require.NoError(t, err)
	// 80 - (100 - 80) * 20%
	assert.Equal(t, "76", view.Total.String())

	var storedUser models.User
	f.reload(t, &storedUser, user.ID)
	assert.True(t, storedUser.Balance.Equal(decimal.NewFromInt(924)), "balance %s", storedUser.Balance)
}

func TestCheckoutZeroOverrideNeverCreditsBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, nil)
	free := decimal.Zero
	book := dbtest.SeedBook(t, f.conn, func(b *models.Book) { b.DiscountPrice = &free })

	require.NoError(t, discounts.NewRepository(f.conn).Create(ctx, &models.DiscountCampaign{
		Percentage: 40,
		StartDate:  fixedNow.Add(-time.Hour),
		EndDate:    fixedNow.Add(24 * time.Hour),
		Books:      []models.DiscountCampaignBook{{BookID: book.ID}},
		Countries:  []models.DiscountCampaignCountry{{Country: enums.CountryBangladesh}},
	}))
	record := f.seedCart(t, user.ID, 3, book.ID)

	view, err := f.svc.Execute(ctx, Buyer{UserID: user.ID}, card(record.ID))
	require.NoError(t, err)
	assert.True(t, view.Total.IsZero(), "total %s", view.Total)

	var storedUser models.User
	f.reload(t, &storedUser, user.ID)
	assert.True(t, storedUser.Balance.Equal(user.Balance), "balance %s", storedUser.Balance)
}

func TestCheckoutInsufficientBalanceWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, f.conn, func(u *models.User) { u.Balance = decimal.NewFromInt(50) })
	book := dbtest.SeedBook(t, f.conn, nil)
	record := f.seedCart(t, user.ID, 1, book.ID)

	_, err := f.svc.Execute(ctx, Buyer{UserID: user.ID}, card(record.ID))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource), "got %v", err)

	var storedBook models.Book
	f.reload(t, &storedBook, book.ID)
	assert.Equal(t, 10, storedBook.Stock)

	var storedUser models.User
	f.reload(t, &storedUser, user.ID)
	assert.True(t, storedUser.Balance.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, user.Version, storedUser.Version)

	assert.EqualValues(t, 1, f.cartItems(t, record.ID))
	assert.Zero(t, f.count(t, &models.Transaction{}))
	assert.Zero(t, f.count(t, &models.OutboxEvent{}))
}

func TestCheckoutStockShortage(t *testing.T) {
	f := newFixture(t)
	user := dbtest.SeedUser(t, f.conn, nil)
	plenty := dbtest.SeedBook(t, f.conn, nil)
	scarce := dbtest.SeedBook(t, f.conn, func(b *models.Book) { b.Stock = 1 })
	record := f.seedCart(t, user.ID, 2, plenty.ID, scarce.ID)

	_, err := f.svc.Execute(context.Background(), Buyer{UserID: user.ID}, card(record.ID))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource), "got %v", err)

	var storedBook models.Book
	f.reload(t, &storedBook, plenty.ID)
	assert.Equal(t, 10, storedBook.Stock)
	assert.Zero(t, f.count(t, &models.Transaction{}))
}

func TestCheckoutMissingBookIsInconsistent(t *testing.T) {
	f := newFixture(t)
	user := dbtest.SeedUser(t, f.conn, nil)
	book := dbtest.SeedBook(t, f.conn, nil)
	record := f.seedCart(t, user.ID, 1, book.ID, uuid.New())

	_, err := f.svc.Execute(context.Background(), Buyer{UserID: user.ID}, card(record.ID))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInconsistent), "got %v", err)

	var storedBook models.Book
	f.reload(t, &storedBook, book.ID)
	assert.Equal(t, 10, storedBook.Stock)
	assert.Zero(t, f.count(t, &models.Transaction{}))
}

func TestCheckoutResolveFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, f.conn, nil)
	other := dbtest.SeedUser(t, f.conn, nil)
	book := dbtest.SeedBook(t, f.conn, nil)
	record := f.seedCart(t, owner.ID, 1, book.ID)
	empty := f.seedCart(t, other.ID, 1)

	tests := []struct {
		name  string
		buyer uuid.UUID
		input Input
		code  pkgerrors.Code
	}{
		{"unknown user", uuid.New(), card(record.ID), pkgerrors.CodeNotFound},
		{"unknown cart", owner.ID, card(uuid.New()), pkgerrors.CodeNotFound},
		{"someone else's cart", other.ID, card(record.ID), pkgerrors.CodeNotFound},
		{"empty cart", other.ID, card(empty.ID), pkgerrors.CodeValidation},
		{"bad payment method", owner.ID, Input{CartID: record.ID, PaymentMethod: "cash"}, pkgerrors.CodeValidation},
		{"missing cart id", owner.ID, Input{PaymentMethod: "online"}, pkgerrors.CodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Execute(ctx, Buyer{UserID: tc.buyer}, tc.input)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}

	assert.EqualValues(t, 1, f.cartItems(t, record.ID))
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newFixture(t)
	book := dbtest.SeedBook(t, f.conn, func(b *models.Book) { b.Stock = 3 })

	const buyers = 6
	carts := make([]models.Cart, 0, buyers)
	for i := 0; i < buyers; i++ {
		u := dbtest.SeedUser(t, f.conn, nil)
		carts = append(carts, f.seedCart(t, u.ID, 1, book.ID))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, c := range carts {
		wg.Add(1)
		go func(c models.Cart) {
			defer wg.Done()
			_, err := f.svc.Execute(context.Background(), Buyer{UserID: c.UserID}, card(c.ID))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource), "got %v", err)
		}(c)
	}
	wg.Wait()

	var storedBook models.Book
	f.reload(t, &storedBook, book.ID)
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, storedBook.Stock)
	assert.EqualValues(t, 3, f.count(t, &models.Transaction{}))
}

func TestCheckoutRecordsOutcomeMetrics(t *testing.T) {
	f := newFixture(t)
	user := dbtest.SeedUser(t, f.conn, nil)
	book := dbtest.SeedBook(t, f.conn, nil)
	record := f.seedCart(t, user.ID, 1, book.ID)

	_, err := f.svc.Execute(context.Background(), Buyer{UserID: user.ID}, card(record.ID))
	require.NoError(t, err)
	_, err = f.svc.Execute(context.Background(), Buyer{UserID: user.ID}, card(record.ID))
	require.Error(t, err)

	mfs, err := f.reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "checkout_outcomes_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				counts[l.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, counts[metrics.OutcomeCompleted])
	assert.Equal(t, 1.0, counts[metrics.OutcomeRejected])
}
