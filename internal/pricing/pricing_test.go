package pricing

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func campaignFor(pct int, books ...uuid.UUID) models.DiscountCampaign {
	c := models.DiscountCampaign{ID: uuid.New(), Percentage: pct}
	for i, id := range books {
		c.Books = append(c.Books, models.DiscountCampaignBook{CampaignID: c.ID, BookID: id, Position: i})
	}
	return c
}

func TestPriceLineItem(t *testing.T) {
	tests := []struct {
		name     string
		book     models.Book
		qty      int
		pct      int
		discount bool
		want     string
	}{
		{name: "no campaign", book: models.Book{Price: dec("100")}, qty: 3, want: "300"},
		{name: "no campaign ignores override", book: models.Book{Price: dec("100"), DiscountPrice: decPtr("80")}, qty: 2, want: "200"},
		{name: "campaign without override", book: models.Book{Price: dec("100")}, qty: 2, pct: 20, discount: true, want: "200"},
		{name: "campaign with override", book: models.Book{Price: dec("100"), DiscountPrice: decPtr("80")}, qty: 1, pct: 20, discount: true, want: "76"},
		{name: "campaign with override qty 3", book: models.Book{Price: dec("100"), DiscountPrice: decPtr("80")}, qty: 3, pct: 20, discount: true, want: "228"},
		{name: "zero override floors at zero", book: models.Book{Price: dec("100"), DiscountPrice: decPtr("0")}, qty: 3, pct: 40, discount: true, want: "0"},
		{name: "small override floors at zero", book: models.Book{Price: dec("100"), DiscountPrice: decPtr("10")}, qty: 1, pct: 40, discount: true, want: "0"},
		{name: "fractional prices stay exact", book: models.Book{Price: dec("19.99"), DiscountPrice: decPtr("14.99")}, qty: 3, pct: 15, discount: true, want: "42.72"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var campaign *models.DiscountCampaign
			if tt.discount {
				c := campaignFor(tt.pct, uuid.New())
				campaign = &c
			}
			got := PriceLineItem(tt.book, tt.qty, campaign)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestPriceLineItemWithoutDiscountIsBaseTimesQuantity(t *testing.T) {
	for _, price := range []string{"10", "12.50", "9999.99"} {
		for q := 1; q <= 25; q++ {
			book := models.Book{Price: dec(price)}
			got := PriceLineItem(book, q, nil)
			want := dec(price).Mul(decimal.NewFromInt(int64(q)))
			require.True(t, got.Equal(want), "price %s q %d: got %s", price, q, got)
		}
	}
}

func TestPriceLineItemNeverNegative(t *testing.T) {
	for override := 0; override <= 100; override += 5 {
		for pct := 5; pct <= 40; pct++ {
			book := models.Book{Price: dec("100"), DiscountPrice: decPtr(decimal.NewFromInt(int64(override)).String())}
			c := campaignFor(pct, uuid.New())
			got := PriceLineItem(book, 2, &c)
			require.False(t, got.IsNegative(), "override %d pct %d: got %s", override, pct, got)
		}
	}
}

func TestResolve(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	campaigns := []models.DiscountCampaign{campaignFor(10, a), campaignFor(25, b)}

	got := Resolve(campaigns, b)
	require.NotNil(t, got)
	assert.Equal(t, 25, got.Percentage)
	assert.Nil(t, Resolve(campaigns, c))
	assert.Nil(t, Resolve(nil, a))
}

func TestQuoteLines(t *testing.T) {
	plain, discounted, gone := uuid.New(), uuid.New(), uuid.New()
	books := map[uuid.UUID]models.Book{
		plain:      {ID: plain, Price: dec("50")},
		discounted: {ID: discounted, Price: dec("100"), DiscountPrice: decPtr("80")},
	}
	campaigns := []models.DiscountCampaign{campaignFor(20, discounted)}

	quote, missing := QuoteLines([]Line{
		{BookID: plain, Quantity: 2},
		{BookID: discounted, Quantity: 1},
		{BookID: gone, Quantity: 4},
	}, books, campaigns)

	assert.Equal(t, []uuid.UUID{gone}, missing)
	require.Len(t, quote.Lines, 2)
	assert.True(t, quote.Lines[0].Amount.Equal(dec("100")))
	assert.Nil(t, quote.Lines[0].CampaignID)
	assert.True(t, quote.Lines[1].Amount.Equal(dec("76")))
	require.NotNil(t, quote.Lines[1].CampaignID)
	assert.Equal(t, 20, quote.Lines[1].Percentage)
	assert.True(t, quote.Lines[1].UnitPrice.Equal(dec("80")))
	assert.True(t, quote.Total.Equal(dec("176")))
}

func TestPriceLineItemConcurrentUse(t *testing.T) {
	book := models.Book{Price: dec("100"), DiscountPrice: decPtr("80")}
	campaign := campaignFor(20, uuid.New())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := PriceLineItem(book, 1, &campaign)
			assert.True(t, got.Equal(dec("76")))
		}()
	}
	wg.Wait()
}

func TestPresentRoundsOnce(t *testing.T) {
	assert.Equal(t, "42.72", Present(dec("42.7215")).StringFixed(2))
}
