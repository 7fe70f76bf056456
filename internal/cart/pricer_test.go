package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pallab-BJIT/mid-term-project/internal/pricing"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

type stubBooks struct {
	books []models.Book
}

func (s stubBooks) FindByID(_ context.Context, id uuid.UUID) (*models.Book, error) {
	for i := range s.books {
		if s.books[i].ID == id {
			return &s.books[i], nil
		}
	}
	return nil, nil
}

func (s stubBooks) FindByIDs(context.Context, []uuid.UUID) ([]models.Book, error) {
	return s.books, nil
}

type stubCampaigns struct {
	campaigns []models.DiscountCampaign
}

func (s stubCampaigns) FindActiveForBooks(context.Context, []uuid.UUID, enums.Country, time.Time) ([]models.DiscountCampaign, error) {
	return s.campaigns, nil
}

func TestPricerSkipsCampaignOutsideWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	override := decimal.NewFromInt(80)
	book := models.Book{ID: uuid.New(), Price: decimal.NewFromInt(100), DiscountPrice: &override}
	campaign := func(start, end time.Time) models.DiscountCampaign {
		return models.DiscountCampaign{
			ID:         uuid.New(),
			Percentage: 20,
			StartDate:  start,
			EndDate:    end,
			Books:      []models.DiscountCampaignBook{{BookID: book.ID}},
		}
	}
	lines := []pricing.Line{{BookID: book.ID, Quantity: 1}}

	tests := []struct {
		name     string
		campaign models.DiscountCampaign
		want     string
	}{
		{name: "active", campaign: campaign(now.Add(-time.Hour), now.Add(time.Hour)), want: "76"},
		{name: "ends exactly now", campaign: campaign(now.Add(-time.Hour), now), want: "76"},
		{name: "expired", campaign: campaign(now.Add(-48*time.Hour), now.Add(-time.Hour)), want: "100"},
		{name: "not started", campaign: campaign(now.Add(time.Hour), now.Add(48*time.Hour)), want: "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPricer(stubBooks{books: []models.Book{book}}, stubCampaigns{campaigns: []models.DiscountCampaign{tt.campaign}})
			priced, err := p.Price(context.Background(), lines, enums.CountryBangladesh, now)
			require.NoError(t, err)
			assert.Empty(t, priced.Missing)
			assert.Equal(t, tt.want, priced.Quote.Total.String())
		})
	}
}
