package cart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pallab-BJIT/mid-term-project/internal/pricing"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// Priced is the outcome of pricing a set of lines against the live catalog.
type Priced struct {
	Quote   pricing.Quote
	Books   map[uuid.UUID]models.Book
	Missing []uuid.UUID
}

// Pricer loads the books and active campaigns a set of lines needs and prices them.
type Pricer struct {
	books     BookFinder
	campaigns CampaignFinder
}

func NewPricer(books BookFinder, campaigns CampaignFinder) *Pricer {
	return &Pricer{books: books, campaigns: campaigns}
}

// Price quotes lines for a buyer from country at now.
func (p *Pricer) Price(ctx context.Context, lines []pricing.Line, country enums.Country, now time.Time) (*Priced, error) {
	ids := DistinctBookIDs(lines)
	rows, err := p.books.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	books := make(map[uuid.UUID]models.Book, len(rows))
	for _, b := range rows {
		books[b.ID] = b
	}
	found, err := p.campaigns.FindActiveForBooks(ctx, ids, country, now)
	if err != nil {
		return nil, err
	}
	// window bounds are rechecked so a finder with a coarser filter cannot
	// apply an expired campaign
	campaigns := make([]models.DiscountCampaign, 0, len(found))
	for _, c := range found {
		if c.ActiveAt(now) {
			campaigns = append(campaigns, c)
		}
	}
	quote, missing := pricing.QuoteLines(lines, books, campaigns)
	return &Priced{Quote: quote, Books: books, Missing: missing}, nil
}

// DistinctBookIDs returns each referenced book once, in first-seen order.
func DistinctBookIDs(lines []pricing.Line) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.BookID]; ok {
			continue
		}
		seen[l.BookID] = struct{}{}
		ids = append(ids, l.BookID)
	}
	return ids
}

// Lines converts cart items into pricing lines.
func Lines(items []models.CartItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{BookID: it.BookID, Quantity: it.Quantity})
	}
	return lines
}
