// Package pricing turns catalog prices and discount campaigns into line and
// cart totals. Every function is pure and safe for concurrent use.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// Line is a (book, quantity) pair to be priced.
type Line struct {
	BookID   uuid.UUID
	Quantity int
}

// PricedLine is a Line with its unit price and computed amount.
type PricedLine struct {
	BookID     uuid.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
	Amount     decimal.Decimal
	CampaignID *uuid.UUID
	Percentage int
}

// Quote is the priced form of a set of lines.
type Quote struct {
	Lines []PricedLine
	Total decimal.Decimal
}

// PriceLineItem prices quantity units of book.
//
// Without an active campaign the amount is price × quantity. With one, the
// override price (or the base price when there is none) is charged and the
// campaign percentage of the gap between base and override is taken off on
// top: eff×q − (base×q − eff×q) × pct/100. A small override can push that
// below zero; the amount is floored at zero so a line never credits the buyer.
func PriceLineItem(book models.Book, quantity int, campaign *models.DiscountCampaign) decimal.Decimal {
	q := decimal.NewFromInt(int64(quantity))
	base := book.Price.Mul(q)
	if campaign == nil {
		return base
	}

	effective := EffectiveUnitPrice(book).Mul(q)
	gap := base.Sub(effective)
	pct := decimal.NewFromInt(int64(campaign.Percentage)).Div(hundred)
	amount := effective.Sub(gap.Mul(pct))
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// EffectiveUnitPrice returns the override price when set, the base price otherwise.
func EffectiveUnitPrice(book models.Book) decimal.Decimal {
	if book.DiscountPrice != nil {
		return *book.DiscountPrice
	}
	return book.Price
}

// Resolve returns the campaign that references bookID, or nil. Campaigns are
// expected to be pre-filtered by country and time; a book is never in more
// than one campaign.
func Resolve(campaigns []models.DiscountCampaign, bookID uuid.UUID) *models.DiscountCampaign {
	for i := range campaigns {
		if campaigns[i].HasBook(bookID) {
			return &campaigns[i]
		}
	}
	return nil
}

// QuoteLines prices every line against books (keyed by id) and the active
// campaigns. Lines whose book is missing from books are skipped and reported
// in the second return value.
func QuoteLines(lines []Line, books map[uuid.UUID]models.Book, campaigns []models.DiscountCampaign) (Quote, []uuid.UUID) {
	quote := Quote{Lines: make([]PricedLine, 0, len(lines)), Total: decimal.Zero}
	var missing []uuid.UUID

	for _, line := range lines {
		book, ok := books[line.BookID]
		if !ok {
			missing = append(missing, line.BookID)
			continue
		}

		campaign := Resolve(campaigns, line.BookID)
		priced := PricedLine{
			BookID:    line.BookID,
			Quantity:  line.Quantity,
			UnitPrice: book.Price,
			Amount:    PriceLineItem(book, line.Quantity, campaign),
		}
		if campaign != nil {
			id := campaign.ID
			priced.CampaignID = &id
			priced.Percentage = campaign.Percentage
			priced.UnitPrice = EffectiveUnitPrice(book)
		}

		quote.Lines = append(quote.Lines, priced)
		quote.Total = quote.Total.Add(priced.Amount)
	}
	return quote, missing
}

// Present rounds an amount for display. Computation never rounds.
func Present(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
