package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pallab-BJIT/mid-term-project/internal/pricing"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

// ItemInput names a book and a quantity.
type ItemInput struct {
	BookID   uuid.UUID `json:"bookId" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type LineView struct {
	BookID     uuid.UUID       `json:"bookId"`
	Title      string          `json:"title,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Amount     decimal.Decimal `json:"amount"`
	DiscountID *uuid.UUID      `json:"discountId,omitempty"`
	Percentage int             `json:"discountPercentage,omitempty"`
}

// CartView is a cart priced for its owner.
type CartView struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	Items      []LineView      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func newCartView(c *models.Cart, priced *Priced) *CartView {
	view := &CartView{
		ID:         c.ID,
		UserID:     c.UserID,
		Items:      make([]LineView, 0, len(priced.Quote.Lines)),
		TotalPrice: pricing.Present(priced.Quote.Total),
	}
	for _, l := range priced.Quote.Lines {
		view.Items = append(view.Items, LineView{
			BookID:     l.BookID,
			Title:      priced.Books[l.BookID].Title,
			Quantity:   l.Quantity,
			UnitPrice:  pricing.Present(l.UnitPrice),
			Amount:     pricing.Present(l.Amount),
			DiscountID: l.CampaignID,
			Percentage: l.Percentage,
		})
	}
	return view
}
