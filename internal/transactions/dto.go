package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pallab-BJIT/mid-term-project/internal/pricing"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

type ItemView struct {
	BookID    uuid.UUID       `json:"bookId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// View is the transport shape of a transaction.
type View struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	PaymentMethod string          `json:"paymentMethod"`
	Total         decimal.Decimal `json:"total"`
	Items         []ItemView      `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Page is one cursor page of transactions.
type Page struct {
	Transactions []View `json:"transactions"`
	NextCursor   string `json:"nextCursor,omitempty"`
}

func NewView(t *models.Transaction) *View {
	view := &View{
		ID:            t.ID,
		UserID:        t.UserID,
		PaymentMethod: t.PaymentMethod.String(),
		Total:         pricing.Present(t.Total),
		Items:         make([]ItemView, 0, len(t.Items)),
		CreatedAt:     t.CreatedAt,
	}
	for _, it := range t.Items {
		view.Items = append(view.Items, ItemView{
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: pricing.Present(it.UnitPrice),
			LineTotal: pricing.Present(it.LineTotal),
		})
	}
	return view
}
