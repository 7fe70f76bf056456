package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// TransactionLine mirrors one purchased line.
type TransactionLine struct {
	BookID    uuid.UUID       `json:"book_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// TransactionCreatedEvent is emitted when a checkout commits.
type TransactionCreatedEvent struct {
	TransactionID uuid.UUID           `json:"transaction_id"`
	UserID        uuid.UUID           `json:"user_id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Total         decimal.Decimal     `json:"total"`
	Lines         []TransactionLine   `json:"lines"`
}

// BookRatingChangedEvent is emitted whenever a review add/update/remove
// changes a book's aggregate rating.
type BookRatingChangedEvent struct {
	BookID      uuid.UUID       `json:"book_id"`
	Rating      decimal.Decimal `json:"rating"`
	ReviewCount int             `json:"review_count"`
}

// DiscountChangedEvent carries the campaign state after create, update or shrink.
type DiscountChangedEvent struct {
	CampaignID uuid.UUID       `json:"campaign_id"`
	Percentage int             `json:"percentage"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	BookIDs    []uuid.UUID     `json:"book_ids"`
	Countries  []enums.Country `json:"countries"`
}

// DiscountDeletedEvent is emitted when a campaign is removed outright.
type DiscountDeletedEvent struct {
	CampaignID uuid.UUID   `json:"campaign_id"`
	BookIDs    []uuid.UUID `json:"book_ids"`
}
