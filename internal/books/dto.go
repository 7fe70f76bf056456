package books

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pallab-BJIT/mid-term-project/internal/pricing"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

// BookView is the catalog payload returned to clients.
type BookView struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Rating        decimal.Decimal  `json:"rating"`
	Stock         int              `json:"stock"`
	Category      string           `json:"category"`
	ISBN          *string          `json:"isbn,omitempty"`
	PublishedAt   *time.Time       `json:"publishedAt,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// NewBookView maps the persisted model, rounding money for presentation.
func NewBookView(b models.Book) BookView {
	view := BookView{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Price:       pricing.Present(b.Price),
		Rating:      b.Rating.Round(2),
		Stock:       b.Stock,
		Category:    b.Category,
		ISBN:        b.ISBN,
		PublishedAt: b.PublishedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.DiscountPrice != nil {
		dp := pricing.Present(*b.DiscountPrice)
		view.DiscountPrice = &dp
	}
	return view
}

// CreateBookInput carries the admin fields for a new book.
type CreateBookInput struct {
	Title         string           `json:"title" validate:"required,max=30"`
	Author        string           `json:"author" validate:"required"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Stock         int              `json:"stock" validate:"gte=0"`
	Category      string           `json:"category" validate:"required"`
	ISBN          *string          `json:"isbn"`
	PublishedAt   *time.Time       `json:"publishedAt"`
}

// UpdateBookInput carries a partial admin update. Rating is never accepted.
type UpdateBookInput struct {
	Title         *string          `json:"title" validate:"omitempty,max=30"`
	Author        *string          `json:"author"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Stock         *int             `json:"stock" validate:"omitempty,gte=0"`
	Category      *string          `json:"category"`
	ISBN          *string          `json:"isbn"`
	PublishedAt   *time.Time       `json:"publishedAt"`
}
