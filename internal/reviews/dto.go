package reviews

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

// AddInput is a new review for a book.
type AddInput struct {
	Message string `json:"message" validate:"max=500"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

// UpdateInput replaces the message and, when set, the rating.
type UpdateInput struct {
	Message string `json:"message" validate:"max=500"`
	Rating  *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

type ReviewView struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookReviews is a book's review bucket together with its aggregate rating.
type BookReviews struct {
	BookID  uuid.UUID       `json:"bookId"`
	Rating  decimal.Decimal `json:"rating"`
	Reviews []ReviewView    `json:"reviews"`
}

func newBookReviews(bookID uuid.UUID, rating decimal.Decimal, entries []models.Review) *BookReviews {
	out := &BookReviews{
		BookID:  bookID,
		Rating:  rating.Round(2),
		Reviews: make([]ReviewView, 0, len(entries)),
	}
	for _, e := range entries {
		out.Reviews = append(out.Reviews, ReviewView{
			ID:        e.ID,
			UserID:    e.UserID,
			Message:   e.Message,
			Rating:    e.Rating,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		})
	}
	return out
}
