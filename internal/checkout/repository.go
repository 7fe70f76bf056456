package checkout

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/internal/repo"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

// StockDecrement asks for quantity units of a book.
type StockDecrement struct {
	BookID   uuid.UUID
	Quantity int
}

// StockExhaustedError reports that a conditional decrement matched no row:
// the book is gone or has fewer than the requested units left.
type StockExhaustedError struct {
	BookID uuid.UUID
}

func (e *StockExhaustedError) Error() string {
	return fmt.Sprintf("stock exhausted for book %s", e.BookID)
}

// Repository owns the stock writes performed at checkout.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// DecrementStock lowers stock for every request with
// `stock = stock - q WHERE id = ? AND stock >= q`. It stops at the first row
// that does not match and returns *StockExhaustedError; callers must run it
// inside a transaction so the earlier decrements roll back.
func (r *Repository) DecrementStock(ctx context.Context, requests []StockDecrement) error {
	merged := make(map[uuid.UUID]int, len(requests))
	for _, req := range requests {
		if req.Quantity <= 0 {
			return fmt.Errorf("quantity for book %s must be positive", req.BookID)
		}
		merged[req.BookID] += req.Quantity
	}

	// A fixed order keeps concurrent checkouts locking rows the same way.
	ids := make([]uuid.UUID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		qty := merged[id]
		res := r.DB(ctx).
			Model(&models.Book{}).
			Where("id = ? AND stock >= ?", id, qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &StockExhaustedError{BookID: id}
		}
	}
	return nil
}
