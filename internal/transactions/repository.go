package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/internal/repo"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/pagination"
)

// Repository persists completed checkouts. Rows are never updated.
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

// Create inserts the transaction together with its snapshot lines.
func (r *Repository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.DB(ctx).Create(txn).Error
}

// List returns a page of transactions, newest first. A nil userID lists every user.
// It fetches one row past the limit so callers can tell whether a next page exists.
func (r *Repository) List(ctx context.Context, userID *uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Transaction, error) {
	query := r.DB(ctx).Model(&models.Transaction{}).Preload("Items")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Transaction
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	return rows, err
}
