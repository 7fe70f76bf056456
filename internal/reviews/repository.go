package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

// Repository persists review buckets and their entries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByBook loads the bucket for bookID with entries oldest first.
func (r *Repository) FindByBook(ctx context.Context, bookID uuid.UUID) (*models.ReviewBucket, error) {
	var bucket models.ReviewBucket
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		First(&bucket, "book_id = ?", bookID).Error
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (r *Repository) CreateBucket(ctx context.Context, bucket *models.ReviewBucket) error {
	return r.db.WithContext(ctx).Omit("Reviews").Create(bucket).Error
}

func (r *Repository) AddReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *Repository) UpdateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).
		Model(review).
		Updates(map[string]any{
			"message": review.Message,
			"rating":  review.Rating,
		}).Error
}

func (r *Repository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{}).Error
}

func (r *Repository) DeleteBucket(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ReviewBucket{}).Error
}
