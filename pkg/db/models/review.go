package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewBucket groups every review of one book.
type ReviewBucket struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BookID    uuid.UUID `gorm:"column:book_id;type:uuid;not null;uniqueIndex"`
	Reviews   []Review  `gorm:"foreignKey:BucketID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *ReviewBucket) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}

// Review is a single user's rating and message for a book.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BucketID  uuid.UUID `gorm:"column:bucket_id;type:uuid;not null;uniqueIndex:ux_reviews_bucket_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_reviews_bucket_user"`
	Message   string    `gorm:"column:message;not null;default:''"`
	Rating    int       `gorm:"column:rating;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
