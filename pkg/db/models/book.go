package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Book is a catalog entry. Rating is derived from the book's review bucket.
type Book struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Title         string           `gorm:"column:title;type:text;not null;uniqueIndex"`
	Author        string           `gorm:"column:author;not null"`
	Description   string           `gorm:"column:description;not null;default:''"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPrice *decimal.Decimal `gorm:"column:discount_price;type:numeric(12,2)"`
	Rating        decimal.Decimal  `gorm:"column:rating;type:numeric(4,3);not null;default:0"`
	Stock         int              `gorm:"column:stock;not null;default:0"`
	Category      string           `gorm:"column:category;not null;index"`
	ISBN          *string          `gorm:"column:isbn;uniqueIndex"`
	PublishedAt   *time.Time       `gorm:"column:published_at"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}
