package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// User is the customer account: identity, address and spendable balance.
// Version guards concurrent balance writes.
type User struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Email        string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Name         string          `gorm:"column:name;not null"`
	Phone        *string         `gorm:"column:phone"`
	Street       *string         `gorm:"column:street"`
	City         *string         `gorm:"column:city"`
	Country      enums.Country   `gorm:"column:country;type:text;not null"`
	Rank         enums.Rank      `gorm:"column:rank;type:text;not null;default:customer"`
	Balance      decimal.Decimal `gorm:"column:balance;type:numeric(14,2);not null;default:0"`
	Version      int             `gorm:"column:version;not null;default:1"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
