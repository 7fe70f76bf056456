package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// DiscountCampaign is a time-boxed percentage discount over a set of books,
// limited to buyers from the listed countries.
type DiscountCampaign struct {
	ID         uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	Percentage int                       `gorm:"column:percentage;not null"`
	StartDate  time.Time                 `gorm:"column:start_date;not null"`
	EndDate    time.Time                 `gorm:"column:end_date;not null"`
	Books      []DiscountCampaignBook    `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
	Countries  []DiscountCampaignCountry `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *DiscountCampaign) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// BookIDs returns the referenced books in insertion order.
func (c DiscountCampaign) BookIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Books))
	for _, b := range c.Books {
		ids = append(ids, b.BookID)
	}
	return ids
}

func (c DiscountCampaign) CountryCodes() []enums.Country {
	codes := make([]enums.Country, 0, len(c.Countries))
	for _, cc := range c.Countries {
		codes = append(codes, cc.Country)
	}
	return codes
}

// HasBook reports whether the campaign references bookID.
func (c DiscountCampaign) HasBook(bookID uuid.UUID) bool {
	for _, b := range c.Books {
		if b.BookID == bookID {
			return true
		}
	}
	return false
}

// ActiveAt reports whether t falls within the campaign window, bounds included.
func (c DiscountCampaign) ActiveAt(t time.Time) bool {
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}

// DiscountCampaignBook links a book to a campaign. The unique index on
// book_id keeps a book in at most one campaign.
type DiscountCampaignBook struct {
	CampaignID uuid.UUID `gorm:"column:campaign_id;type:uuid;primaryKey"`
	BookID     uuid.UUID `gorm:"column:book_id;type:uuid;primaryKey;uniqueIndex:ux_discount_campaign_books_book"`
	Position   int       `gorm:"column:position;not null;default:0"`
}

// DiscountCampaignCountry lists a country eligible for a campaign.
type DiscountCampaignCountry struct {
	CampaignID uuid.UUID     `gorm:"column:campaign_id;type:uuid;primaryKey"`
	Country    enums.Country `gorm:"column:country;type:text;primaryKey"`
}
