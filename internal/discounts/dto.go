package discounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// CreateInput is an admin request for a new campaign.
type CreateInput struct {
	BookIDs    []uuid.UUID `json:"bookIds"`
	Countries  []string    `json:"countries"`
	Percentage int         `json:"percentage"`
	StartDate  time.Time   `json:"startDate"`
	EndDate    time.Time   `json:"endDate"`
}

// UpdateInput is a partial update. Books and countries are appended.
type UpdateInput struct {
	BookIDs    []uuid.UUID `json:"bookIds"`
	Countries  []string    `json:"countries"`
	Percentage *int        `json:"percentage"`
	StartDate  *time.Time  `json:"startDate"`
	EndDate    *time.Time  `json:"endDate"`
}

func (in UpdateInput) empty() bool {
	return len(in.BookIDs) == 0 && len(in.Countries) == 0 &&
		in.Percentage == nil && in.StartDate == nil && in.EndDate == nil
}

// CampaignView is the campaign payload returned to admins.
type CampaignView struct {
	ID         uuid.UUID       `json:"id"`
	Percentage int             `json:"percentage"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	BookIDs    []uuid.UUID     `json:"bookIds"`
	Countries  []enums.Country `json:"countries"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func NewCampaignView(c models.DiscountCampaign) CampaignView {
	return CampaignView{
		ID:         c.ID,
		Percentage: c.Percentage,
		StartDate:  c.StartDate.UTC(),
		EndDate:    c.EndDate.UTC(),
		BookIDs:    c.BookIDs(),
		Countries:  c.CountryCodes(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
