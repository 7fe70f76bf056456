package users

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pallab-BJIT/mid-term-project/internal/pricing"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Phone       *string         `json:"phone,omitempty"`
	Address     Address         `json:"address"`
	Rank        string          `json:"rank"`
	Balance     decimal.Decimal `json:"balance"`
	LastLoginAt *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Address struct {
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	Country string  `json:"country"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Name         string
	Phone        *string
	Street       *string
	City         *string
	Country      enums.Country
	Rank         enums.Rank
}

// AddBalanceInput is the body of a balance top-up. Amount may arrive as a
// JSON number or a numeric string.
type AddBalanceInput struct {
	Amount json.Number `json:"amount" validate:"required"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Phone: u.Phone,
		Address: Address{
			Street:  u.Street,
			City:    u.City,
			Country: u.Country.String(),
		},
		Rank:        u.Rank.String(),
		Balance:     pricing.Present(u.Balance),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	rank := c.Rank
	if rank == "" {
		rank = enums.RankCustomer
	}

	return &models.User{
		Email:        strings.ToLower(strings.TrimSpace(c.Email)),
		PasswordHash: c.PasswordHash,
		Name:         strings.TrimSpace(c.Name),
		Phone:        c.Phone,
		Street:       c.Street,
		City:         c.City,
		Country:      c.Country,
		Rank:         rank,
		Version:      1,
	}
}
