package auth

import (
	"github.com/pallab-BJIT/mid-term-project/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and the signed-in profile.
type LoginResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest carries the refresh token; the (possibly expired) access
// token it was issued with arrives in the Authorization header.
type RefreshRequest struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SignupRequest is the self-service registration payload.
type SignupRequest struct {
	Email           string        `json:"email" validate:"required,email"`
	Password        string        `json:"password" validate:"required"`
	ConfirmPassword string        `json:"confirmPassword" validate:"required"`
	Name            string        `json:"name" validate:"required,max=100"`
	Phone           *string       `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Address         SignupAddress `json:"address" validate:"required"`
	Rank            string        `json:"rank,omitempty" validate:"omitempty,oneof=admin customer"`
}

type SignupAddress struct {
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	Country string  `json:"country" validate:"required"`
}
