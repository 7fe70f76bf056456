package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Email   string
	Rank    enums.Rank
	Country enums.Country
	JTI     string
}

// AccessTokenClaims is the identity every authenticated request carries.
type AccessTokenClaims struct {
	UserID  uuid.UUID     `json:"user_id"`
	Email   string        `json:"email"`
	Rank    enums.Rank    `json:"rank"`
	Country enums.Country `json:"country"`
	jwt.RegisteredClaims
}
