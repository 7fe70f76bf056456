package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity is the authenticated caller as carried in the access token.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Rank     enums.Rank
	Country  enums.Country
	AccessID string
}

// WithIdentity places the caller on the context for downstream handlers.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ctxIdentity).(Identity)
	return id, ok && id.UserID != uuid.Nil
}

func UserIDFromContext(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.UserID.String()
	}
	return ""
}
