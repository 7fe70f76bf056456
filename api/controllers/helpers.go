package controllers

import (
	"net/http"

	"github.com/pallab-BJIT/mid-term-project/api/middleware"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox"
)

func identity(r *http.Request) (middleware.Identity, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return middleware.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, nil
}

func actorRef(id middleware.Identity) outbox.ActorRef {
	return outbox.ActorRef{UserID: id.UserID, Rank: id.Rank.String()}
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
