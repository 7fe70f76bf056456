package controllers

import (
	"net/http"

	"github.com/pallab-BJIT/mid-term-project/api/responses"
	"github.com/pallab-BJIT/mid-term-project/api/validators"
	"github.com/pallab-BJIT/mid-term-project/internal/checkout"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
)

// Checkout buys the caller's cart and returns the recorded transaction.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("checkout"))
			return
		}
		id, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkout.Input
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.Execute(r.Context(), checkout.Buyer{UserID: id.UserID}, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}
