package controllers

import (
	"net/http"

	"github.com/pallab-BJIT/mid-term-project/api/middleware"
	"github.com/pallab-BJIT/mid-term-project/api/responses"
	"github.com/pallab-BJIT/mid-term-project/api/validators"
	"github.com/pallab-BJIT/mid-term-project/internal/cart"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
)

func cartBuyer(id middleware.Identity) cart.Buyer {
	return cart.Buyer{UserID: id.UserID, Country: id.Country}
}

// CartGet returns the caller's cart priced for their country.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("cart"))
			return
		}
		id, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), cartBuyer(id))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("cart"))
			return
		}
		id, body, err := decodeCartItem(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.AddItem(r.Context(), cartBuyer(id), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartUpdateItem lowers or removes a line; it never raises a quantity.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("cart"))
			return
		}
		id, body, err := decodeCartItem(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.UpdateItem(r.Context(), cartBuyer(id), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func decodeCartItem(r *http.Request) (middleware.Identity, cart.ItemInput, error) {
	var body cart.ItemInput
	id, err := identity(r)
	if err != nil {
		return id, body, err
	}
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return id, body, err
	}
	return id, body, nil
}
