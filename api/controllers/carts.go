package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/promocart-backend/api/responses"
	"github.com/angelmondragon/promocart-backend/api/validators"
	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/internal/cartitems"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
)

type resolveCartRequest struct {
	Cart cart.Snapshot `json:"cart"`
}

type validateChangeRequest struct {
	Cart    cart.Snapshot     `json:"cart"`
	Action  string            `json:"action" validate:"required,oneof=add_product update_quantity remove_product select_product"`
	Changes []cart.ItemChange `json:"changes" validate:"required,min=1"`
}

type applyChangeRequest struct {
	Action  string            `json:"action" validate:"required,oneof=add_product update_quantity remove_product select_product"`
	Changes []cart.ItemChange `json:"changes" validate:"required,min=1"`
}

// CartResolve stamps the benefits the promotion engine currently grants onto a cart.
func CartResolve(svc cartitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart item service unavailable"))
			return
		}

		var payload resolveCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCartID(r.Context(), payload.Cart.ID)
		enriched, err := svc.ResolveBenefits(ctx, payload.Cart)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, enriched)
	}
}

// CartValidate reports whether a change would be accepted, without mutating anything.
func CartValidate(svc cartitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart item service unavailable"))
			return
		}

		var payload validateChangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		action, err := parseAction(payload.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCartID(r.Context(), payload.Cart.ID)
		result, err := svc.ValidateChange(ctx, payload.Cart, payload.Changes, action)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartApplyChange validates and applies a line item change to a stored cart.
func CartApplyChange(svc cartitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart item service unavailable"))
			return
		}

		cartID, err := cartIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyChangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		action, err := parseAction(payload.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCartID(r.Context(), cartID)
		enriched, err := svc.ApplyChange(ctx, cartID, payload.Changes, action)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, enriched)
	}
}

// CartResetProductGroups compacts the product groups of a stored cart.
func CartResetProductGroups(svc cartitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart item service unavailable"))
			return
		}

		cartID, err := cartIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCartID(r.Context(), cartID)
		snapshot, err := svc.ResetProductGroups(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

func cartIDParam(r *http.Request) (string, error) {
	cartID := strings.TrimSpace(chi.URLParam(r, "cartId"))
	if cartID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	return cartID, nil
}

func parseAction(raw string) (enums.CartAction, error) {
	action, err := enums.ParseCartAction(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action")
	}
	return action, nil
}
