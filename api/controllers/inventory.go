package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/promocart-backend/api/responses"
	"github.com/angelmondragon/promocart-backend/api/validators"
	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
)

const maxInventorySKUs = 100

type inventoryService interface {
	States(ctx context.Context, skus []string) (map[string]inventory.State, error)
	CommitLineItemStockUsage(ctx context.Context, items []cart.LineItem) error
}

type commitStockRequest struct {
	Items []commitStockItem `json:"items" validate:"required,min=1,dive"`
}

type commitStockItem struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// InventoryStates returns the derived stock state for the requested SKUs.
func InventoryStates(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		skus, err := validators.ParseQueryList(r, "skus", maxInventorySKUs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		states, err := svc.States(r.Context(), skus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]inventory.State, 0, len(skus))
		for _, sku := range skus {
			if state, ok := states[sku]; ok {
				out = append(out, state)
			}
		}
		responses.WriteSuccess(w, out)
	}
}

// InventoryCommit records the purchase allocation consumed by an order.
func InventoryCommit(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload commitStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]cart.LineItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, cart.LineItem{SKU: validators.SanitizeString(item.SKU, 128), Quantity: item.Quantity})
		}

		if err := svc.CommitLineItemStockUsage(r.Context(), items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]any{"committed": inventory.Usage(items)})
	}
}
