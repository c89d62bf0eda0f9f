package inventory

import (
	"time"

	"github.com/angelmondragon/promocart-backend/pkg/db/models"
)

// State is the per-read stock view of one SKU.
type State struct {
	SKU                              string `json:"sku"`
	Available                        int    `json:"available"`
	TotalAvailableDummyStock         int    `json:"totalAvailableDummyStock"`
	TotalAvailableDummyPurchaseStock int    `json:"totalAvailableDummyPurchaseStock"`
	IsOutOfStock                     bool   `json:"isOutOfStock"`
}

// Derive computes the stock view of entry at now. defaultSafetyStock applies
// when the entry carries no safety stock of its own.
func Derive(entry models.InventoryEntry, defaultSafetyStock int, now time.Time) State {
	safety := entry.SafetyStock
	if safety <= 0 {
		safety = defaultSafetyStock
	}

	state := State{
		SKU:       entry.SKU,
		Available: nonNegative(entry.AvailableQuantity - safety),
	}

	if dummyActive(entry, now) {
		state.TotalAvailableDummyStock = nonNegative(entry.DummyStock)
		state.TotalAvailableDummyPurchaseStock = state.TotalAvailableDummyStock
		if entry.MaximumStockAllocation != nil {
			remaining := nonNegative(*entry.MaximumStockAllocation - entry.TotalPurchaseStockAllocation)
			state.TotalAvailableDummyPurchaseStock = min(state.TotalAvailableDummyPurchaseStock, remaining)
		}
	}

	state.IsOutOfStock = state.Available <= 0 && state.TotalAvailableDummyPurchaseStock <= 0
	return state
}

// Sellable returns the quantity a cart may take from the pool selected by preOrder.
func (s State) Sellable(preOrder bool) int {
	if preOrder {
		return s.TotalAvailableDummyPurchaseStock
	}
	return s.Available
}

func dummyActive(entry models.InventoryEntry, now time.Time) bool {
	return entry.DummyActivatedAt != nil && !entry.DummyActivatedAt.After(now)
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
