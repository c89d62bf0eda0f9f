package inventory

import (
	"fmt"

	"github.com/angelmondragon/promocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
)

// AllocationDetails is attached to STOCK_EXCEEDED errors.
type AllocationDetails struct {
	SKU       string `json:"sku"`
	Channel   string `json:"channel"`
	Requested int    `json:"requested"`
	Total     int    `json:"total"`
	Max       int    `json:"max"`
}

// ValidateUpsert checks that adding delta on top of existingQty keeps the
// entry inside its maximum stock allocation.
func ValidateUpsert(entry models.InventoryEntry, existingQty, delta int) error {
	return validateAllocation(entry, existingQty+delta)
}

// ValidateReplace checks that finalQty keeps the entry inside its maximum
// stock allocation.
func ValidateReplace(entry models.InventoryEntry, finalQty int) error {
	return validateAllocation(entry, finalQty)
}

func validateAllocation(entry models.InventoryEntry, requested int) error {
	if entry.MaximumStockAllocation == nil {
		return nil
	}
	limit := *entry.MaximumStockAllocation
	total := entry.TotalPurchaseStockAllocation + requested
	if limit > 0 && total <= limit {
		return nil
	}

	message := fmt.Sprintf("sku %s: allocation total %d exceeds maximum %d", entry.SKU, total, limit)
	if limit == 0 {
		message = fmt.Sprintf("sku %s is not sellable on channel %s", entry.SKU, entry.Channel)
	}
	return pkgerrors.New(pkgerrors.CodeStockExceeded, message).WithDetails(AllocationDetails{
		SKU:       entry.SKU,
		Channel:   entry.Channel,
		Requested: requested,
		Total:     total,
		Max:       limit,
	})
}
