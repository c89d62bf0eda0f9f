package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryEntry is the channel-scoped stock record of one SKU.
type InventoryEntry struct {
	ID                           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	SKU                          string     `gorm:"column:sku;not null;uniqueIndex:idx_inventory_entries_sku_channel"`
	Channel                      string     `gorm:"column:channel;not null;uniqueIndex:idx_inventory_entries_sku_channel"`
	AvailableQuantity            int        `gorm:"column:available_quantity;not null;default:0"`
	SafetyStock                  int        `gorm:"column:safety_stock;not null;default:0"`
	DummyStock                   int        `gorm:"column:dummy_stock;not null;default:0"`
	DummyActivatedAt             *time.Time `gorm:"column:dummy_activated_at"`
	MaximumStockAllocation       *int       `gorm:"column:maximum_stock_allocation"`
	TotalPurchaseStockAllocation int        `gorm:"column:total_purchase_stock_allocation;not null;default:0"`
	Version                      int64      `gorm:"column:version;not null;default:1"`
	CreatedAt                    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

