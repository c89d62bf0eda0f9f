package inventory

import (
	"context"

	"github.com/google/uuid"

	dbpkg "github.com/angelmondragon/promocart-backend/pkg/db"
	"github.com/angelmondragon/promocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"gorm.io/gorm"
)

// Store is the persistence surface of channel-scoped inventory entries.
type Store interface {
	GetInventory(ctx context.Context, channel string, skus []string) ([]models.InventoryEntry, error)
	IncrementAllocation(ctx context.Context, sku, channel string, version int64, qty int) error
	// Transaction runs fn against a Store bound to one database transaction.
	// An error from fn rolls back every write it made.
	Transaction(ctx context.Context, fn func(Store) error) error
}

// Repository implements Store on top of GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a repository to the provided connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Transaction runs fn inside a GORM transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// Create inserts a new entry. A second entry for the same SKU and channel is a conflict.
func (r *Repository) Create(ctx context.Context, entry *models.InventoryEntry) error {
	if entry == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "inventory entry required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "inventory entry already exists").
				WithDetails(map[string]any{"sku": entry.SKU, "channel": entry.Channel})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory entry")
	}
	return nil
}

// GetInventory returns the entries for skus on channel. Unknown SKUs are omitted.
func (r *Repository) GetInventory(ctx context.Context, channel string, skus []string) ([]models.InventoryEntry, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var rows []models.InventoryEntry
	err := r.db.WithContext(ctx).
		Where("channel = ? AND sku IN ?", channel, skus).
		Order("sku ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory entries")
	}
	return rows, nil
}

// IncrementAllocation adds qty to the purchase allocation counter when the
// stored version still equals version, bumping the version on success.
func (r *Repository) IncrementAllocation(ctx context.Context, sku, channel string, version int64, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryEntry{}).
		Where("sku = ? AND channel = ? AND version = ?", sku, channel, version).
		Updates(map[string]any{
			"total_purchase_stock_allocation": gorm.Expr("total_purchase_stock_allocation + ?", qty),
			"version":                         gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment stock allocation")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeVersionConflict, "inventory entry changed since it was read").
			WithDetails(map[string]any{"sku": sku, "channel": channel, "version": version})
	}
	return nil
}
