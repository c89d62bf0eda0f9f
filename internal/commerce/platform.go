package commerce

import (
	"context"

	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/pkg/money"
)

// Platform is the hosted commerce backend owning carts and the product catalog.
type Platform interface {
	GetCart(ctx context.Context, id string) (*cart.Snapshot, error)
	// UpdateCart applies actions against version; a stale version fails with VERSION_CONFLICT.
	UpdateCart(ctx context.Context, id string, version int64, actions []cart.UpdateAction) (*cart.Snapshot, error)
	ProductLookup
}

// ProductLookup resolves catalog products in batches.
type ProductLookup interface {
	GetProductsBySkus(ctx context.Context, skus []string) ([]Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]Product, error)
}

// Product is a catalog product with its sellable variants.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Published bool      `json:"published"`
	Variants  []Variant `json:"variants"`
}

type Variant struct {
	ID    int         `json:"id"`
	SKU   string      `json:"sku"`
	Price money.Stang `json:"price"`
}

// VariantBySKU returns the variant carrying sku.
func (p Product) VariantBySKU(sku string) (Variant, bool) {
	for _, variant := range p.Variants {
		if variant.SKU == sku {
			return variant, true
		}
	}
	return Variant{}, false
}

// IndexBySKU maps every variant SKU of the published products to its product.
func IndexBySKU(products []Product) map[string]Product {
	out := make(map[string]Product)
	for _, product := range products {
		if !product.Published {
			continue
		}
		for _, variant := range product.Variants {
			out[variant.SKU] = product
		}
	}
	return out
}
