package benefits

import (
	"context"
	"errors"
	"sort"

	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/internal/commerce"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	"golang.org/x/sync/errgroup"
)

// ProductLookup resolves candidate SKUs to catalog products.
type ProductLookup interface {
	GetProductsBySkus(ctx context.Context, skus []string) ([]commerce.Product, error)
}

// ContextWrapper enriches free-gift and add-on benefits with catalog variants and the
// quantities already selected in the cart.
type ContextWrapper struct {
	products ProductLookup
}

func NewContextWrapper(products ProductLookup) (*ContextWrapper, error) {
	if products == nil {
		return nil, errors.New("product lookup required")
	}
	return &ContextWrapper{products: products}, nil
}

// Wrap resolves both slot kinds concurrently. Slots whose SKUs resolve to no published
// variant are dropped. Any lookup failure aborts the wrap.
func (w *ContextWrapper) Wrap(ctx context.Context, set Set, items []cart.LineItem) (Set, error) {
	var giftIndex, addOnIndex map[string]commerce.Product

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		index, err := w.lookup(gctx, slotSKUs(set.FreeGifts, func(b FreeGiftBenefit) []string { return b.SKUs }))
		giftIndex = index
		return err
	})
	g.Go(func() error {
		index, err := w.lookup(gctx, slotSKUs(set.AddOns, func(b AddOnBenefit) []string { return b.SKUs }))
		addOnIndex = index
		return err
	})
	if err := g.Wait(); err != nil {
		return Set{}, err
	}

	out := set
	out.FreeGifts = nil
	for _, b := range set.FreeGifts {
		if slot, ok := enrich(b.Slot, enums.ProductTypeFreeGift, giftIndex, items); ok {
			b.Slot = slot
			out.FreeGifts = append(out.FreeGifts, b)
		}
	}
	out.AddOns = nil
	for _, b := range set.AddOns {
		if slot, ok := enrich(b.Slot, enums.ProductTypeAddOn, addOnIndex, items); ok {
			b.Slot = slot
			out.AddOns = append(out.AddOns, b)
		}
	}
	return out, nil
}

func (w *ContextWrapper) lookup(ctx context.Context, skus []string) (map[string]commerce.Product, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	products, err := w.products.GetProductsBySkus(ctx, skus)
	if err != nil {
		return nil, err
	}
	return commerce.IndexBySKU(products), nil
}

func slotSKUs[T any](benefits []T, skus func(T) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range benefits {
		for _, sku := range skus(b) {
			if _, ok := seen[sku]; ok {
				continue
			}
			seen[sku] = struct{}{}
			out = append(out, sku)
		}
	}
	sort.Strings(out)
	return out
}

func enrich(slot Slot, productType enums.ProductType, index map[string]commerce.Product, items []cart.LineItem) (Slot, bool) {
	variants := make([]cart.BenefitVariant, 0, len(slot.SKUs))
	total := 0
	for _, sku := range slot.SKUs {
		product, ok := index[sku]
		if !ok {
			continue
		}
		variant, _ := product.VariantBySKU(sku)
		selected := selectedQuantity(items, productType, slot.ProductGroup, slot.Group, sku)
		total += selected
		variants = append(variants, cart.BenefitVariant{
			ProductID:        product.ID,
			VariantID:        variant.ID,
			SKU:              sku,
			Name:             product.Name,
			Price:            variant.Price,
			SelectedQuantity: selected,
		})
	}
	if len(variants) == 0 {
		return slot, false
	}
	slot.Variants = variants
	slot.TotalSelectedItem = total
	return slot, true
}

func selectedQuantity(items []cart.LineItem, productType enums.ProductType, productGroup int, group, sku string) int {
	total := 0
	for _, item := range items {
		if item.Custom.ProductType == productType &&
			item.Custom.ProductGroup == productGroup &&
			item.BenefitGroup() == group &&
			item.SKU == sku {
			total += item.Quantity
		}
	}
	return total
}
