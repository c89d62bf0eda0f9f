package commerce

import (
	"context"
	"encoding/json"
	"time"

	"github.com/angelmondragon/promocart-backend/pkg/logger"
)

// ProductCache is the key/value surface the cached lookup needs.
type ProductCache interface {
	MGet(ctx context.Context, keys ...string) ([]any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ProductKey(sku string) string
}

// CachedLookup serves SKU lookups from the cache and falls through to the platform for misses.
// Cache failures are logged and never fail the lookup.
type CachedLookup struct {
	next  ProductLookup
	cache ProductCache
	ttl   time.Duration
	logg  *logger.Logger
}

var _ ProductLookup = (*CachedLookup)(nil)

func NewCachedLookup(next ProductLookup, cache ProductCache, ttl time.Duration, logg *logger.Logger) *CachedLookup {
	if logg == nil {
		logg = logger.Nop()
	}
	return &CachedLookup{next: next, cache: cache, ttl: ttl, logg: logg}
}

func (l *CachedLookup) GetProductsBySkus(ctx context.Context, skus []string) ([]Product, error) {
	skus = uniqueNonEmpty(skus)
	if len(skus) == 0 {
		return nil, nil
	}
	if l.cache == nil {
		return l.next.GetProductsBySkus(ctx, skus)
	}

	keys := make([]string, len(skus))
	for i, sku := range skus {
		keys[i] = l.cache.ProductKey(sku)
	}

	found := make(map[string]Product)
	var misses []string
	values, err := l.cache.MGet(ctx, keys...)
	if err != nil {
		l.logg.Warn(l.logg.WithField(ctx, "error", err.Error()), "product cache read failed")
		misses = skus
	} else {
		for i, sku := range skus {
			product, ok := decodeCached(values, i)
			if !ok {
				misses = append(misses, sku)
				continue
			}
			found[product.ID] = product
		}
	}

	if len(misses) > 0 {
		fetched, err := l.next.GetProductsBySkus(ctx, misses)
		if err != nil {
			return nil, err
		}
		l.store(ctx, misses, fetched)
		for _, product := range fetched {
			found[product.ID] = product
		}
	}

	out := make([]Product, 0, len(found))
	seen := make(map[string]struct{}, len(found))
	for _, sku := range skus {
		for id, product := range found {
			if _, ok := seen[id]; ok {
				continue
			}
			if _, ok := product.VariantBySKU(sku); ok {
				seen[id] = struct{}{}
				out = append(out, product)
			}
		}
	}
	return out, nil
}

// GetProductsByIDs is not cached; ID lookups are rare and keyed differently.
func (l *CachedLookup) GetProductsByIDs(ctx context.Context, ids []string) ([]Product, error) {
	return l.next.GetProductsByIDs(ctx, ids)
}

func (l *CachedLookup) store(ctx context.Context, requested []string, products []Product) {
	wanted := make(map[string]struct{}, len(requested))
	for _, sku := range requested {
		wanted[sku] = struct{}{}
	}
	for _, product := range products {
		raw, err := json.Marshal(product)
		if err != nil {
			continue
		}
		for _, variant := range product.Variants {
			if _, ok := wanted[variant.SKU]; !ok {
				continue
			}
			if err := l.cache.Set(ctx, l.cache.ProductKey(variant.SKU), string(raw), l.ttl); err != nil {
				l.logg.Warn(l.logg.WithFields(ctx, map[string]any{"sku": variant.SKU, "error": err.Error()}), "product cache write failed")
			}
		}
	}
}

func decodeCached(values []any, i int) (Product, bool) {
	if i >= len(values) || values[i] == nil {
		return Product{}, false
	}
	raw, ok := values[i].(string)
	if !ok {
		return Product{}, false
	}
	var product Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil || product.ID == "" {
		return Product{}, false
	}
	return product, true
}
