package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/pkg/config"
	"github.com/angelmondragon/promocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
)

const defaultCommitAttempts = 3

// StockUsage is the aggregated quantity a cart takes from one SKU.
type StockUsage struct {
	SKU      string
	Quantity int
}

// StockDetails is attached to reservation failures.
type StockDetails struct {
	SKU       string `json:"sku"`
	Channel   string `json:"channel"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	PreOrder  bool   `json:"preOrder"`
}

// Service checks carts against stock and commits purchase allocations.
type Service struct {
	store       Store
	channel     string
	safetyStock int
	attempts    int
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the inventory service for a single sales channel.
func NewService(store Store, channel string, cfg config.InventoryConfig, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("inventory store required")
	}
	if channel == "" {
		return nil, fmt.Errorf("inventory channel required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	attempts := cfg.CommitAttempts
	if attempts <= 0 {
		attempts = defaultCommitAttempts
	}
	return &Service{
		store:       store,
		channel:     channel,
		safetyStock: cfg.SafetyStock,
		attempts:    attempts,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Usage sums line item quantities per SKU, ordered by SKU.
func Usage(items []cart.LineItem) []StockUsage {
	totals := make(map[string]int, len(items))
	for _, item := range items {
		if item.SKU == "" || item.Quantity <= 0 {
			continue
		}
		totals[item.SKU] += item.Quantity
	}
	out := make([]StockUsage, 0, len(totals))
	for sku, qty := range totals {
		out = append(out, StockUsage{SKU: sku, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// States derives the stock view of each known SKU.
func (s *Service) States(ctx context.Context, skus []string) (map[string]State, error) {
	entries, err := s.store.GetInventory(ctx, s.channel, skus)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make(map[string]State, len(entries))
	for _, entry := range entries {
		out[entry.SKU] = Derive(entry, s.safetyStock, now)
	}
	return out, nil
}

// CheckReservation verifies that every SKU of the proposed cart can be served
// from live stock, or from dummy stock when the cart is a pre-order.
func (s *Service) CheckReservation(ctx context.Context, snapshot cart.Snapshot) error {
	usage := Usage(snapshot.LineItems)
	if len(usage) == 0 {
		return nil
	}
	skus := make([]string, 0, len(usage))
	for _, u := range usage {
		skus = append(skus, u.SKU)
	}
	entries, err := s.store.GetInventory(ctx, s.channel, skus)
	if err != nil {
		return err
	}
	bySKU := make(map[string]models.InventoryEntry, len(entries))
	for _, entry := range entries {
		bySKU[entry.SKU] = entry
	}

	preOrder := snapshot.Custom.PreOrder
	now := s.now()
	for _, u := range usage {
		details := StockDetails{SKU: u.SKU, Channel: s.channel, Requested: u.Quantity, PreOrder: preOrder}
		entry, ok := bySKU[u.SKU]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStockUnavailable, fmt.Sprintf("sku %s has no inventory on channel %s", u.SKU, s.channel)).
				WithDetails(details)
		}
		state := Derive(entry, s.safetyStock, now)
		details.Available = state.Sellable(preOrder)
		if details.Available <= 0 {
			return pkgerrors.New(pkgerrors.CodeStockUnavailable, fmt.Sprintf("sku %s is out of stock", u.SKU)).
				WithDetails(details)
		}
		if u.Quantity > details.Available {
			return pkgerrors.New(pkgerrors.CodeStockExceeded, fmt.Sprintf("sku %s: requested %d exceeds available %d", u.SKU, u.Quantity, details.Available)).
				WithDetails(details)
		}
		if err := ValidateReplace(entry, u.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// CommitLineItemStockUsage adds the purchased quantities to the allocation
// counters of every SKU in one transaction. Every SKU is checked before any
// counter moves; a rejection leaves all counters as they were. A stale version
// rolls the whole transaction back, and the check is re-read and recomputed up
// to the configured attempts before VERSION_CONFLICT is returned.
func (s *Service) CommitLineItemStockUsage(ctx context.Context, items []cart.LineItem) error {
	usage := Usage(items)
	if len(usage) == 0 {
		return nil
	}
	skus := make([]string, len(usage))
	for i, u := range usage {
		skus[i] = u.SKU
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"skus": skus, "channel": s.channel})

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		versions, err := s.checkAllocations(ctx, usage, skus)
		if err != nil {
			return err
		}

		err = s.store.Transaction(ctx, func(tx Store) error {
			for _, u := range usage {
				if err := tx.IncrementAllocation(ctx, u.SKU, s.channel, versions[u.SKU], u.Quantity); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if !pkgerrors.IsCode(err, pkgerrors.CodeVersionConflict) {
			return err
		}
		lastErr = err
		s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "inventory allocation version conflict")
	}

	return pkgerrors.Wrap(pkgerrors.CodeVersionConflict, lastErr,
		fmt.Sprintf("allocation still conflicting after %d attempts", s.attempts)).
		WithDetails(map[string]any{"skus": skus, "channel": s.channel, "attempts": s.attempts})
}

// checkAllocations reads the current entries for usage and validates every
// increment against them. It returns the versions the increments must match.
func (s *Service) checkAllocations(ctx context.Context, usage []StockUsage, skus []string) (map[string]int64, error) {
	entries, err := s.store.GetInventory(ctx, s.channel, skus)
	if err != nil {
		return nil, err
	}
	bySKU := make(map[string]models.InventoryEntry, len(entries))
	for _, entry := range entries {
		bySKU[entry.SKU] = entry
	}

	versions := make(map[string]int64, len(usage))
	for _, u := range usage {
		entry, ok := bySKU[u.SKU]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeStockUnavailable, fmt.Sprintf("sku %s has no inventory on channel %s", u.SKU, s.channel)).
				WithDetails(StockDetails{SKU: u.SKU, Channel: s.channel, Requested: u.Quantity})
		}
		if err := ValidateUpsert(entry, 0, u.Quantity); err != nil {
			return nil, err
		}
		versions[u.SKU] = entry.Version
	}
	return versions, nil
}
