package cartitems

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/promocart-backend/internal/benefits"
	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/internal/promotion"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
	"github.com/angelmondragon/promocart-backend/pkg/metrics"
)

// Service exposes benefit resolution and guarded cart mutations.
type Service interface {
	ResolveBenefits(ctx context.Context, snapshot cart.Snapshot) (*EnrichedCart, error)
	ValidateChange(ctx context.Context, snapshot cart.Snapshot, changes []cart.ItemChange, action enums.CartAction) (*Result, error)
	ApplyChange(ctx context.Context, cartID string, changes []cart.ItemChange, action enums.CartAction) (*EnrichedCart, error)
	ResetProductGroups(ctx context.Context, cartID string) (*cart.Snapshot, error)
}

// EnrichedCart is a cart with benefits stamped on its line items.
type EnrichedCart struct {
	Cart        cart.Snapshot             `json:"cart"`
	Fingerprint string                    `json:"fingerprint"`
	Campaigns   []benefits.Campaign       `json:"campaigns,omitempty"`
	Benefits    map[enums.BenefitKind]int `json:"benefits,omitempty"`
}

type cartPlatform interface {
	GetCart(ctx context.Context, id string) (*cart.Snapshot, error)
	UpdateCart(ctx context.Context, id string, version int64, actions []cart.UpdateAction) (*cart.Snapshot, error)
}

type stockChecker interface {
	CheckReservation(ctx context.Context, snapshot cart.Snapshot) error
}

type service struct {
	platform    cartPlatform
	engine      promotion.Engine
	stock       stockChecker
	wrapper     *benefits.ContextWrapper
	converter   *promotion.Converter
	effectNames []string
	metrics     *metrics.BenefitMetrics
	logg        *logger.Logger
}

// NewService wires the cart item service.
func NewService(
	platform cartPlatform,
	products benefits.ProductLookup,
	engine promotion.Engine,
	stock stockChecker,
	effectNames []string,
	m *metrics.BenefitMetrics,
	logg *logger.Logger,
) (Service, error) {
	if platform == nil {
		return nil, fmt.Errorf("cart platform required")
	}
	if engine == nil {
		return nil, fmt.Errorf("promotion engine required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock checker required")
	}
	wrapper, err := benefits.NewContextWrapper(products)
	if err != nil {
		return nil, err
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		platform:    platform,
		engine:      engine,
		stock:       stock,
		wrapper:     wrapper,
		converter:   promotion.NewConverter(logg),
		effectNames: effectNames,
		metrics:     m,
		logg:        logg,
	}, nil
}

type resolved struct {
	fingerprint string
	resolution  benefits.Resolution
}

// resolve runs the effect pipeline for snapshot. A dry run leaves the engine
// session untouched.
func (s *service) resolve(ctx context.Context, snapshot cart.Snapshot, dry bool) (*resolved, error) {
	start := time.Now()
	defer func() {
		operation := "commit"
		if dry {
			operation = "dry_run"
		}
		s.metrics.ObserveDuration(operation, time.Since(start))
	}()

	fingerprint, err := cart.Fingerprint(snapshot)
	if err != nil {
		return nil, err
	}
	payload := promotion.NewSessionPayload(snapshot, fingerprint)
	result, err := s.engine.UpdateCustomerSession(ctx, snapshot.ID, payload, promotion.SessionOptions{Dry: dry})
	if err != nil {
		return nil, err
	}

	grouped := promotion.GroupEffects(result.Effects)
	kept := promotion.FilterBenefitEffects(grouped, s.effectNames)
	converted, err := s.converter.ConvertAll(ctx, kept, result.Items(payload.CartItems))
	if err != nil {
		return nil, err
	}
	s.metrics.AddEffects(metrics.StageReceived, len(result.Effects))
	s.metrics.AddEffects(metrics.StageGrouped, len(grouped))
	s.metrics.AddEffects(metrics.StageKept, len(kept))
	s.metrics.AddEffects(metrics.StageConverted, len(converted))

	resolution := benefits.BuildAll(converted)
	built := resolution.Benefits.CountByKind()
	wrapped, err := s.wrapper.Wrap(ctx, resolution.Benefits, snapshot.LineItems)
	if err != nil {
		return nil, err
	}
	resolution.Benefits = wrapped

	remaining := wrapped.CountByKind()
	for kind, n := range built {
		s.metrics.AddBuilt(kind.String(), n)
		s.metrics.AddDropped(kind.String(), n-remaining[kind])
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"fingerprint": fingerprint,
		"dry_run":     dry,
		"effects":     len(result.Effects),
		"kept":        len(kept),
		"benefits":    wrapped.Len(),
	}), "benefits resolved")

	return &resolved{fingerprint: fingerprint, resolution: resolution}, nil
}

func (s *service) ResolveBenefits(ctx context.Context, snapshot cart.Snapshot) (*EnrichedCart, error) {
	ctx = s.logg.WithCartID(ctx, snapshot.ID)
	res, err := s.resolve(ctx, snapshot, true)
	if err != nil {
		s.logg.Error(ctx, "resolve benefits failed", err)
		return nil, err
	}
	return enrich(snapshot, benefits.Attach(snapshot.LineItems, res.resolution.Benefits), res), nil
}

func (s *service) ValidateChange(ctx context.Context, snapshot cart.Snapshot, changes []cart.ItemChange, action enums.CartAction) (*Result, error) {
	ctx = s.logg.WithCartID(ctx, snapshot.ID)
	proposal, err := cart.Propose(snapshot, changes, action)
	if err != nil {
		return nil, err
	}
	res, err := s.resolve(ctx, proposal.Snapshot, true)
	if err != nil {
		return nil, err
	}
	result := ValidateChange(proposal.Snapshot, proposal.Changes, action, res.resolution)
	s.recordValidation(ctx, result)
	return &result, nil
}

// ApplyChange validates the change against a dry-run resolution, checks stock,
// commits the engine session and then writes the change together with the
// stamped benefits in a single cart update. A failure before that update
// leaves the cart untouched.
func (s *service) ApplyChange(ctx context.Context, cartID string, changes []cart.ItemChange, action enums.CartAction) (*EnrichedCart, error) {
	ctx = s.logg.WithFields(s.logg.WithCartID(ctx, cartID), map[string]any{"action": action.String()})

	current, err := s.platform.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	proposal, err := cart.Propose(*current, changes, action)
	if err != nil {
		return nil, err
	}

	dry, err := s.resolve(ctx, proposal.Snapshot, true)
	if err != nil {
		return nil, err
	}
	result := ValidateChange(proposal.Snapshot, proposal.Changes, action, dry.resolution)
	s.recordValidation(ctx, result)
	if err := result.Err(); err != nil {
		return nil, err
	}

	if action == enums.CartActionAddProduct || action == enums.CartActionUpdateQuantity {
		if err := s.stock.CheckReservation(ctx, proposal.Snapshot); err != nil {
			s.metrics.IncValidation(metrics.OutcomeRejected, "stock")
			s.logg.Warn(ctx, "cart change rejected by stock check")
			return nil, err
		}
	}

	committed, err := s.resolve(ctx, proposal.Snapshot, false)
	if err != nil {
		s.logg.Error(ctx, "promotion session commit failed", err)
		return nil, err
	}
	stamped := benefits.Attach(proposal.Snapshot.LineItems, committed.resolution.Benefits)

	// The session now reflects the proposal. If the cart write fails the next
	// session update for this cart replaces it.
	updated, err := s.platform.UpdateCart(ctx, cartID, current.Version, proposal.WithBenefits(stamped))
	if err != nil {
		s.logg.Error(ctx, "cart update failed after session commit", err)
		return nil, err
	}

	s.logg.Info(ctx, "cart change applied")
	return enrich(*updated, updated.LineItems, committed), nil
}

func (s *service) ResetProductGroups(ctx context.Context, cartID string) (*cart.Snapshot, error) {
	ctx = s.logg.WithCartID(ctx, cartID)
	current, err := s.platform.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	_, deltas := cart.ResetProductGroups(current.LineItems)
	if len(deltas) == 0 {
		return current, nil
	}
	updated, err := s.platform.UpdateCart(ctx, cartID, current.Version, deltas)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "deltas", len(deltas)), "product groups compacted")
	return updated, nil
}

func (s *service) recordValidation(ctx context.Context, result Result) {
	switch {
	case result.IsValid:
		s.metrics.IncValidation(metrics.OutcomeValid, "")
	case result.IsRequireCampaignVerify:
		s.metrics.IncValidation(metrics.OutcomeVerify, string(result.Reason()))
		s.logg.Info(ctx, "cart change requires campaign verification")
	default:
		s.metrics.IncValidation(metrics.OutcomeInvalid, string(result.Reason()))
		s.logg.Warn(s.logg.WithField(ctx, "reason", string(result.Reason())), result.ErrorMessage)
	}
}

func enrich(snapshot cart.Snapshot, items []cart.LineItem, res *resolved) *EnrichedCart {
	snapshot.LineItems = items
	out := &EnrichedCart{
		Cart:        snapshot,
		Fingerprint: res.fingerprint,
		Benefits:    res.resolution.Benefits.CountByKind(),
	}
	for _, campaign := range res.resolution.Campaigns {
		out.Campaigns = append(out.Campaigns, campaign)
	}
	sort.Slice(out.Campaigns, func(i, j int) bool { return out.Campaigns[i].Code < out.Campaigns[j].Code })
	return out
}
