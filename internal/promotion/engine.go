package promotion

import (
	"context"

	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	"github.com/angelmondragon/promocart-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// Engine evaluates a customer session against the configured campaigns.
type Engine interface {
	UpdateCustomerSession(ctx context.Context, sessionID string, payload SessionPayload, opts SessionOptions) (*SessionResult, error)
}

// SessionOptions controls evaluation. Dry evaluates without persisting the session.
type SessionOptions struct {
	Dry bool
}

// CartItem is a line item as the promotion engine sees it. Its index in the session
// cart item list is the cartItemPosition effects refer to.
type CartItem struct {
	Name       string             `json:"name"`
	SKU        string             `json:"sku"`
	Quantity   int                `json:"quantity"`
	Price      decimal.Decimal    `json:"price"`
	Attributes CartItemAttributes `json:"attributes"`
}

type CartItemAttributes struct {
	ProductType   enums.ProductType `json:"product_type"`
	ProductGroup  int               `json:"product_group"`
	AddOnGroup    string            `json:"add_on_group,omitempty"`
	FreeGiftGroup string            `json:"free_gift_group,omitempty"`
	CampaignCode  string            `json:"campaign_code,omitempty"`
}

// SessionPayload is the customer session body sent to the engine.
type SessionPayload struct {
	ProfileID   string            `json:"profileId,omitempty"`
	State       string            `json:"state"`
	CouponCodes []string          `json:"couponCodes,omitempty"`
	CartItems   []CartItem        `json:"cartItems"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type CustomerSession struct {
	IntegrationID string     `json:"integrationId"`
	State         string     `json:"state"`
	CouponCodes   []string   `json:"couponCodes,omitempty"`
	CartItems     []CartItem `json:"cartItems"`
}

type SessionResult struct {
	Session CustomerSession `json:"customerSession"`
	Effects []Effect        `json:"effects"`
}

// Items returns the cart items effect positions resolve against, preferring the engine echo.
func (r *SessionResult) Items(fallback []CartItem) []CartItem {
	if r == nil || len(r.Session.CartItems) == 0 {
		return fallback
	}
	return r.Session.CartItems
}

const (
	sessionStateOpen         = "open"
	AttributeCartID          = "cart_id"
	AttributeCartJourney     = "journey"
	AttributeCartFingerprint = "cart_fingerprint"
)

// NewSessionPayload projects a cart snapshot onto the engine session shape.
func NewSessionPayload(snapshot cart.Snapshot, fingerprint string) SessionPayload {
	items := make([]CartItem, 0, len(snapshot.LineItems))
	for _, item := range snapshot.LineItems {
		items = append(items, CartItem{
			Name:     item.SKU,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Price:    money.StangToBaht(item.Price),
			Attributes: CartItemAttributes{
				ProductType:   item.Custom.ProductType,
				ProductGroup:  item.Custom.ProductGroup,
				AddOnGroup:    item.Custom.AddOnGroup,
				FreeGiftGroup: item.Custom.FreeGiftGroup,
				CampaignCode:  item.CampaignCode(),
			},
		})
	}

	attributes := map[string]string{AttributeCartID: snapshot.ID}
	if snapshot.Custom.Journey != "" {
		attributes[AttributeCartJourney] = snapshot.Custom.Journey
	}
	if fingerprint != "" {
		attributes[AttributeCartFingerprint] = fingerprint
	}

	return SessionPayload{
		ProfileID:   snapshot.CustomerID,
		State:       sessionStateOpen,
		CouponCodes: append([]string(nil), snapshot.Custom.CouponCodes...),
		CartItems:   items,
		Attributes:  attributes,
	}
}
