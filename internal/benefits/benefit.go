// Package benefits turns decoded promotion effects into typed cart benefits, resolves their
// catalog context and stamps them onto cart line items.
package benefits

import (
	"fmt"
	"sort"

	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	"github.com/angelmondragon/promocart-backend/pkg/money"
)

// Benefit is the closed set of resolved benefit kinds. Only types in this package implement it.
type Benefit interface {
	Kind() enums.BenefitKind
	Base() Common
	identity() string
}

// Common identifies the main product and campaign a benefit belongs to.
type Common struct {
	SKU                     string
	ProductGroup            int
	ProductType             enums.ProductType
	CampaignCode            string
	CampaignName            string
	PromotionSetCode        string
	PromotionSetProposition string
	Coupon                  bool
}

func (c Common) Base() Common { return c }

// Matches reports whether the benefit targets the given line item.
func (c Common) Matches(item cart.LineItem) bool {
	return c.SKU == item.SKU &&
		c.ProductType == item.Custom.ProductType &&
		c.ProductGroup == item.Custom.ProductGroup
}

// Privilege renders the campaign identity stamped on line items.
func (c Common) Privilege() *cart.Privilege {
	privilege := &cart.Privilege{
		CampaignCode:            c.CampaignCode,
		CampaignName:            c.CampaignName,
		PromotionSetCode:        c.PromotionSetCode,
		PromotionSetProposition: c.PromotionSetProposition,
		Coupon:                  c.Coupon,
	}
	if privilege.IsZero() {
		return nil
	}
	return privilege
}

func (c Common) target() string {
	return fmt.Sprintf("%s|%s|%d", c.SKU, c.ProductType, c.ProductGroup)
}

// Pricing is the optional price treatment of a benefit. Amounts are stang.
type Pricing struct {
	SpecialPrice    *money.Stang
	DiscountBaht    *money.Stang
	DiscountPercent *int
	Subsidy         *money.Stang
}

// IsZero reports whether no price treatment is set.
func (p Pricing) IsZero() bool {
	return p.SpecialPrice == nil && p.DiscountBaht == nil && p.DiscountPercent == nil && p.Subsidy == nil
}

// Payment is an other-payment amount in stang.
type Payment struct {
	Code   string
	Name   string
	Amount money.Stang
}

// Slot is the shared shape of free-gift and add-on benefits.
type Slot struct {
	Common
	Pricing
	Group             string
	MaxItem           int
	MaxReceive        int
	TotalSelectedItem int
	SKUs              []string
	Variants          []cart.BenefitVariant
}

type FreeGiftBenefit struct {
	Slot
}

func (FreeGiftBenefit) Kind() enums.BenefitKind { return enums.BenefitKindFreeGift }

func (b FreeGiftBenefit) identity() string {
	return fmt.Sprintf("%s|%s|%s", b.Kind(), b.target(), b.Group)
}

type AddOnBenefit struct {
	Slot
	Variant enums.AddOnVariant
}

func (AddOnBenefit) Kind() enums.BenefitKind { return enums.BenefitKindAddOn }

func (b AddOnBenefit) identity() string {
	return fmt.Sprintf("%s|%s|%s", b.Kind(), b.target(), b.Group)
}

type ProductGroupBenefit struct {
	Common
	Pricing
	GroupCode     string
	SKUs          []string
	OtherPayments []Payment
}

func (ProductGroupBenefit) Kind() enums.BenefitKind { return enums.BenefitKindProductGroup }

func (b ProductGroupBenefit) identity() string {
	return fmt.Sprintf("%s|%s|%s", b.Kind(), b.target(), b.GroupCode)
}

type ProductBenefit struct {
	Common
	Pricing
	OtherPayments []Payment
}

func (ProductBenefit) Kind() enums.BenefitKind { return enums.BenefitKindProduct }

func (b ProductBenefit) identity() string {
	return fmt.Sprintf("%s|%s|%s", b.Kind(), b.target(), b.PromotionSetCode)
}

type CampaignDiscountBenefit struct {
	Common
	Pricing
	Code string
	Name string
}

func (CampaignDiscountBenefit) Kind() enums.BenefitKind { return enums.BenefitKindCampaignDiscount }

func (b CampaignDiscountBenefit) identity() string {
	return fmt.Sprintf("%s|%s|%s", b.Kind(), b.target(), b.Code)
}

type CampaignOtherPaymentBenefit struct {
	Common
	Payment
}

func (CampaignOtherPaymentBenefit) Kind() enums.BenefitKind {
	return enums.BenefitKindCampaignOtherPayment
}

func (b CampaignOtherPaymentBenefit) identity() string {
	return fmt.Sprintf("%s|%s|%s", b.Kind(), b.target(), b.Payment.Code)
}

// Set holds resolved benefits partitioned by kind.
type Set struct {
	FreeGifts             []FreeGiftBenefit
	AddOns                []AddOnBenefit
	ProductGroups         []ProductGroupBenefit
	Products              []ProductBenefit
	CampaignDiscounts     []CampaignDiscountBenefit
	CampaignOtherPayments []CampaignOtherPaymentBenefit
}

// Add appends b to the partition of its kind.
func (s *Set) Add(b Benefit) {
	switch v := b.(type) {
	case FreeGiftBenefit:
		s.FreeGifts = append(s.FreeGifts, v)
	case AddOnBenefit:
		s.AddOns = append(s.AddOns, v)
	case ProductGroupBenefit:
		s.ProductGroups = append(s.ProductGroups, v)
	case ProductBenefit:
		s.Products = append(s.Products, v)
	case CampaignDiscountBenefit:
		s.CampaignDiscounts = append(s.CampaignDiscounts, v)
	case CampaignOtherPaymentBenefit:
		s.CampaignOtherPayments = append(s.CampaignOtherPayments, v)
	default:
		panic(fmt.Sprintf("benefits: unknown benefit %T", b))
	}
}

// All lists every benefit, kind by kind.
func (s Set) All() []Benefit {
	out := make([]Benefit, 0, s.Len())
	for _, b := range s.FreeGifts {
		out = append(out, b)
	}
	for _, b := range s.AddOns {
		out = append(out, b)
	}
	for _, b := range s.ProductGroups {
		out = append(out, b)
	}
	for _, b := range s.Products {
		out = append(out, b)
	}
	for _, b := range s.CampaignDiscounts {
		out = append(out, b)
	}
	for _, b := range s.CampaignOtherPayments {
		out = append(out, b)
	}
	return out
}

func (s Set) Len() int {
	return len(s.FreeGifts) + len(s.AddOns) + len(s.ProductGroups) + len(s.Products) +
		len(s.CampaignDiscounts) + len(s.CampaignOtherPayments)
}

// CountByKind returns the number of benefits per kind.
func (s Set) CountByKind() map[enums.BenefitKind]int {
	out := make(map[enums.BenefitKind]int, 6)
	for _, b := range s.All() {
		out[b.Kind()]++
	}
	return out
}

// Slots returns free-gift and add-on benefits ordered by target, kind and group.
func (s Set) Slots() []SlotView {
	out := make([]SlotView, 0, len(s.FreeGifts)+len(s.AddOns))
	for _, b := range s.FreeGifts {
		out = append(out, SlotView{Kind: b.Kind(), Slot: b.Slot})
	}
	for _, b := range s.AddOns {
		out = append(out, SlotView{Kind: b.Kind(), Slot: b.Slot, Variant: b.Variant})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductGroup != out[j].ProductGroup {
			return out[i].ProductGroup < out[j].ProductGroup
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Group < out[j].Group
	})
	return out
}

// SlotView is a kind-tagged view of a free-gift or add-on slot.
type SlotView struct {
	Kind    enums.BenefitKind
	Variant enums.AddOnVariant
	Slot
}

// Campaign is the catalog entry of one campaign seen during resolution.
type Campaign struct {
	Code       string
	Name       string
	VerifyKeys []string
	Coupon     bool
}

// Resolution is the outcome of building benefits for one cart.
type Resolution struct {
	Benefits  Set
	Campaigns map[string]Campaign
}

// Campaign returns the catalog entry for code.
func (r Resolution) Campaign(code string) (Campaign, bool) {
	campaign, ok := r.Campaigns[code]
	return campaign, ok
}
