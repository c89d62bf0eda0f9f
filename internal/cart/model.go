package cart

import (
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	"github.com/angelmondragon/promocart-backend/pkg/money"
)

// Snapshot is an immutable view of a commerce-platform cart.
type Snapshot struct {
	ID           string     `json:"id"`
	Version      int64      `json:"version"`
	CurrencyCode string     `json:"currencyCode"`
	CustomerID   string     `json:"customerId,omitempty"`
	LineItems    []LineItem `json:"lineItems"`
	Custom       CartCustom `json:"custom"`
}

// CartCustom holds the cart-level custom fields.
type CartCustom struct {
	Journey     string       `json:"journey,omitempty"`
	PreOrder    bool         `json:"preOrder"`
	PackageInfo *PackageInfo `json:"packageInfo,omitempty"`
	CouponCodes []string     `json:"couponCodes,omitempty"`
}

// PackageInfo describes the mobile package bound to the cart, when any.
type PackageInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name,omitempty"`
	Contract int    `json:"contract,omitempty"`
}

// LineItem is one cart position.
type LineItem struct {
	ID        string         `json:"id"`
	ProductID string         `json:"productId"`
	VariantID int            `json:"variantId"`
	SKU       string         `json:"sku"`
	Quantity  int            `json:"quantity"`
	Price     money.Stang    `json:"price"`
	Custom    LineItemCustom `json:"custom"`
}

// LineItemCustom carries the line item roles and the stamped benefits.
type LineItemCustom struct {
	ProductType          enums.ProductType  `json:"productType"`
	ProductGroup         int                `json:"productGroup"`
	AddOnGroup           string             `json:"addOnGroup,omitempty"`
	FreeGiftGroup        string             `json:"freeGiftGroup,omitempty"`
	Selected             bool               `json:"selected"`
	CampaignVerifyValues map[string]string  `json:"campaignVerifyValues,omitempty"`
	Privilege            *Privilege         `json:"privilege,omitempty"`
	Discounts            []Discount         `json:"discounts,omitempty"`
	OtherPayments        []OtherPayment     `json:"otherPayments,omitempty"`
	AvailableBenefits    []AvailableBenefit `json:"availableBenefits,omitempty"`
}

// Privilege is the campaign identity applied to a line item.
type Privilege struct {
	CampaignCode            string `json:"campaignCode,omitempty"`
	CampaignName            string `json:"campaignName,omitempty"`
	PromotionSetCode        string `json:"promotionSetCode,omitempty"`
	PromotionSetProposition string `json:"promotionSetProposition,omitempty"`
	Coupon                  bool   `json:"coupon,omitempty"`
}

// IsZero reports whether the privilege carries no campaign identity.
func (p *Privilege) IsZero() bool {
	return p == nil || (p.CampaignCode == "" && p.PromotionSetCode == "")
}

// Discount is a single price reduction stamped onto a line item.
type Discount struct {
	Source          enums.DiscountSource `json:"source"`
	Code            string               `json:"code,omitempty"`
	Group           string               `json:"group,omitempty"`
	SpecialPrice    *money.Stang         `json:"specialPrice,omitempty"`
	DiscountBaht    *money.Stang         `json:"discountBaht,omitempty"`
	DiscountPercent *int                 `json:"discountPercent,omitempty"`
	Subsidy         *money.Stang         `json:"subsidy,omitempty"`
}

// OtherPayment is a non-discount settlement (subsidy, partner payment) on a line item.
type OtherPayment struct {
	Source enums.DiscountSource `json:"source"`
	Code   string               `json:"code"`
	Name   string               `json:"name,omitempty"`
	Group  string               `json:"group,omitempty"`
	Amount money.Stang          `json:"amount"`
}

// AvailableBenefit is a free-gift or add-on slot offered under a main product.
type AvailableBenefit struct {
	Type              enums.BenefitKind  `json:"type"`
	Group             string             `json:"group"`
	AddOnVariant      enums.AddOnVariant `json:"addOnVariant,omitempty"`
	MaxItem           int                `json:"maxItem"`
	MaxReceive        int                `json:"maxReceive"`
	TotalSelectedItem int                `json:"totalSelectedItem"`
	SpecialPrice      *money.Stang       `json:"specialPrice,omitempty"`
	DiscountBaht      *money.Stang       `json:"discountBaht,omitempty"`
	DiscountPercent   *int               `json:"discountPercent,omitempty"`
	Subsidy           *money.Stang       `json:"subsidy,omitempty"`
	Variants          []BenefitVariant   `json:"variants"`
}

// BenefitVariant is one selectable product variant of an available benefit.
type BenefitVariant struct {
	ProductID        string      `json:"productId"`
	VariantID        int         `json:"variantId"`
	SKU              string      `json:"sku"`
	Name             string      `json:"name,omitempty"`
	Price            money.Stang `json:"price"`
	SelectedQuantity int         `json:"selectedQuantity"`
}

// IsMainProduct reports whether the line item is a main product.
func (l LineItem) IsMainProduct() bool {
	return l.Custom.ProductType == enums.ProductTypeMainProduct
}

// BenefitGroup returns the add-on or free-gift group key of a dependent line item.
func (l LineItem) BenefitGroup() string {
	switch l.Custom.ProductType {
	case enums.ProductTypeFreeGift:
		return l.Custom.FreeGiftGroup
	case enums.ProductTypeAddOn:
		return l.Custom.AddOnGroup
	default:
		return ""
	}
}

// CampaignCode returns the campaign the line item is currently bound to.
func (l LineItem) CampaignCode() string {
	if l.Custom.Privilege == nil {
		return ""
	}
	return l.Custom.Privilege.CampaignCode
}

// MainProducts returns the main-product line items in cart order.
func (s Snapshot) MainProducts() []LineItem {
	out := make([]LineItem, 0, len(s.LineItems))
	for _, item := range s.LineItems {
		if item.IsMainProduct() {
			out = append(out, item)
		}
	}
	return out
}

// NextProductGroup returns the group number the next distinct main product receives.
func (s Snapshot) NextProductGroup() int {
	highest := 0
	for _, item := range s.LineItems {
		if item.Custom.ProductGroup > highest {
			highest = item.Custom.ProductGroup
		}
	}
	return highest + 1
}

// SKUs returns the distinct SKUs in cart order.
func (s Snapshot) SKUs() []string {
	seen := make(map[string]struct{}, len(s.LineItems))
	out := make([]string, 0, len(s.LineItems))
	for _, item := range s.LineItems {
		if _, ok := seen[item.SKU]; ok {
			continue
		}
		seen[item.SKU] = struct{}{}
		out = append(out, item.SKU)
	}
	return out
}
