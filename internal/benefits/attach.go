package benefits

import (
	"sort"

	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
)

// Attach stamps privilege, discounts, other payments and available benefits onto the line
// items. It never mutates its inputs, recomputes every stamped field from set, and returns
// the same output for the same inputs.
func Attach(items []cart.LineItem, set Set) []cart.LineItem {
	out := make([]cart.LineItem, len(items))
	copy(out, items)

	slots := set.Slots()
	parents := make(map[int]int)
	for i := range out {
		item := &out[i]
		if !item.IsMainProduct() {
			continue
		}
		if _, ok := parents[item.Custom.ProductGroup]; !ok {
			parents[item.Custom.ProductGroup] = i
		}
		stampMain(item, set, slots)
	}

	for i := range out {
		item := &out[i]
		kind, ok := slotKind(item.Custom.ProductType)
		if !ok {
			continue
		}
		item.Custom.Privilege = nil
		item.Custom.Discounts = nil
		item.Custom.OtherPayments = nil
		item.Custom.AvailableBenefits = nil

		parentIdx, ok := parents[item.Custom.ProductGroup]
		if !ok {
			continue
		}
		parent := out[parentIdx]
		if !parent.Custom.Privilege.IsZero() {
			privilege := *parent.Custom.Privilege
			item.Custom.Privilege = &privilege
		}
		for _, available := range parent.Custom.AvailableBenefits {
			if available.Type != kind || available.Group != item.BenefitGroup() || !offersSKU(available, item.SKU) {
				continue
			}
			item.Custom.Discounts = []cart.Discount{{
				Source:          discountSource(kind),
				Code:            item.CampaignCode(),
				Group:           available.Group,
				SpecialPrice:    available.SpecialPrice,
				DiscountBaht:    available.DiscountBaht,
				DiscountPercent: available.DiscountPercent,
				Subsidy:         available.Subsidy,
			}}
			break
		}
	}
	return out
}

func stampMain(item *cart.LineItem, set Set, slots []SlotView) {
	item.Custom.Privilege = nil
	item.Custom.Discounts = nil
	item.Custom.OtherPayments = nil
	item.Custom.AvailableBenefits = nil

	var privilegeFrom *Common
	claim := func(c Common) {
		if privilegeFrom == nil && c.Privilege() != nil {
			copied := c
			privilegeFrom = &copied
		}
	}

	for _, b := range set.ProductGroups {
		if !b.Matches(*item) {
			continue
		}
		claim(b.Common)
		if !b.Pricing.IsZero() {
			item.Custom.Discounts = append(item.Custom.Discounts, discountOf(enums.DiscountSourceProductGroup, b.GroupCode, b.GroupCode, b.Pricing))
		}
		for _, p := range b.OtherPayments {
			item.Custom.OtherPayments = append(item.Custom.OtherPayments, cart.OtherPayment{
				Source: enums.DiscountSourceProductGroup, Code: p.Code, Name: p.Name, Group: b.GroupCode, Amount: p.Amount,
			})
		}
	}
	for _, b := range set.Products {
		if !b.Matches(*item) {
			continue
		}
		claim(b.Common)
		if !b.Pricing.IsZero() {
			item.Custom.Discounts = append(item.Custom.Discounts, discountOf(enums.DiscountSourceProduct, b.SKU, "", b.Pricing))
		}
		for _, p := range b.OtherPayments {
			item.Custom.OtherPayments = append(item.Custom.OtherPayments, cart.OtherPayment{
				Source: enums.DiscountSourceProduct, Code: p.Code, Name: p.Name, Amount: p.Amount,
			})
		}
	}
	for _, b := range set.CampaignDiscounts {
		if !b.Matches(*item) {
			continue
		}
		claim(b.Common)
		item.Custom.Discounts = append(item.Custom.Discounts, discountOf(enums.DiscountSourceCampaign, b.Code, "", b.Pricing))
	}
	for _, b := range set.CampaignOtherPayments {
		if !b.Matches(*item) {
			continue
		}
		claim(b.Common)
		item.Custom.OtherPayments = append(item.Custom.OtherPayments, cart.OtherPayment{
			Source: enums.DiscountSourceCampaign, Code: b.Payment.Code, Name: b.Payment.Name, Amount: b.Amount,
		})
	}
	for _, slot := range slots {
		if !slot.Matches(*item) {
			continue
		}
		claim(slot.Common)
		item.Custom.AvailableBenefits = append(item.Custom.AvailableBenefits, cart.AvailableBenefit{
			Type:              slot.Kind,
			Group:             slot.Group,
			AddOnVariant:      slot.Variant,
			MaxItem:           slot.MaxItem,
			MaxReceive:        slot.MaxReceive,
			TotalSelectedItem: slot.TotalSelectedItem,
			SpecialPrice:      slot.SpecialPrice,
			DiscountBaht:      slot.DiscountBaht,
			DiscountPercent:   slot.DiscountPercent,
			Subsidy:           slot.Subsidy,
			Variants:          append([]cart.BenefitVariant(nil), slot.Variants...),
		})
	}

	if privilegeFrom != nil {
		item.Custom.Privilege = privilegeFrom.Privilege()
	}
	sort.SliceStable(item.Custom.Discounts, func(i, j int) bool {
		a, b := item.Custom.Discounts[i], item.Custom.Discounts[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Code < b.Code
	})
	sort.SliceStable(item.Custom.OtherPayments, func(i, j int) bool {
		a, b := item.Custom.OtherPayments[i], item.Custom.OtherPayments[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Code < b.Code
	})
}

func discountOf(source enums.DiscountSource, code, group string, pricing Pricing) cart.Discount {
	return cart.Discount{
		Source:          source,
		Code:            code,
		Group:           group,
		SpecialPrice:    pricing.SpecialPrice,
		DiscountBaht:    pricing.DiscountBaht,
		DiscountPercent: pricing.DiscountPercent,
		Subsidy:         pricing.Subsidy,
	}
}

func slotKind(productType enums.ProductType) (enums.BenefitKind, bool) {
	switch productType {
	case enums.ProductTypeFreeGift:
		return enums.BenefitKindFreeGift, true
	case enums.ProductTypeAddOn:
		return enums.BenefitKindAddOn, true
	default:
		return "", false
	}
}

func discountSource(kind enums.BenefitKind) enums.DiscountSource {
	if kind == enums.BenefitKindFreeGift {
		return enums.DiscountSourceFreeGift
	}
	return enums.DiscountSourceAddOn
}

func offersSKU(available cart.AvailableBenefit, sku string) bool {
	if len(available.Variants) == 0 {
		return true
	}
	for _, variant := range available.Variants {
		if variant.SKU == sku {
			return true
		}
	}
	return false
}
