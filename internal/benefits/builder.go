package benefits

import (
	"sort"
	"strings"

	"github.com/angelmondragon/promocart-backend/internal/promotion"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	"github.com/angelmondragon/promocart-backend/pkg/money"
)

// Build turns one converted effect into benefits. Baht amounts become stang here and nowhere else.
func Build(effect promotion.ConvertedEffect) Set {
	var set Set
	common := commonOf(effect)
	maxReceive, setMaxItem := 0, 0
	if effect.PromotionSet != nil {
		maxReceive = effect.PromotionSet.MaxReceive.Int()
		setMaxItem = effect.PromotionSet.MaxItem.Int()
	}

	for _, detail := range effect.Details {
		group := strings.TrimSpace(detail.GroupCode)
		if group == "" {
			continue
		}
		maxItem := detail.MaxItem.Int()
		if maxItem == 0 {
			maxItem = setMaxItem
		}
		slot := Slot{
			Common:     common,
			Group:      group,
			MaxItem:    maxItem,
			MaxReceive: maxReceive,
			SKUs:       dedupe(detail.SKUs),
		}

		switch enums.PromotionType(detail.PromotionType.Int()) {
		case enums.PromotionTypeFreeGift:
			slot.Pricing = Pricing{SpecialPrice: stang(detail.SpecialPrice)}
			set.Add(FreeGiftBenefit{Slot: slot})
		case enums.PromotionTypeAddOn:
			qualifier := enums.PromotionQualifier(detail.Qualifier.Int())
			slot.Pricing = Pricing{SpecialPrice: stang(detail.SpecialPrice)}
			switch qualifier {
			case enums.PromotionQualifierDiscountBaht:
				slot.DiscountBaht = stang(detail.DiscountBaht)
			case enums.PromotionQualifierDiscountPercent:
				slot.DiscountPercent = percent(detail.DiscountPercent)
			case enums.PromotionQualifierSubsidy:
				slot.Subsidy = stang(detail.Subsidy)
			}
			set.Add(AddOnBenefit{Slot: slot, Variant: qualifier.AddOnVariant()})
		}
	}

	for _, group := range effect.ProductGroups {
		skus := dedupe(group.SKUs)
		if len(skus) > 0 && !contains(skus, common.SKU) {
			continue
		}
		set.Add(ProductGroupBenefit{
			Common:        common,
			Pricing:       pricingOf(group.SpecialPrice, group.DiscountBaht, group.DiscountPercent),
			GroupCode:     group.GroupCode,
			SKUs:          skus,
			OtherPayments: payments(group.OtherPayments),
		})
	}

	for _, product := range effect.Products {
		if product.SKU != common.SKU {
			continue
		}
		set.Add(ProductBenefit{
			Common:        common,
			Pricing:       pricingOf(product.SpecialPrice, product.DiscountBaht, product.DiscountPercent),
			OtherPayments: payments(product.OtherPayments),
		})
	}

	if promotion.IsPlaceholder(common.CampaignCode) {
		return set
	}
	if discount := effect.Discount; discount != nil && !promotion.IsPlaceholder(discount.Code) {
		set.Add(CampaignDiscountBenefit{
			Common:  common,
			Pricing: pricingOf(discount.SpecialPrice, discount.DiscountBaht, discount.DiscountPercent),
			Code:    discount.Code,
			Name:    discount.Name,
		})
	}
	for _, payment := range payments(effect.OtherPayments) {
		set.Add(CampaignOtherPaymentBenefit{Common: common, Payment: payment})
	}
	return set
}

// BuildAll builds every effect, keeps the first benefit per identity and collects the
// campaign catalog.
func BuildAll(effects []promotion.ConvertedEffect) Resolution {
	resolution := Resolution{Campaigns: make(map[string]Campaign)}
	seen := make(map[string]struct{})
	for _, effect := range effects {
		for _, benefit := range Build(effect).All() {
			id := benefit.identity()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			resolution.Benefits.Add(benefit)
		}

		if effect.Campaign == nil || effect.Campaign.Code == "" {
			continue
		}
		entry := resolution.Campaigns[effect.Campaign.Code]
		entry.Code = effect.Campaign.Code
		if entry.Name == "" {
			entry.Name = effect.Campaign.Name
		}
		entry.VerifyKeys = dedupe(append(entry.VerifyKeys, effect.Campaign.VerifyKeys...))
		sort.Strings(entry.VerifyKeys)
		entry.Coupon = entry.Coupon || effect.Coupon
		resolution.Campaigns[entry.Code] = entry
	}
	return resolution
}

func commonOf(effect promotion.ConvertedEffect) Common {
	common := Common{
		SKU:          effect.Item.SKU,
		ProductGroup: effect.Item.ProductGroup,
		ProductType:  effect.Item.ProductType,
		Coupon:       effect.Coupon,
	}
	if effect.Campaign != nil {
		common.CampaignCode = effect.Campaign.Code
		common.CampaignName = effect.Campaign.Name
	}
	if effect.PromotionSet != nil {
		common.PromotionSetCode = effect.PromotionSet.Code
		common.PromotionSetProposition = effect.PromotionSet.Proposition
	}
	return common
}

func stang(amount promotion.Amount) *money.Stang {
	if !amount.Valid {
		return nil
	}
	return money.BahtPtrToStang(&amount.Value)
}

func percent(value promotion.FlexInt) *int {
	if value.Int() == 0 {
		return nil
	}
	v := value.Int()
	return &v
}

func pricingOf(special, discount promotion.Amount, pct promotion.FlexInt) Pricing {
	return Pricing{
		SpecialPrice:    stang(special),
		DiscountBaht:    stang(discount),
		DiscountPercent: percent(pct),
	}
}

func payments(in []promotion.OtherPayment) []Payment {
	var out []Payment
	for _, payment := range in {
		if promotion.IsPlaceholder(payment.Code) || !payment.Amount.Valid {
			continue
		}
		out = append(out, Payment{
			Code:   payment.Code,
			Name:   payment.Name,
			Amount: money.BahtToStang(payment.Amount.Value),
		})
	}
	return out
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
