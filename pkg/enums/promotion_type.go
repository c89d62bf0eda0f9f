package enums

// PromotionType classifies a promotion detail record.
type PromotionType int

const (
	PromotionTypeFreeGift PromotionType = 1
	PromotionTypeAddOn    PromotionType = 2
)

// IsValid reports whether the value is a known PromotionType.
func (p PromotionType) IsValid() bool {
	return p == PromotionTypeFreeGift || p == PromotionTypeAddOn
}

// PromotionQualifier refines how an add-on detail is priced.
type PromotionQualifier int

const (
	PromotionQualifierNone            PromotionQualifier = 0
	PromotionQualifierDiscountBaht    PromotionQualifier = 3
	PromotionQualifierDiscountPercent PromotionQualifier = 4
	PromotionQualifierSubsidy         PromotionQualifier = 5
)

// AddOnVariant names the pricing variant for an add-on qualifier.
func (q PromotionQualifier) AddOnVariant() AddOnVariant {
	switch q {
	case PromotionQualifierDiscountBaht:
		return AddOnVariantDiscountBaht
	case PromotionQualifierDiscountPercent:
		return AddOnVariantDiscountPercent
	case PromotionQualifierSubsidy:
		return AddOnVariantSubsidy
	default:
		return AddOnVariantRedeem
	}
}

// AddOnVariant is the resolved pricing flavour of an add-on benefit.
type AddOnVariant string

const (
	AddOnVariantRedeem          AddOnVariant = "redeem"
	AddOnVariantDiscountBaht    AddOnVariant = "discount_baht"
	AddOnVariantDiscountPercent AddOnVariant = "discount_percent"
	AddOnVariantSubsidy         AddOnVariant = "subsidy"
)
