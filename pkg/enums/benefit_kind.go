package enums

// BenefitKind tags the variants of a resolved cart benefit.
type BenefitKind string

const (
	BenefitKindFreeGift             BenefitKind = "free_gift"
	BenefitKindAddOn                BenefitKind = "add_on"
	BenefitKindProductGroup         BenefitKind = "product_group"
	BenefitKindProduct              BenefitKind = "product"
	BenefitKindCampaignDiscount     BenefitKind = "campaign_discount"
	BenefitKindCampaignOtherPayment BenefitKind = "campaign_other_payment"
)

// String implements fmt.Stringer.
func (k BenefitKind) String() string {
	return string(k)
}

// DiscountSource identifies where a stamped line item discount came from.
type DiscountSource string

const (
	DiscountSourceProduct      DiscountSource = "product"
	DiscountSourceProductGroup DiscountSource = "product_group"
	DiscountSourceCampaign     DiscountSource = "campaign"
	DiscountSourceFreeGift     DiscountSource = "free_gift"
	DiscountSourceAddOn        DiscountSource = "add_on"
)
