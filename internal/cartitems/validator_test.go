package cartitems

import (
	"testing"

	"github.com/angelmondragon/promocart-backend/internal/benefits"
	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
)

func mainLine(id, sku string, group int, campaign string) cart.LineItem {
	item := cart.LineItem{
		ID: id, SKU: sku, Quantity: 1,
		Custom: cart.LineItemCustom{ProductType: enums.ProductTypeMainProduct, ProductGroup: group, Selected: true},
	}
	if campaign != "" {
		item.Custom.Privilege = &cart.Privilege{CampaignCode: campaign}
	}
	return item
}

func giftLine(id, sku string, group int, giftGroup string, qty int) cart.LineItem {
	return cart.LineItem{
		ID: id, SKU: sku, Quantity: qty,
		Custom: cart.LineItemCustom{ProductType: enums.ProductTypeFreeGift, ProductGroup: group, FreeGiftGroup: giftGroup},
	}
}

func giftSlot(group int, giftGroup string, maxItem, maxReceive int) benefits.FreeGiftBenefit {
	return benefits.FreeGiftBenefit{Slot: benefits.Slot{
		Common:     benefits.Common{SKU: "M1", ProductGroup: group, ProductType: enums.ProductTypeMainProduct},
		Group:      giftGroup,
		MaxItem:    maxItem,
		MaxReceive: maxReceive,
		SKUs:       []string{"G1"},
	}}
}

func TestValidateChangeRejectsMultipleCampaigns(t *testing.T) {
	t.Parallel()

	proposed := cart.Snapshot{ID: "cart-1", LineItems: []cart.LineItem{
		mainLine("li-1", "M1", 1, "CAMP-A"),
		mainLine("li-2", "M2", 2, "CAMP-B"),
	}}
	changes := []cart.ItemChange{{SKU: "M2", ProductType: enums.ProductTypeMainProduct, ProductGroup: 2, CampaignCode: "CAMP-B", Quantity: 1}}

	res := ValidateChange(proposed, changes, enums.CartActionAddProduct, benefits.Resolution{})
	if res.IsValid {
		t.Fatalf("expected multiple campaigns to be rejected")
	}
	if res.Reason() != ReasonMultipleCampaigns {
		t.Fatalf("expected multiple campaign reason, got %q", res.Reason())
	}
	if len(res.Violation.CampaignCodes) != 2 || res.Violation.CampaignCodes[0] != "CAMP-A" {
		t.Fatalf("expected both campaign codes, got %v", res.Violation.CampaignCodes)
	}
	if got := pkgerrors.As(res.Err()).Code(); got != pkgerrors.CodeConstraintViolation {
		t.Fatalf("expected constraint violation, got %s", got)
	}
}

func TestValidateChangeRejectsMixedCampaign(t *testing.T) {
	t.Parallel()

	proposed := cart.Snapshot{LineItems: []cart.LineItem{
		mainLine("li-1", "M1", 1, ""),
		mainLine("li-2", "M2", 2, "CAMP-A"),
	}}

	res := ValidateChange(proposed, nil, enums.CartActionAddProduct, benefits.Resolution{})
	if res.IsValid || res.Reason() != ReasonMixedCampaign {
		t.Fatalf("expected mixed campaign rejection, got %+v", res)
	}
}

func TestValidateChangeRequiresVerifyKeys(t *testing.T) {
	t.Parallel()

	resolution := benefits.Resolution{Campaigns: map[string]benefits.Campaign{
		"CAMP-A": {Code: "CAMP-A", VerifyKeys: []string{"citizen_id", "phone"}},
	}}
	proposed := cart.Snapshot{LineItems: []cart.LineItem{mainLine("li-1", "M1", 1, "CAMP-A")}}
	change := cart.ItemChange{
		SKU: "M1", ProductType: enums.ProductTypeMainProduct, ProductGroup: 1, Quantity: 1,
		CampaignCode:         "CAMP-A",
		CampaignVerifyValues: map[string]string{"phone": "0812345678", "citizen_id": " "},
	}

	res := ValidateChange(proposed, []cart.ItemChange{change}, enums.CartActionAddProduct, resolution)
	if res.IsValid || !res.IsRequireCampaignVerify {
		t.Fatalf("expected verification outcome, got %+v", res)
	}
	if len(res.CampaignVerifyKeys) != 1 || res.CampaignVerifyKeys[0] != "citizen_id" {
		t.Fatalf("expected citizen_id missing, got %v", res.CampaignVerifyKeys)
	}
	if got := pkgerrors.As(res.Err()).Code(); got != pkgerrors.CodeVerificationRequired {
		t.Fatalf("expected verification required, got %s", got)
	}

	proposed.LineItems[0].Custom.CampaignVerifyValues = map[string]string{"citizen_id": "1100000000001"}
	res = ValidateChange(proposed, []cart.ItemChange{change}, enums.CartActionAddProduct, resolution)
	if !res.IsValid {
		t.Fatalf("expected stored verify value to satisfy the campaign, got %+v", res)
	}
}

func TestValidateChangeCampaignQuantityCeiling(t *testing.T) {
	t.Parallel()

	item := mainLine("li-1", "M1", 1, "CAMP-A")
	item.Quantity = 2
	proposed := cart.Snapshot{LineItems: []cart.LineItem{item}}

	res := ValidateChange(proposed, nil, enums.CartActionUpdateQuantity, benefits.Resolution{})
	if res.IsValid || res.Reason() != ReasonCampaignQuantity {
		t.Fatalf("expected campaign quantity rejection, got %+v", res)
	}
	if res.Violation.Limit != 1 || res.Violation.Requested != 2 {
		t.Fatalf("unexpected violation: %+v", res.Violation)
	}
}

func TestValidateChangeMaxReceive(t *testing.T) {
	t.Parallel()

	var set benefits.Set
	set.Add(giftSlot(1, "fg1", 0, 3))
	proposed := cart.Snapshot{LineItems: []cart.LineItem{
		mainLine("li-1", "M1", 1, ""),
		giftLine("li-2", "G1", 1, "fg1", 4),
	}}

	res := ValidateChange(proposed, nil, enums.CartActionAddProduct, benefits.Resolution{Benefits: set})
	if res.IsValid || res.Reason() != ReasonMaxReceive {
		t.Fatalf("expected max receive rejection, got %+v", res)
	}
	if res.Violation.Group != "fg1" || res.Violation.ProductGroup != 1 || res.Violation.Limit != 3 || res.Violation.Requested != 4 {
		t.Fatalf("expected violation naming fg1, got %+v", res.Violation)
	}

	proposed.LineItems[1].Quantity = 3
	if res := ValidateChange(proposed, nil, enums.CartActionAddProduct, benefits.Resolution{Benefits: set}); !res.IsValid {
		t.Fatalf("expected quantity 3 to fit, got %+v", res)
	}
}

func TestValidateChangeMaxItemPerGroup(t *testing.T) {
	t.Parallel()

	var set benefits.Set
	set.Add(giftSlot(1, "fg1", 1, 5))
	set.Add(giftSlot(1, "fg2", 2, 5))
	proposed := cart.Snapshot{LineItems: []cart.LineItem{
		mainLine("li-1", "M1", 1, ""),
		giftLine("li-2", "G1", 1, "fg2", 2),
		giftLine("li-3", "G1", 1, "fg1", 1),
		giftLine("li-4", "G2", 1, "fg1", 1),
	}}

	res := ValidateChange(proposed, nil, enums.CartActionAddProduct, benefits.Resolution{Benefits: set})
	if res.IsValid || res.Reason() != ReasonMaxItem {
		t.Fatalf("expected max item rejection, got %+v", res)
	}
	if res.Violation.Group != "fg1" || res.Violation.BenefitType != enums.BenefitKindFreeGift || res.Violation.SKU != "G2" {
		t.Fatalf("unexpected violation: %+v", res.Violation)
	}
}

func TestValidateChangeRejectsUnofferedGroup(t *testing.T) {
	t.Parallel()

	proposed := cart.Snapshot{LineItems: []cart.LineItem{
		mainLine("li-1", "M1", 1, ""),
		giftLine("li-2", "G1", 1, "fg9", 1),
	}}

	res := ValidateChange(proposed, nil, enums.CartActionSelectProduct, benefits.Resolution{})
	if res.IsValid || res.Reason() != ReasonBenefitNotOffered {
		t.Fatalf("expected not offered rejection, got %+v", res)
	}
}

func TestValidateChangeRemoveIsAlwaysAllowed(t *testing.T) {
	t.Parallel()

	proposed := cart.Snapshot{LineItems: []cart.LineItem{
		mainLine("li-1", "M1", 1, "CAMP-A"),
		mainLine("li-2", "M2", 2, "CAMP-B"),
		giftLine("li-3", "G1", 1, "fg9", 4),
	}}

	if res := ValidateChange(proposed, nil, enums.CartActionRemoveProduct, benefits.Resolution{}); !res.IsValid {
		t.Fatalf("expected removal to pass, got %+v", res)
	}
}

func TestResultErrValid(t *testing.T) {
	t.Parallel()

	if err := (Result{IsValid: true}).Err(); err != nil {
		t.Fatalf("expected nil error for valid result, got %v", err)
	}
}
