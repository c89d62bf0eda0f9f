package cart

import (
	"testing"

	"github.com/angelmondragon/promocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		ID:           "cart-1",
		Version:      4,
		CurrencyCode: "THB",
		LineItems: []LineItem{
			{
				ID: "li-m1", SKU: "M1", Quantity: 1, Price: 1990000,
				Custom: LineItemCustom{
					ProductType:  enums.ProductTypeMainProduct,
					ProductGroup: 1,
					Selected:     true,
					Privilege:    &Privilege{CampaignCode: "CAMP-A"},
				},
			},
			{
				ID: "li-g1", SKU: "G1", Quantity: 1,
				Custom: LineItemCustom{
					ProductType:   enums.ProductTypeFreeGift,
					ProductGroup:  1,
					FreeGiftGroup: "fg1",
					Selected:      true,
				},
			},
			{
				ID: "li-m2", SKU: "M2", Quantity: 1,
				Custom: LineItemCustom{ProductType: enums.ProductTypeMainProduct, ProductGroup: 2, Selected: true},
			},
		},
	}
}

func TestProposeAddAssignsNextProductGroup(t *testing.T) {
	t.Parallel()

	current := sampleSnapshot()
	proposal, err := Propose(current, []ItemChange{
		{SKU: "M3", Quantity: 1, ProductType: enums.ProductTypeMainProduct, CampaignCode: "CAMP-A"},
	}, enums.CartActionAddProduct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := proposal.Changes[0].ProductGroup; got != 3 {
		t.Fatalf("expected product group 3, got %d", got)
	}
	if len(proposal.Snapshot.LineItems) != 4 {
		t.Fatalf("expected 4 line items, got %d", len(proposal.Snapshot.LineItems))
	}
	added := proposal.Snapshot.LineItems[3]
	if added.CampaignCode() != "CAMP-A" || added.Custom.ProductGroup != 3 {
		t.Fatalf("unexpected added item %+v", added)
	}
	if len(proposal.Actions) != 1 || proposal.Actions[0].Action != ActionAddLineItem {
		t.Fatalf("expected addLineItem action, got %+v", proposal.Actions)
	}
	if len(current.LineItems) != 3 {
		t.Fatalf("current snapshot mutated")
	}
}

func TestProposeAddMergesIdenticalLine(t *testing.T) {
	t.Parallel()

	proposal, err := Propose(sampleSnapshot(), []ItemChange{
		{SKU: "G1", Quantity: 2, ProductType: enums.ProductTypeFreeGift, ProductGroup: 1, FreeGiftGroup: "fg1"},
	}, enums.CartActionAddProduct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := proposal.Snapshot.LineItems[1].Quantity; got != 3 {
		t.Fatalf("expected merged quantity 3, got %d", got)
	}
	action := proposal.Actions[0]
	if action.Action != ActionChangeLineItemQuantity || action.LineItemID != "li-g1" || *action.Quantity != 3 {
		t.Fatalf("unexpected action %+v", action)
	}
}

func TestProposeAddRejectsDependentWithoutGroup(t *testing.T) {
	t.Parallel()

	_, err := Propose(sampleSnapshot(), []ItemChange{
		{SKU: "A1", Quantity: 1, ProductType: enums.ProductTypeAddOn, AddOnGroup: "ao1"},
	}, enums.CartActionAddProduct)
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := pkgerrors.As(err).Code(); got != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", got)
	}
}

func TestProposeRemoveMainCascadesAndCompacts(t *testing.T) {
	t.Parallel()

	proposal, err := Propose(sampleSnapshot(), []ItemChange{{LineItemID: "li-m1"}}, enums.CartActionRemoveProduct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(proposal.Snapshot.LineItems) != 1 {
		t.Fatalf("expected only M2 to remain, got %+v", proposal.Snapshot.LineItems)
	}
	remaining := proposal.Snapshot.LineItems[0]
	if remaining.SKU != "M2" || remaining.Custom.ProductGroup != 1 {
		t.Fatalf("expected M2 compacted to group 1, got %+v", remaining)
	}

	var removed, regrouped int
	for _, action := range proposal.Actions {
		switch action.Action {
		case ActionRemoveLineItem:
			removed++
		case ActionSetLineItemCustomField:
			regrouped++
		}
	}
	if removed != 2 || regrouped != 1 {
		t.Fatalf("expected 2 removals and 1 regroup, got %d and %d", removed, regrouped)
	}
}

func TestProposeUpdateQuantityZeroRemoves(t *testing.T) {
	t.Parallel()

	proposal, err := Propose(sampleSnapshot(), []ItemChange{{LineItemID: "li-g1", Quantity: 0}}, enums.CartActionUpdateQuantity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proposal.Snapshot.LineItems) != 2 {
		t.Fatalf("expected gift removed, got %d items", len(proposal.Snapshot.LineItems))
	}
	if proposal.Changes[0].FreeGiftGroup != "fg1" || proposal.Changes[0].Quantity != 0 {
		t.Fatalf("resolved change lost line item roles: %+v", proposal.Changes[0])
	}
}

func TestProposeSelectProduct(t *testing.T) {
	t.Parallel()

	off := false
	proposal, err := Propose(sampleSnapshot(), []ItemChange{{LineItemID: "li-m2", Selected: &off}}, enums.CartActionSelectProduct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proposal.Snapshot.LineItems[2].Custom.Selected {
		t.Fatalf("expected M2 deselected")
	}
	if proposal.Actions[0].Name != FieldSelected || proposal.Actions[0].Value != false {
		t.Fatalf("unexpected action %+v", proposal.Actions[0])
	}
}

func TestProposeUnknownLineItem(t *testing.T) {
	t.Parallel()

	_, err := Propose(sampleSnapshot(), []ItemChange{{LineItemID: "missing"}}, enums.CartActionRemoveProduct)
	if got := pkgerrors.As(err).Code(); got != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", got)
	}
}

func TestProposeRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	_, err := Propose(sampleSnapshot(), []ItemChange{{SKU: "M1"}}, enums.CartAction("explode"))
	if got := pkgerrors.As(err).Code(); got != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", got)
	}
}

func TestWithBenefitsStampsAddsAndChangedLines(t *testing.T) {
	t.Parallel()

	proposal, err := Propose(sampleSnapshot(), []ItemChange{
		{SKU: "G2", Quantity: 1, ProductType: enums.ProductTypeFreeGift, ProductGroup: 2, FreeGiftGroup: "fg2"},
	}, enums.CartActionAddProduct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stamped := make([]LineItem, len(proposal.Snapshot.LineItems))
	copy(stamped, proposal.Snapshot.LineItems)
	stamped[2].Custom.AvailableBenefits = []AvailableBenefit{{Group: "fg2", MaxReceive: 1}}
	stamped[3].Custom.Discounts = []Discount{{Code: "GIFT-FREE"}}

	actions := proposal.WithBenefits(stamped)
	if actions[0].Action != ActionAddLineItem || len(actions[0].Custom.Discounts) != 1 {
		t.Fatalf("expected add to carry the stamped discount, got %+v", actions[0])
	}
	for _, action := range actions[1:] {
		if action.LineItemID != "li-m2" {
			t.Fatalf("unexpected write for unchanged line %q", action.LineItemID)
		}
	}
	if len(actions) != 5 {
		t.Fatalf("expected add plus 4 writes for li-m2, got %d actions", len(actions))
	}
}
