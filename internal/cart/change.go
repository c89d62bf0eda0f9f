package cart

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/angelmondragon/promocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
)

// ItemChange is one requested line item mutation.
type ItemChange struct {
	LineItemID           string            `json:"lineItemId,omitempty"`
	ProductID            string            `json:"productId,omitempty"`
	VariantID            int               `json:"variantId,omitempty"`
	SKU                  string            `json:"sku"`
	Quantity             int               `json:"quantity"`
	ProductType          enums.ProductType `json:"productType"`
	ProductGroup         int               `json:"productGroup,omitempty"`
	AddOnGroup           string            `json:"addOnGroup,omitempty"`
	FreeGiftGroup        string            `json:"freeGiftGroup,omitempty"`
	CampaignCode         string            `json:"campaignCode,omitempty"`
	CampaignVerifyValues map[string]string `json:"campaignVerifyValues,omitempty"`
	Selected             *bool             `json:"selected,omitempty"`
}

// BenefitGroup returns the add-on or free-gift group key of the change.
func (c ItemChange) BenefitGroup() string {
	switch c.ProductType {
	case enums.ProductTypeFreeGift:
		return c.FreeGiftGroup
	case enums.ProductTypeAddOn:
		return c.AddOnGroup
	default:
		return ""
	}
}

// Proposal is the cart as it would look after a change, plus the actions that produce it.
type Proposal struct {
	Snapshot Snapshot
	Actions  []UpdateAction
	// Changes holds the incoming changes with product groups resolved.
	Changes []ItemChange
}

// Propose computes the proposed cart for the requested changes without touching the original.
func Propose(current Snapshot, changes []ItemChange, action enums.CartAction) (*Proposal, error) {
	if !action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported cart action %q", action))
	}
	if len(changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one change is required")
	}

	proposed := current.Clone()
	resolved := make([]ItemChange, 0, len(changes))
	var actions []UpdateAction

	switch action {
	case enums.CartActionAddProduct:
		nextGroup := proposed.NextProductGroup()
		for _, change := range changes {
			if change.Quantity <= 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive").
					WithDetails(map[string]any{"sku": change.SKU})
			}
			if !change.ProductType.IsValid() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product type").
					WithDetails(map[string]any{"sku": change.SKU, "productType": change.ProductType})
			}
			if change.ProductType == enums.ProductTypeMainProduct && change.ProductGroup == 0 {
				change.ProductGroup = nextGroup
				nextGroup++
			}
			if change.ProductType.IsDependent() && change.ProductGroup == 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "dependent items require a product group").
					WithDetails(map[string]any{"sku": change.SKU})
			}
			resolved = append(resolved, change)
			actions = append(actions, proposed.add(change))
		}
	case enums.CartActionUpdateQuantity:
		for _, change := range changes {
			idx := proposed.find(change)
			if idx < 0 {
				return nil, lineItemNotFound(change)
			}
			if change.Quantity < 0 {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity cannot be negative").
					WithDetails(map[string]any{"sku": change.SKU})
			}
			change = proposed.LineItems[idx].asChange(change.Quantity, change.CampaignVerifyValues)
			resolved = append(resolved, change)
			if change.Quantity == 0 {
				actions = append(actions, proposed.remove(idx)...)
				continue
			}
			proposed.LineItems[idx].Quantity = change.Quantity
			actions = append(actions, ChangeQuantity(proposed.LineItems[idx].ID, change.Quantity))
		}
	case enums.CartActionRemoveProduct:
		for _, change := range changes {
			idx := proposed.find(change)
			if idx < 0 {
				return nil, lineItemNotFound(change)
			}
			resolved = append(resolved, proposed.LineItems[idx].asChange(0, nil))
			actions = append(actions, proposed.remove(idx)...)
		}
	case enums.CartActionSelectProduct:
		for _, change := range changes {
			idx := proposed.find(change)
			if idx < 0 {
				return nil, lineItemNotFound(change)
			}
			selected := true
			if change.Selected != nil {
				selected = *change.Selected
			}
			proposed.LineItems[idx].Custom.Selected = selected
			item := proposed.LineItems[idx]
			resolved = append(resolved, item.asChange(item.Quantity, nil))
			actions = append(actions, SetCustomField(item.ID, FieldSelected, selected))
		}
	}

	if action == enums.CartActionRemoveProduct || action == enums.CartActionUpdateQuantity {
		compacted, deltas := ResetProductGroups(proposed.LineItems)
		proposed.LineItems = compacted
		actions = append(actions, deltas...)
	}

	return &Proposal{Snapshot: proposed, Actions: actions, Changes: resolved}, nil
}

// Clone returns a deep copy of the snapshot line items so proposals never alias the original.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.LineItems = make([]LineItem, len(s.LineItems))
	for i, item := range s.LineItems {
		out.LineItems[i] = item.clone()
	}
	if s.Custom.PackageInfo != nil {
		info := *s.Custom.PackageInfo
		out.Custom.PackageInfo = &info
	}
	return out
}

func (l LineItem) clone() LineItem {
	out := l
	if l.Custom.CampaignVerifyValues != nil {
		out.Custom.CampaignVerifyValues = make(map[string]string, len(l.Custom.CampaignVerifyValues))
		for k, v := range l.Custom.CampaignVerifyValues {
			out.Custom.CampaignVerifyValues[k] = v
		}
	}
	if l.Custom.Privilege != nil {
		privilege := *l.Custom.Privilege
		out.Custom.Privilege = &privilege
	}
	out.Custom.Discounts = append([]Discount(nil), l.Custom.Discounts...)
	out.Custom.OtherPayments = append([]OtherPayment(nil), l.Custom.OtherPayments...)
	if l.Custom.AvailableBenefits != nil {
		out.Custom.AvailableBenefits = make([]AvailableBenefit, len(l.Custom.AvailableBenefits))
		for i, benefit := range l.Custom.AvailableBenefits {
			benefit.Variants = append([]BenefitVariant(nil), benefit.Variants...)
			out.Custom.AvailableBenefits[i] = benefit
		}
	}
	return out
}

func (l LineItem) asChange(quantity int, verify map[string]string) ItemChange {
	return ItemChange{
		LineItemID:           l.ID,
		ProductID:            l.ProductID,
		VariantID:            l.VariantID,
		SKU:                  l.SKU,
		Quantity:             quantity,
		ProductType:          l.Custom.ProductType,
		ProductGroup:         l.Custom.ProductGroup,
		AddOnGroup:           l.Custom.AddOnGroup,
		FreeGiftGroup:        l.Custom.FreeGiftGroup,
		CampaignCode:         l.CampaignCode(),
		CampaignVerifyValues: verify,
	}
}

// WithBenefits returns the proposal actions with benefits stamped in stamped
// folded into the same write. New lines carry their benefits on addLineItem;
// existing lines whose benefit fields changed get setLineItemCustomField writes.
// stamped must hold the proposal's line items in the same order.
func (p Proposal) WithBenefits(stamped []LineItem) []UpdateAction {
	var pending []LineItem
	before := make(map[string]LineItemCustom, len(p.Snapshot.LineItems))
	for _, item := range p.Snapshot.LineItems {
		before[item.ID] = item.Custom
	}
	for _, item := range stamped {
		if isPendingLineItemID(item.ID) {
			pending = append(pending, item)
		}
	}

	actions := make([]UpdateAction, 0, len(p.Actions))
	next := 0
	for _, action := range p.Actions {
		switch {
		case action.Action == ActionAddLineItem && next < len(pending):
			action = AddLineItem(pending[next])
			next++
		case action.Action == ActionChangeLineItemQuantity && isPendingLineItemID(action.LineItemID):
			// merged into a line added by this change; its add carries the final quantity
			continue
		}
		actions = append(actions, action)
	}

	var changed []LineItem
	for _, item := range stamped {
		old, ok := before[item.ID]
		if !ok || isPendingLineItemID(item.ID) || sameBenefits(old, item.Custom) {
			continue
		}
		changed = append(changed, item)
	}
	return append(actions, BenefitActions(changed)...)
}

func sameBenefits(a, b LineItemCustom) bool {
	return reflect.DeepEqual(a.Privilege, b.Privilege) &&
		emptyOrEqual(a.Discounts, b.Discounts) &&
		emptyOrEqual(a.OtherPayments, b.OtherPayments) &&
		emptyOrEqual(a.AvailableBenefits, b.AvailableBenefits)
}

func emptyOrEqual[T any](a, b []T) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// add merges the change into an identical line item or appends a new one.
func (s *Snapshot) add(change ItemChange) UpdateAction {
	for i := range s.LineItems {
		item := &s.LineItems[i]
		if item.SKU == change.SKU &&
			item.Custom.ProductType == change.ProductType &&
			item.Custom.ProductGroup == change.ProductGroup &&
			item.BenefitGroup() == change.BenefitGroup() {
			item.Quantity += change.Quantity
			mergeVerifyValues(item, change.CampaignVerifyValues)
			return ChangeQuantity(item.ID, item.Quantity)
		}
	}

	item := LineItem{
		ID:        pendingLineItemID(change, len(s.LineItems)),
		ProductID: change.ProductID,
		VariantID: change.VariantID,
		SKU:       change.SKU,
		Quantity:  change.Quantity,
		Custom: LineItemCustom{
			ProductType:   change.ProductType,
			ProductGroup:  change.ProductGroup,
			AddOnGroup:    change.AddOnGroup,
			FreeGiftGroup: change.FreeGiftGroup,
			Selected:      true,
		},
	}
	mergeVerifyValues(&item, change.CampaignVerifyValues)
	if change.CampaignCode != "" {
		item.Custom.Privilege = &Privilege{CampaignCode: change.CampaignCode}
	}
	s.LineItems = append(s.LineItems, item)
	return AddLineItem(item)
}

// remove drops the line item at idx; a main product takes its dependents with it.
func (s *Snapshot) remove(idx int) []UpdateAction {
	target := s.LineItems[idx]
	kept := s.LineItems[:0:0]
	var actions []UpdateAction
	for i, item := range s.LineItems {
		drop := i == idx
		if target.IsMainProduct() && !item.IsMainProduct() && item.Custom.ProductGroup == target.Custom.ProductGroup {
			drop = true
		}
		if drop {
			actions = append(actions, RemoveLineItem(item.ID))
			continue
		}
		kept = append(kept, item)
	}
	s.LineItems = kept
	return actions
}

func (s Snapshot) find(change ItemChange) int {
	for i, item := range s.LineItems {
		if change.LineItemID != "" {
			if item.ID == change.LineItemID {
				return i
			}
			continue
		}
		if item.SKU == change.SKU &&
			item.Custom.ProductGroup == change.ProductGroup &&
			(change.ProductType == "" || item.Custom.ProductType == change.ProductType) {
			return i
		}
	}
	return -1
}

func mergeVerifyValues(item *LineItem, values map[string]string) {
	if len(values) == 0 {
		return
	}
	if item.Custom.CampaignVerifyValues == nil {
		item.Custom.CampaignVerifyValues = make(map[string]string, len(values))
	}
	for k, v := range values {
		item.Custom.CampaignVerifyValues[k] = v
	}
}

func pendingLineItemID(change ItemChange, position int) string {
	return fmt.Sprintf("pending:%d:%s:%d", position, change.SKU, change.ProductGroup)
}

func isPendingLineItemID(id string) bool {
	return strings.HasPrefix(id, "pending:")
}

func lineItemNotFound(change ItemChange) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found").
		WithDetails(map[string]any{"lineItemId": change.LineItemID, "sku": change.SKU})
}
