package cartitems

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/promocart-backend/internal/benefits"
	"github.com/angelmondragon/promocart-backend/internal/cart"
	"github.com/angelmondragon/promocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
)

// campaignQuantityCeiling caps the main-product quantity bound to one campaign.
const campaignQuantityCeiling = 1

// Reason classifies a rejected cart change.
type Reason string

const (
	ReasonMultipleCampaigns Reason = "multiple_campaigns"
	ReasonMixedCampaign     Reason = "mixed_campaign"
	ReasonVerifyRequired    Reason = "campaign_verify_required"
	ReasonCampaignQuantity  Reason = "campaign_quantity"
	ReasonMaxReceive        Reason = "max_receive"
	ReasonMaxItem           Reason = "max_item"
	ReasonBenefitNotOffered Reason = "benefit_not_offered"
)

// Violation carries the structured data of a rejection.
type Violation struct {
	Reason        Reason            `json:"reason"`
	CampaignCodes []string          `json:"campaignCodes,omitempty"`
	ProductGroup  int               `json:"productGroup,omitempty"`
	BenefitType   enums.BenefitKind `json:"benefitType,omitempty"`
	Group         string            `json:"group,omitempty"`
	SKU           string            `json:"sku,omitempty"`
	Limit         int               `json:"limit,omitempty"`
	Requested     int               `json:"requested,omitempty"`
}

// Result is the outcome of validating a proposed cart change.
type Result struct {
	IsValid                 bool       `json:"isValid"`
	ErrorMessage            string     `json:"errorMessage,omitempty"`
	IsRequireCampaignVerify bool       `json:"isRequireCampaignVerify,omitempty"`
	CampaignVerifyKeys      []string   `json:"campaignVerifyKeys,omitempty"`
	Violation               *Violation `json:"violation,omitempty"`
}

// Reason returns the rejection reason, empty when valid.
func (r Result) Reason() Reason {
	if r.Violation == nil {
		return ""
	}
	return r.Violation.Reason
}

// Err maps the result onto the error taxonomy. A valid result yields nil.
func (r Result) Err() error {
	switch {
	case r.IsValid:
		return nil
	case r.IsRequireCampaignVerify:
		return pkgerrors.New(pkgerrors.CodeVerificationRequired, r.ErrorMessage).WithDetails(r)
	default:
		return pkgerrors.New(pkgerrors.CodeConstraintViolation, r.ErrorMessage).WithDetails(r)
	}
}

func valid() Result {
	return Result{IsValid: true}
}

func reject(v Violation, format string, args ...any) Result {
	return Result{ErrorMessage: fmt.Sprintf(format, args...), Violation: &v}
}

// ValidateChange checks the proposed cart, already carrying the changes, against
// the campaign and benefit ceilings of resolution. Checks run in a fixed order
// and the first failing one decides the result.
func ValidateChange(proposed cart.Snapshot, changes []cart.ItemChange, action enums.CartAction, resolution benefits.Resolution) Result {
	mains := proposed.MainProducts()

	if action == enums.CartActionAddProduct {
		if res := checkCampaignMix(mains); !res.IsValid {
			return res
		}
		if res := checkVerifyKeys(proposed, changes, resolution); !res.IsValid {
			return res
		}
	}

	if action == enums.CartActionRemoveProduct {
		return valid()
	}

	if res := checkCampaignQuantity(mains); !res.IsValid {
		return res
	}
	return checkBenefitCeilings(proposed, resolution.Benefits)
}

func checkCampaignMix(mains []cart.LineItem) Result {
	campaigns := make(map[string]struct{})
	withoutCampaign := 0
	for _, item := range mains {
		code := item.CampaignCode()
		if code == "" {
			withoutCampaign++
			continue
		}
		campaigns[code] = struct{}{}
	}

	codes := make([]string, 0, len(campaigns))
	for code := range campaigns {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if len(codes) > 1 {
		return reject(Violation{Reason: ReasonMultipleCampaigns, CampaignCodes: codes},
			"multiple campaigns in one cart are not supported: %s", strings.Join(codes, ", "))
	}
	if len(codes) == 1 && withoutCampaign > 0 {
		return reject(Violation{Reason: ReasonMixedCampaign, CampaignCodes: codes},
			"campaign %s cannot be combined with products outside the campaign", codes[0])
	}
	return valid()
}

func checkVerifyKeys(proposed cart.Snapshot, changes []cart.ItemChange, resolution benefits.Resolution) Result {
	for _, change := range changes {
		if change.ProductType != enums.ProductTypeMainProduct || change.CampaignCode == "" {
			continue
		}
		campaign, ok := resolution.Campaign(change.CampaignCode)
		if !ok || len(campaign.VerifyKeys) == 0 {
			continue
		}

		stored := storedVerifyValues(proposed, change)
		var missing []string
		for _, key := range campaign.VerifyKeys {
			if truthy(change.CampaignVerifyValues[key]) || truthy(stored[key]) {
				continue
			}
			missing = append(missing, key)
		}
		if len(missing) > 0 {
			return Result{
				ErrorMessage:            fmt.Sprintf("campaign %s requires verification: %s", campaign.Code, strings.Join(missing, ", ")),
				IsRequireCampaignVerify: true,
				CampaignVerifyKeys:      missing,
				Violation: &Violation{
					Reason:        ReasonVerifyRequired,
					CampaignCodes: []string{campaign.Code},
					SKU:           change.SKU,
					ProductGroup:  change.ProductGroup,
				},
			}
		}
	}
	return valid()
}

func storedVerifyValues(proposed cart.Snapshot, change cart.ItemChange) map[string]string {
	for _, item := range proposed.LineItems {
		if item.IsMainProduct() && item.SKU == change.SKU && item.Custom.ProductGroup == change.ProductGroup {
			return item.Custom.CampaignVerifyValues
		}
	}
	return nil
}

func truthy(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	switch strings.ToLower(value) {
	case "false", "0", "null":
		return false
	}
	return true
}

func checkCampaignQuantity(mains []cart.LineItem) Result {
	totals := make(map[string]int)
	var codes []string
	for _, item := range mains {
		code := item.CampaignCode()
		if code == "" {
			continue
		}
		if _, seen := totals[code]; !seen {
			codes = append(codes, code)
		}
		totals[code] += item.Quantity
	}
	for _, code := range codes {
		if totals[code] > campaignQuantityCeiling {
			return reject(Violation{
				Reason:        ReasonCampaignQuantity,
				CampaignCodes: []string{code},
				Limit:         campaignQuantityCeiling,
				Requested:     totals[code],
			}, "campaign %s allows %d main product, requested %d", code, campaignQuantityCeiling, totals[code])
		}
	}
	return valid()
}

type slotKey struct {
	kind         enums.BenefitKind
	productGroup int
	group        string
}

// checkBenefitCeilings walks the dependent lines in cart order, drawing their
// quantities from the max-receive budget of their product group and the
// max-item budget of their slot. A zero ceiling is unlimited.
func checkBenefitCeilings(proposed cart.Snapshot, set benefits.Set) Result {
	maxItem := make(map[slotKey]int)
	maxReceive := make(map[int]int)
	for _, slot := range set.Slots() {
		key := slotKey{kind: slot.Kind, productGroup: slot.ProductGroup, group: slot.Group}
		if _, ok := maxItem[key]; !ok {
			maxItem[key] = slot.MaxItem
		}
		if slot.MaxReceive > 0 && (maxReceive[slot.ProductGroup] == 0 || slot.MaxReceive < maxReceive[slot.ProductGroup]) {
			maxReceive[slot.ProductGroup] = slot.MaxReceive
		}
	}

	remainingItem := make(map[slotKey]int, len(maxItem))
	for key, limit := range maxItem {
		remainingItem[key] = limit
	}
	remainingReceive := make(map[int]int, len(maxReceive))
	for group, limit := range maxReceive {
		remainingReceive[group] = limit
	}

	for _, item := range proposed.LineItems {
		kind, ok := dependentKind(item.Custom.ProductType)
		if !ok {
			continue
		}
		key := slotKey{kind: kind, productGroup: item.Custom.ProductGroup, group: item.BenefitGroup()}
		limit, offered := maxItem[key]
		if !offered {
			return reject(Violation{
				Reason:       ReasonBenefitNotOffered,
				ProductGroup: key.productGroup,
				BenefitType:  kind,
				Group:        key.group,
				SKU:          item.SKU,
			}, "%s group %s is not offered for product group %d", kind, key.group, key.productGroup)
		}

		if receive := maxReceive[key.productGroup]; receive > 0 {
			remainingReceive[key.productGroup] -= item.Quantity
			if remainingReceive[key.productGroup] < 0 {
				return reject(Violation{
					Reason:       ReasonMaxReceive,
					ProductGroup: key.productGroup,
					BenefitType:  kind,
					Group:        key.group,
					SKU:          item.SKU,
					Limit:        receive,
					Requested:    receive - remainingReceive[key.productGroup],
				}, "product group %d can receive at most %d items, %s group %s exceeds it", key.productGroup, receive, kind, key.group)
			}
		}

		if limit > 0 {
			remainingItem[key] -= item.Quantity
			if remainingItem[key] < 0 {
				return reject(Violation{
					Reason:       ReasonMaxItem,
					ProductGroup: key.productGroup,
					BenefitType:  kind,
					Group:        key.group,
					SKU:          item.SKU,
					Limit:        limit,
					Requested:    limit - remainingItem[key],
				}, "%s group %s allows at most %d items", kind, key.group, limit)
			}
		}
	}
	return valid()
}

func dependentKind(productType enums.ProductType) (enums.BenefitKind, bool) {
	switch productType {
	case enums.ProductTypeFreeGift:
		return enums.BenefitKindFreeGift, true
	case enums.ProductTypeAddOn:
		return enums.BenefitKindAddOn, true
	default:
		return "", false
	}
}
