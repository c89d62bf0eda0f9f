package promotion

import (
	"fmt"
	"sort"
	"strings"
)

// Effect names and types emitted by the promotion engine for bundle benefits.
const (
	EffectTypeCustom        = "customEffect"
	EffectNameBundle        = "bundle"
	EffectNameBundleCoupon  = "bundle_coupon"
	PayloadCampaignCode     = "campaign_code"
	PayloadPromotionSetCode = "promotion_set_code"
)

// Effect is one rule firing reported by the promotion engine. A grouped effect carries every
// sub-position of its cart item in CartItemSubPositions.
type Effect struct {
	CampaignID        int64       `json:"campaignId"`
	RulesetID         int64       `json:"rulesetId"`
	RuleIndex         int         `json:"ruleIndex"`
	EffectType        string      `json:"effectType"`
	TriggeredByCoupon *int64      `json:"triggeredByCoupon,omitempty"`
	Props             EffectProps `json:"props"`
}

type EffectProps struct {
	Name                 string            `json:"name"`
	CartItemPosition     int               `json:"cartItemPosition"`
	CartItemSubPosition  *int              `json:"cartItemSubPosition,omitempty"`
	CartItemSubPositions []int             `json:"cartItemSubPositions,omitempty"`
	Payload              map[string]string `json:"payload"`
}

// EffectKey identifies one logical rule firing on one cart item.
type EffectKey struct {
	CampaignID       int64
	RulesetID        int64
	RuleIndex        int
	Name             string
	CartItemPosition int
}

func (k EffectKey) String() string {
	return fmt.Sprintf("%d/%d/%d/%s/%d", k.CampaignID, k.RulesetID, k.RuleIndex, k.Name, k.CartItemPosition)
}

func (k EffectKey) less(other EffectKey) bool {
	if k.CampaignID != other.CampaignID {
		return k.CampaignID < other.CampaignID
	}
	if k.RulesetID != other.RulesetID {
		return k.RulesetID < other.RulesetID
	}
	if k.RuleIndex != other.RuleIndex {
		return k.RuleIndex < other.RuleIndex
	}
	if k.Name != other.Name {
		return k.Name < other.Name
	}
	return k.CartItemPosition < other.CartItemPosition
}

func (e Effect) Key() EffectKey {
	return EffectKey{
		CampaignID:       e.CampaignID,
		RulesetID:        e.RulesetID,
		RuleIndex:        e.RuleIndex,
		Name:             e.Props.Name,
		CartItemPosition: e.Props.CartItemPosition,
	}
}

// SubPositions returns the sorted, de-duplicated sub-positions the effect covers.
func (e Effect) SubPositions() []int {
	positions := append([]int(nil), e.Props.CartItemSubPositions...)
	if e.Props.CartItemSubPosition != nil {
		positions = append(positions, *e.Props.CartItemSubPosition)
	}
	return sortedSet(positions)
}

// IsCoupon reports whether a coupon triggered the effect.
func (e Effect) IsCoupon() bool {
	return e.TriggeredByCoupon != nil || e.Props.Name == EffectNameBundleCoupon
}

func (e Effect) payloadValue(key string) string {
	if e.Props.Payload == nil {
		return ""
	}
	return e.Props.Payload[key]
}

// IsPlaceholder reports whether a payload value carries no data.
func IsPlaceholder(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || trimmed == "null" || trimmed == `"null"` || trimmed == `""`
}

func sortedSet(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	sort.Ints(values)
	out := values[:1]
	for _, v := range values[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
