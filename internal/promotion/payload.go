package promotion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Structured payload keys decoded by the converter.
const (
	PayloadCampaign                          = "campaign"
	PayloadDiscount                          = "discount"
	PayloadOtherPayment                      = "other_payment"
	PayloadPromotionSet                      = "promotion_set"
	PayloadPromotionProduct                  = "promotion_product"
	PayloadPromotionProductOtherPayment      = "promotion_product_other_payment"
	PayloadPromotionProductGroup             = "promotion_product_group"
	PayloadPromotionProductGroupOtherPayment = "promotion_product_group_other_payment"
	PayloadPromotionDetailPrefix             = "product_promotion_detail"
)

// Campaign is the campaign identity carried by an effect.
type Campaign struct {
	Code       string     `json:"campaign_code"`
	Name       string     `json:"campaign_name"`
	Type       string     `json:"campaign_type,omitempty"`
	VerifyKeys StringList `json:"campaign_verify_keys,omitempty"`
}

// Discount is the campaign-level discount.
type Discount struct {
	Code            string  `json:"discount_code"`
	Name            string  `json:"discount_name,omitempty"`
	SpecialPrice    Amount  `json:"special_price"`
	DiscountBaht    Amount  `json:"discount_baht"`
	DiscountPercent FlexInt `json:"discount_percent"`
}

// OtherPayment is a settlement line; GroupCode or SKU tie it to a product group or product.
type OtherPayment struct {
	Code      string `json:"other_payment_code"`
	Name      string `json:"other_payment_name,omitempty"`
	Amount    Amount `json:"other_payment_amount"`
	GroupCode string `json:"group_code,omitempty"`
	SKU       string `json:"sku,omitempty"`
}

// PromotionSet groups product rules under one proposition.
type PromotionSet struct {
	Code        string  `json:"promotion_set_code"`
	Proposition string  `json:"proposition,omitempty"`
	MaxReceive  FlexInt `json:"max_receive"`
	MaxItem     FlexInt `json:"max_item"`
}

// PromotionProduct prices one SKU of the promotion set.
type PromotionProduct struct {
	SKU             string         `json:"sku"`
	SpecialPrice    Amount         `json:"special_price"`
	DiscountBaht    Amount         `json:"discount_baht"`
	DiscountPercent FlexInt        `json:"discount_percent"`
	OtherPayments   []OtherPayment `json:"-"`
}

// PromotionProductGroup prices a set of SKUs sharing a group code.
type PromotionProductGroup struct {
	GroupCode       string         `json:"group_code"`
	SKUs            StringList     `json:"skus"`
	SpecialPrice    Amount         `json:"special_price"`
	DiscountBaht    Amount         `json:"discount_baht"`
	DiscountPercent FlexInt        `json:"discount_percent"`
	OtherPayments   []OtherPayment `json:"-"`
}

// PromotionDetail declares a free-gift or add-on slot.
type PromotionDetail struct {
	PromotionType   FlexInt    `json:"promotion_type"`
	Qualifier       FlexInt    `json:"promotion_qualifier"`
	GroupCode       string     `json:"group_code"`
	SKUs            StringList `json:"skus"`
	MaxItem         FlexInt    `json:"max_item"`
	SpecialPrice    Amount     `json:"special_price"`
	DiscountBaht    Amount     `json:"discount_baht"`
	DiscountPercent FlexInt    `json:"discount_percent"`
	Subsidy         Amount     `json:"subsidy"`
}

// Amount is an optional baht amount. null, "" and "null" decode as absent.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// NewAmount returns a present amount.
func NewAmount(value decimal.Decimal) Amount {
	return Amount{Value: value, Valid: true}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	if IsPlaceholder(raw) {
		*a = Amount{}
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %q", raw)
	}
	*a = NewAmount(value)
	return nil
}

// FlexInt accepts a JSON number or a numeric string. Empty strings and null decode to zero.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" || raw == "null" {
			*f = 0
			return nil
		}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid integer %q", raw)
	}
	if !value.IsInteger() {
		return fmt.Errorf("invalid integer %q", raw)
	}
	*f = FlexInt(value.IntPart())
	return nil
}

func (f FlexInt) Int() int { return int(f) }

// StringList accepts a JSON array, a JSON-encoded array inside a string or a comma separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*l = nil
		return nil
	}
	if len(raw) > 0 && raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			value, err := scalarString(item)
			if err != nil {
				return err
			}
			if value != "" {
				out = append(out, value)
			}
		}
		*l = out
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if IsPlaceholder(s) {
		*l = nil
		return nil
	}
	if strings.HasPrefix(s, "[") {
		return l.UnmarshalJSON([]byte(s))
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

func scalarString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", string(raw))
	}
	return n.String(), nil
}

// decodeList decodes a payload value holding an array, a single object or either of those
// encoded once more as a JSON string. Placeholders decode to nil.
func decodeList[T any](value string) ([]T, error) {
	raw, err := unwrapPayload(value)
	if err != nil || raw == nil {
		return nil, err
	}
	switch raw[0] {
	case '[':
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	case '{':
		var one T
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		return []T{one}, nil
	default:
		return nil, fmt.Errorf("expected object or array, got %q", truncate(string(raw)))
	}
}

// decodeOne decodes a payload value holding one object. A single-element array is accepted.
func decodeOne[T any](value string) (*T, error) {
	items, err := decodeList[T](value)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	if len(items) > 1 {
		return nil, fmt.Errorf("expected one object, got %d", len(items))
	}
	return &items[0], nil
}

func unwrapPayload(value string) ([]byte, error) {
	for depth := 0; depth < 3; depth++ {
		trimmed := strings.TrimSpace(value)
		if IsPlaceholder(trimmed) {
			return nil, nil
		}
		if !strings.HasPrefix(trimmed, `"`) {
			return []byte(trimmed), nil
		}
		if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("payload nested too deeply")
}

func truncate(s string) string {
	if len(s) <= 32 {
		return s
	}
	return s[:32] + "..."
}
