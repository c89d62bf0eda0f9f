package promotion

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/promocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
	"go.uber.org/multierr"
)

// BoundItem is the cart item an effect fired on.
type BoundItem struct {
	Position     int
	SKU          string
	ProductType  enums.ProductType
	ProductGroup int
}

// ConvertedEffect is an effect with every structured payload field decoded. Amounts are still baht.
type ConvertedEffect struct {
	Key           EffectKey
	Coupon        bool
	Item          BoundItem
	SubPositions  []int
	Campaign      *Campaign
	Discount      *Discount
	OtherPayments []OtherPayment
	PromotionSet  *PromotionSet
	Products      []PromotionProduct
	ProductGroups []PromotionProductGroup
	Details       []PromotionDetail
}

// CampaignCode returns the campaign code, empty when the effect only names a promotion set.
func (c ConvertedEffect) CampaignCode() string {
	if c.Campaign == nil {
		return ""
	}
	return c.Campaign.Code
}

// Converter decodes filtered effects into ConvertedEffect values.
type Converter struct {
	logg *logger.Logger
}

func NewConverter(logg *logger.Logger) *Converter {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Converter{logg: logg}
}

// ConvertAll converts every effect, skipping those whose cart item cannot be resolved.
// The first malformed effect aborts the conversion.
func (c *Converter) ConvertAll(ctx context.Context, effects []Effect, items []CartItem) ([]ConvertedEffect, error) {
	out := make([]ConvertedEffect, 0, len(effects))
	for _, effect := range effects {
		converted, err := c.Convert(ctx, effect, items)
		if err != nil {
			return nil, err
		}
		if converted != nil {
			out = append(out, *converted)
		}
	}
	return out, nil
}

// Convert decodes one effect against the engine cart items. It returns nil without error when
// cartItemPosition does not resolve. Every malformed field is reported in one error.
func (c *Converter) Convert(ctx context.Context, effect Effect, items []CartItem) (*ConvertedEffect, error) {
	position := effect.Props.CartItemPosition
	if position < 0 || position >= len(items) {
		c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
			"effect":   effect.Key().String(),
			"position": position,
			"items":    len(items),
		}), "effect cart item position unresolved; skipping")
		return nil, nil
	}
	item := items[position]
	payload := effect.Props.Payload

	converted := &ConvertedEffect{
		Key:    effect.Key(),
		Coupon: effect.IsCoupon(),
		Item: BoundItem{
			Position:     position,
			SKU:          item.SKU,
			ProductType:  item.Attributes.ProductType,
			ProductGroup: item.Attributes.ProductGroup,
		},
		SubPositions: effect.SubPositions(),
	}

	var errs error
	var malformed []string
	record := func(key string, err error) {
		if err != nil {
			malformed = append(malformed, key)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	var err error
	converted.Campaign, err = decodeOne[Campaign](payload[PayloadCampaign])
	record(PayloadCampaign, err)
	converted.Discount, err = decodeOne[Discount](payload[PayloadDiscount])
	record(PayloadDiscount, err)
	converted.OtherPayments, err = decodeList[OtherPayment](payload[PayloadOtherPayment])
	record(PayloadOtherPayment, err)
	converted.PromotionSet, err = decodeOne[PromotionSet](payload[PayloadPromotionSet])
	record(PayloadPromotionSet, err)
	converted.Products, err = decodeList[PromotionProduct](payload[PayloadPromotionProduct])
	record(PayloadPromotionProduct, err)
	productPayments, err := decodeList[OtherPayment](payload[PayloadPromotionProductOtherPayment])
	record(PayloadPromotionProductOtherPayment, err)
	converted.ProductGroups, err = decodeList[PromotionProductGroup](payload[PayloadPromotionProductGroup])
	record(PayloadPromotionProductGroup, err)
	groupPayments, err := decodeList[OtherPayment](payload[PayloadPromotionProductGroupOtherPayment])
	record(PayloadPromotionProductGroupOtherPayment, err)

	for _, key := range detailKeys(payload) {
		details, err := decodeList[PromotionDetail](payload[key])
		record(key, err)
		converted.Details = append(converted.Details, details...)
	}

	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedPayload, errs, "malformed effect payload").
			WithDetails(map[string]any{
				"effect": converted.Key.String(),
				"fields": malformed,
			})
	}

	applyFlatCodes(converted, payload)
	linkOtherPayments(converted, productPayments, groupPayments)
	return converted, nil
}

func detailKeys(payload map[string]string) []string {
	var keys []string
	for key := range payload {
		if strings.HasPrefix(key, PayloadPromotionDetailPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// applyFlatCodes fills campaign and promotion set codes from the top-level payload keys
// when the structured fields omit them.
func applyFlatCodes(c *ConvertedEffect, payload map[string]string) {
	if code := strings.TrimSpace(payload[PayloadCampaignCode]); !IsPlaceholder(code) {
		if c.Campaign == nil {
			c.Campaign = &Campaign{}
		}
		if IsPlaceholder(c.Campaign.Code) {
			c.Campaign.Code = code
		}
	}
	if code := strings.TrimSpace(payload[PayloadPromotionSetCode]); !IsPlaceholder(code) {
		if c.PromotionSet == nil {
			c.PromotionSet = &PromotionSet{}
		}
		if IsPlaceholder(c.PromotionSet.Code) {
			c.PromotionSet.Code = code
		}
	}
	if c.Campaign != nil && IsPlaceholder(c.Campaign.Code) {
		c.Campaign.Code = ""
	}
}

func linkOtherPayments(c *ConvertedEffect, productPayments, groupPayments []OtherPayment) {
	bySKU := make(map[string][]OtherPayment)
	for _, payment := range productPayments {
		bySKU[payment.SKU] = append(bySKU[payment.SKU], payment)
	}
	for i := range c.Products {
		c.Products[i].OtherPayments = bySKU[c.Products[i].SKU]
	}

	byGroup := make(map[string][]OtherPayment)
	for _, payment := range groupPayments {
		byGroup[payment.GroupCode] = append(byGroup[payment.GroupCode], payment)
	}
	for i := range c.ProductGroups {
		c.ProductGroups[i].OtherPayments = byGroup[c.ProductGroups[i].GroupCode]
	}
}
