package promotion

import (
	"context"
	"strconv"
	"testing"

	"github.com/angelmondragon/promocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func engineItems() []CartItem {
	return []CartItem{
		{SKU: "M1", Quantity: 1, Attributes: CartItemAttributes{ProductType: enums.ProductTypeMainProduct, ProductGroup: 1}},
		{SKU: "M2", Quantity: 1, Attributes: CartItemAttributes{ProductType: enums.ProductTypeMainProduct, ProductGroup: 2}},
	}
}

func bundleEffect(payload map[string]string) Effect {
	return Effect{
		CampaignID: 7,
		RulesetID:  3,
		EffectType: EffectTypeCustom,
		Props: EffectProps{
			Name:                 EffectNameBundle,
			CartItemPosition:     0,
			CartItemSubPositions: []int{0},
			Payload:              payload,
		},
	}
}

func TestConvertDecodesDoubleEncodedPayload(t *testing.T) {
	t.Parallel()

	payload := map[string]string{
		PayloadCampaignCode: "CAMP-A",
		PayloadCampaign:     `{"campaign_code":"CAMP-A","campaign_name":"Summer","campaign_verify_keys":"id_card,msisdn"}`,
		PayloadPromotionSet: strconv.Quote(`{"promotion_set_code":"SET-1","proposition":"P1","max_receive":"3"}`),
		PayloadDiscount:     `{"discount_code":"D1","discount_baht":"100.50"}`,
		PayloadOtherPayment: `{"other_payment_code":"OP1","other_payment_amount":200}`,
		"unrelated":         "{not json",
	}
	payload[PayloadPromotionProduct] = `[{"sku":"M1","special_price":19900},{"sku":"M9","discount_baht":"10"}]`
	payload[PayloadPromotionProductOtherPayment] = `[{"sku":"M1","other_payment_code":"POP","other_payment_amount":"50"}]`
	payload[PayloadPromotionProductGroup] = `[{"group_code":"PG1","skus":["M1"],"discount_percent":"10"}]`
	payload[PayloadPromotionProductGroupOtherPayment] = `[{"group_code":"PG1","other_payment_code":"GOP","other_payment_amount":"25"},` +
		`{"group_code":"PG9","other_payment_code":"X","other_payment_amount":"1"}]`
	payload[PayloadPromotionDetailPrefix+"_2"] = `[{"promotion_type":2,"promotion_qualifier":3,"group_code":"ao1","skus":["A1"],"discount_baht":"50"}]`
	payload[PayloadPromotionDetailPrefix+"_1"] = `[{"promotion_type":"1","group_code":"fg1","skus":"[\"G1\",\"G2\"]","max_item":2,"special_price":"790.00"}]`

	converted, err := NewConverter(nil).Convert(context.Background(), bundleEffect(payload), engineItems())
	require.NoError(t, err)
	require.NotNil(t, converted)

	require.Equal(t, "M1", converted.Item.SKU)
	require.Equal(t, 1, converted.Item.ProductGroup)
	require.Equal(t, "CAMP-A", converted.CampaignCode())
	require.Equal(t, "Summer", converted.Campaign.Name)
	require.Equal(t, StringList{"id_card", "msisdn"}, converted.Campaign.VerifyKeys)
	require.Equal(t, "SET-1", converted.PromotionSet.Code)
	require.Equal(t, 3, converted.PromotionSet.MaxReceive.Int())
	require.True(t, converted.Discount.DiscountBaht.Valid)
	require.Equal(t, "100.5", converted.Discount.DiscountBaht.Value.String())
	require.Len(t, converted.OtherPayments, 1)

	require.Len(t, converted.Products, 2)
	require.Len(t, converted.Products[0].OtherPayments, 1)
	require.Empty(t, converted.Products[1].OtherPayments)
	require.Len(t, converted.ProductGroups, 1)
	require.Equal(t, 10, converted.ProductGroups[0].DiscountPercent.Int())
	require.Len(t, converted.ProductGroups[0].OtherPayments, 1)
	require.Equal(t, "GOP", converted.ProductGroups[0].OtherPayments[0].Code)

	require.Len(t, converted.Details, 2)
	require.Equal(t, "fg1", converted.Details[0].GroupCode, "details follow key order")
	require.Equal(t, StringList{"G1", "G2"}, converted.Details[0].SKUs)
	require.Equal(t, "790", converted.Details[0].SpecialPrice.Value.String())
	require.Equal(t, 3, converted.Details[1].Qualifier.Int())
}

func TestConvertAbsentFieldsAreNotErrors(t *testing.T) {
	t.Parallel()

	converted, err := NewConverter(nil).Convert(context.Background(), bundleEffect(map[string]string{
		PayloadPromotionSetCode: "SET-2",
		PayloadCampaign:         "null",
		PayloadDiscount:         "",
	}), engineItems())
	require.NoError(t, err)
	require.Nil(t, converted.Campaign)
	require.Nil(t, converted.Discount)
	require.Empty(t, converted.Details)
	require.Equal(t, "SET-2", converted.PromotionSet.Code)
	require.Equal(t, "", converted.CampaignCode())
}

func TestConvertReportsEveryMalformedField(t *testing.T) {
	t.Parallel()

	_, err := NewConverter(nil).Convert(context.Background(), bundleEffect(map[string]string{
		PayloadCampaignCode:                 "CAMP-A",
		PayloadCampaign:                     `{"campaign_code":`,
		PayloadPromotionProduct:             `[{"sku":"M1","special_price":"abc"}]`,
		PayloadPromotionDetailPrefix + "_1": `42`,
	}), engineItems())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeMalformedPayload, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	require.ElementsMatch(t, []string{PayloadCampaign, PayloadPromotionProduct, PayloadPromotionDetailPrefix + "_1"}, details["fields"])
}

func TestConvertSkipsUnresolvablePosition(t *testing.T) {
	t.Parallel()

	effect := bundleEffect(map[string]string{PayloadCampaignCode: "CAMP-A"})
	effect.Props.CartItemPosition = 9

	converted, err := NewConverter(nil).Convert(context.Background(), effect, engineItems())
	require.NoError(t, err)
	require.Nil(t, converted)

	all, err := NewConverter(nil).ConvertAll(context.Background(), []Effect{effect, bundleEffect(map[string]string{PayloadCampaignCode: "CAMP-A"})}, engineItems())
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestConvertCouponEffect(t *testing.T) {
	t.Parallel()

	coupon := int64(55)
	effect := bundleEffect(map[string]string{PayloadCampaignCode: "CAMP-A"})
	effect.TriggeredByCoupon = &coupon

	converted, err := NewConverter(nil).Convert(context.Background(), effect, engineItems())
	require.NoError(t, err)
	require.True(t, converted.Coupon)
}
