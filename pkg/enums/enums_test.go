package enums

import "testing"

func TestParseProductType(t *testing.T) {
	t.Parallel()

	got, err := ParseProductType("free_gift")
	if err != nil || got != ProductTypeFreeGift {
		t.Fatalf("unexpected parse result %q err=%v", got, err)
	}
	if _, err := ParseProductType("gift"); err == nil {
		t.Fatal("expected error for unknown product type")
	}
	if ProductTypeMainProduct.IsDependent() {
		t.Fatal("main product is not dependent")
	}
	if !ProductTypeInsurance.IsDependent() {
		t.Fatal("insurance should be dependent")
	}
}

func TestParseCartAction(t *testing.T) {
	t.Parallel()

	if _, err := ParseCartAction("add_product"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CartAction("merge").IsValid() {
		t.Fatal("merge is not a cart action")
	}
}

func TestPromotionQualifierVariants(t *testing.T) {
	t.Parallel()

	cases := map[PromotionQualifier]AddOnVariant{
		PromotionQualifierNone:            AddOnVariantRedeem,
		PromotionQualifierDiscountBaht:    AddOnVariantDiscountBaht,
		PromotionQualifierDiscountPercent: AddOnVariantDiscountPercent,
		PromotionQualifierSubsidy:         AddOnVariantSubsidy,
	}
	for qualifier, want := range cases {
		if got := qualifier.AddOnVariant(); got != want {
			t.Fatalf("qualifier %d: expected %s, got %s", qualifier, want, got)
		}
	}
}
