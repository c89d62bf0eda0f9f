package money

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestBahtToStang(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Stang
	}{
		{in: "790.00", want: 79000},
		{in: "790", want: 79000},
		{in: "0.015", want: 2},
		{in: "19.994", want: 1999},
		{in: "0", want: 0},
		{in: "1234.56", want: 123456},
	}
	for _, tt := range tests {
		got := BahtToStang(decimal.RequireFromString(tt.in))
		if got != tt.want {
			t.Fatalf("BahtToStang(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBahtPtrToStang(t *testing.T) {
	t.Parallel()

	if BahtPtrToStang(nil) != nil {
		t.Fatal("nil input should stay nil")
	}
	amount := decimal.RequireFromString("12.5")
	got := BahtPtrToStang(&amount)
	if got == nil || *got != 1250 {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestBahtToStangMatchesRoundedScale(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("BahtToStang(x) == round(x*100)", prop.ForAll(
		func(cents int64, fraction int64) bool {
			// x carries up to three decimals so rounding is exercised.
			x := decimal.New(cents*10+fraction, -3)
			want := int64(math.Round(float64(cents*10+fraction) / 10))
			return BahtToStang(x) == want
		},
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(0, 9),
	))

	properties.Property("StangToBaht round-trips", prop.ForAll(
		func(stang int64) bool {
			return BahtToStang(StangToBaht(stang)) == stang
		},
		gen.Int64Range(0, 1_000_000_000),
	))

	properties.TestingRun(t)
}
