// Package money converts promotion-engine amounts into the minor units persisted on carts.
package money

import "github.com/shopspring/decimal"

// Stang is an amount in minor currency units (1 baht = 100 stang).
type Stang = int64

var stangPerBaht = decimal.NewFromInt(100)

// BahtToStang converts a major-unit amount to minor units, rounding half away from zero.
func BahtToStang(baht decimal.Decimal) Stang {
	return baht.Mul(stangPerBaht).Round(0).IntPart()
}

// BahtPtrToStang converts an optional amount; nil stays nil.
func BahtPtrToStang(baht *decimal.Decimal) *Stang {
	if baht == nil {
		return nil
	}
	value := BahtToStang(*baht)
	return &value
}

// StangToBaht renders minor units back into a decimal baht value.
func StangToBaht(stang Stang) decimal.Decimal {
	return decimal.New(stang, -2)
}
