package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Prepaid card processors take a cut, so card deposits credit less than
// their face value. Brands not listed convert at face value.
var cardDiscountPercent = map[string]int64{
	"VIETTEL":   20,
	"MOBIFONE":  20,
	"VINAPHONE": 15,
	"ZING":      15,
	"GARENA":    15,
	"GATE":      15,
}

// DiscountPercent returns the card-brand discount, matching brands
// case-insensitively.
func DiscountPercent(cardType string) int64 {
	return cardDiscountPercent[strings.ToUpper(strings.TrimSpace(cardType))]
}

// EffectiveRate substitutes DefaultRate while the stored rate is unset.
func EffectiveRate(rate int64) int64 {
	if rate <= 0 {
		return DefaultRate
	}
	return rate
}

// ComputeCredit converts a raw money amount into credited robux at the
// given rate. Card orders are discounted by brand before conversion. Both
// divisions truncate toward zero, so the result is reproducible
// bit-for-bit for the same inputs.
func ComputeCredit(amount int64, orderType, cardType string, rate int64) int64 {
	if amount <= 0 {
		return 0
	}
	value := decimal.NewFromInt(amount)
	if orderType == OrderTypeCard {
		discount := DiscountPercent(cardType)
		value = value.
			Mul(decimal.NewFromInt(100 - discount)).
			Div(decimal.NewFromInt(100)).
			Floor()
	}
	return value.
		Mul(decimal.NewFromInt(EffectiveRate(rate))).
		Div(decimal.NewFromInt(RateUnit)).
		Floor().
		IntPart()
}
