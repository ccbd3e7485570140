package utils

import "math"

// MaxAmount is the largest value a decimal(10,2) money column holds.
const (
	MaxAmount      = 99999999.99
	MaxAmountCents = int64(9999999999)
)

// ToCents converts a decimal amount to integer cents, rounding half away from zero.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents back to a two-place decimal amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// RoundMoney normalizes an amount to two decimal places.
func RoundMoney(amount float64) float64 {
	return FromCents(ToCents(amount))
}

// LineTotal is price*quantity in cents.
func LineTotal(price float64, quantity int) int64 {
	return ToCents(price) * int64(quantity)
}
