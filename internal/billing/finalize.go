package billing

import "math"

// Finalize sums the base fee with both months' net fees, applies VAT
// and truncates down to the nearest CurrencyStep. Truncation never
// rounds up; that matches the billing authority's published rule.
func Finalize(baseFee, prevNetFee, currNetFee float64) int64 {
	total := (baseFee + prevNetFee + currNetFee) * VATRate
	return int64(math.Floor(total/CurrencyStep)) * CurrencyStep
}

// FinalizeBaseOnly is the degenerate-period bill: base fee plus VAT,
// truncated the same way. Used when the period has no usage days yet.
func FinalizeBaseOnly(baseFee float64) int64 {
	return Finalize(baseFee, 0, 0)
}
