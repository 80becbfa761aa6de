package billing

import "time"

// IsWinterMonth reports whether a month falls in the winter reduction
// season (December through March).
func IsWinterMonth(m time.Month) bool {
	switch m {
	case time.December, time.January, time.February, time.March:
		return true
	}
	return false
}

// ApplyReduction prorates the seasonal flat reduction over the given
// month's share of the period and caps it at the month's fee, so a
// reduction can zero a fee but never drive it negative. The month
// selects the winter or non-winter amount.
func ApplyReduction(periodFee float64, periodDays, totalDays int, month time.Month, winterFee, nonWinterFee float64) (applied, netFee float64) {
	if totalDays <= 0 {
		return 0, periodFee
	}
	fee := nonWinterFee
	if IsWinterMonth(month) {
		fee = winterFee
	}
	applied = fee * float64(periodDays) / float64(totalDays)
	if applied > periodFee {
		applied = periodFee
	}
	if applied < 0 {
		applied = 0
	}
	return applied, periodFee - applied
}
