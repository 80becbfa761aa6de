package billing

import "time"

// IsBillingMonth reports whether today falls in an invoice month for
// the given cycle. Bimonthly cycles bill on odd or even months; each
// quarterly phase bills every third month with a different offset.
func IsBillingMonth(today time.Time, cycle ReadingCycle) bool {
	m := int(today.Month())
	switch cycle {
	case CycleOdd:
		return m%2 == 1
	case CycleEven:
		return m%2 == 0
	case CycleQuarterly1:
		return m%3 == 1
	case CycleQuarterly2:
		return m%3 == 2
	case CycleQuarterly3:
		return m%3 == 0
	}
	return false
}

// AggregatePeriodic combines the current period's value with the stored
// prior period values when today is a billing month; otherwise the
// current value passes through unchanged. The same function serves fee
// and usage totals. prePrevValue only contributes on quarterly cycles.
func AggregatePeriodic(currentValue, prevValue, prePrevValue float64, today time.Time, cycle ReadingCycle) float64 {
	if !IsBillingMonth(today, cycle) {
		return currentValue
	}
	if cycle.Quarterly() {
		return currentValue + prevValue + prePrevValue
	}
	return currentValue + prevValue
}
