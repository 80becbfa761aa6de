package billing

import "time"

// VATRate is the fixed value-added tax multiplier applied to every bill.
// It is a statutory constant, not a configurable rate.
const VATRate = 1.1

// CurrencyStep is the truncation unit for a finalized bill. The billing
// authority publishes totals truncated down to the nearest 10 KRW.
const CurrencyStep = 10

// ReadingCycle identifies how often an installation is actually billed.
// Households on a bimonthly or quarterly contract accumulate one or two
// period bills before a combined invoice is issued.
type ReadingCycle string

const (
	CycleDisabled   ReadingCycle = "disabled"
	CycleOdd        ReadingCycle = "odd"
	CycleEven       ReadingCycle = "even"
	CycleQuarterly1 ReadingCycle = "quarterly_1"
	CycleQuarterly2 ReadingCycle = "quarterly_2"
	CycleQuarterly3 ReadingCycle = "quarterly_3"
)

// Quarterly reports whether the cycle aggregates three periods per invoice.
func (c ReadingCycle) Quarterly() bool {
	switch c {
	case CycleQuarterly1, CycleQuarterly2, CycleQuarterly3:
		return true
	}
	return false
}

// Valid reports whether c is one of the known cycle values.
func (c ReadingCycle) Valid() bool {
	switch c {
	case CycleDisabled, CycleOdd, CycleEven, CycleQuarterly1, CycleQuarterly2, CycleQuarterly3:
		return true
	}
	return false
}

// UsageType selects which tariff categories apply to an installation.
type UsageType string

const (
	// UsageCombined bills energy under the cooking rate up to the
	// cooking/heating boundary and under the heating rate above it.
	UsageCombined UsageType = "combined"
	// UsageCookingOnly bills all energy at the cooking rate.
	UsageCookingOnly UsageType = "cooking_only"
	// UsageHeatingOnly bills all energy at the heating rate.
	UsageHeatingOnly UsageType = "heating_only"
)

// Valid reports whether u is one of the known usage types.
func (u UsageType) Valid() bool {
	switch u {
	case UsageCombined, UsageCookingOnly, UsageHeatingOnly:
		return true
	}
	return false
}

// TariffSnapshot carries the rate inputs active for one calculation.
// Heat values convert volume to energy (MJ per m³) and prices convert
// energy to currency (KRW per MJ); tariffs are published per calendar
// month, which is why previous and current month values travel in pairs.
type TariffSnapshot struct {
	BaseFee float64 `json:"base_fee"`

	PrevHeat float64 `json:"prev_heat"`
	CurrHeat float64 `json:"curr_heat"`

	PrevPriceCooking float64 `json:"prev_price_cooking"`
	PrevPriceHeating float64 `json:"prev_price_heating"`
	CurrPriceCooking float64 `json:"curr_price_cooking"`
	CurrPriceHeating float64 `json:"curr_price_heating"`

	// CookingHeatingBoundary is the MJ threshold below which combined
	// usage is billed at the cooking rate. Zero disables the split.
	CookingHeatingBoundary float64 `json:"cooking_heating_boundary"`

	WinterReductionFee    float64 `json:"winter_reduction_fee"`
	NonWinterReductionFee float64 `json:"non_winter_reduction_fee"`
}

// PeriodBreakdown is the per-calendar-month share of a bill.
type PeriodBreakdown struct {
	Days       int     `json:"days"`
	EnergyMJ   float64 `json:"energy_mj"`
	CookingMJ  float64 `json:"cooking_mj"`
	HeatingMJ  float64 `json:"heating_mj"`
	CookingFee float64 `json:"cooking_fee"`
	HeatingFee float64 `json:"heating_fee"`
	Fee        float64 `json:"fee"`
	Reduction  float64 `json:"reduction"`
	NetFee     float64 `json:"net_fee"`
}

// Diagnostics exposes the intermediate values behind a bill so the
// result can be audited against a paper invoice.
type Diagnostics struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	TotalDays int `json:"total_days"`
	PrevDays  int `json:"prev_month_days"`
	CurrDays  int `json:"curr_month_days"`

	BaseFee        float64 `json:"base_fee"`
	CorrectedUsage float64 `json:"corrected_usage_m3"`
	BoundaryUsedMJ float64 `json:"cooking_heating_boundary_mj"`
	UsageType      string  `json:"usage_type"`

	PrevMonth PeriodBreakdown `json:"prev_month"`
	CurrMonth PeriodBreakdown `json:"curr_month"`
}

// Result is the output of one bill computation.
type Result struct {
	// TotalFee is the finalized bill: VAT applied, truncated down to
	// the nearest CurrencyStep.
	TotalFee    int64       `json:"total_fee"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Date returns a calendar date at UTC midnight. All period arithmetic in
// this package operates on such values.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
