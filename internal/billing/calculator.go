package billing

import (
	"fmt"
	"time"
)

// Input is everything one bill computation needs. CorrectedUsageM3 must
// already include the temperature/pressure correction factor.
type Input struct {
	Today            time.Time
	ReadingDay       int
	CorrectedUsageM3 float64
	UsageType        UsageType
	Tariff           TariffSnapshot
}

// Validate checks the static parts of the input. All rate values are
// expected to be non-negative; the reading day must be 0..28.
func (in Input) Validate() error {
	if in.ReadingDay < 0 || in.ReadingDay > 28 {
		return fmt.Errorf("reading day %d out of range 0..28", in.ReadingDay)
	}
	if !in.UsageType.Valid() {
		return fmt.Errorf("unknown usage type %q", in.UsageType)
	}
	for _, v := range []float64{
		in.CorrectedUsageM3, in.Tariff.BaseFee,
		in.Tariff.PrevHeat, in.Tariff.CurrHeat,
		in.Tariff.PrevPriceCooking, in.Tariff.PrevPriceHeating,
		in.Tariff.CurrPriceCooking, in.Tariff.CurrPriceHeating,
		in.Tariff.CookingHeatingBoundary,
		in.Tariff.WinterReductionFee, in.Tariff.NonWinterReductionFee,
	} {
		if v < 0 {
			return fmt.Errorf("negative rate or usage value %v", v)
		}
	}
	return nil
}

// ComputeBill runs the full pipeline: period split, day-proportional
// usage allocation, tariff category split, seasonal reduction and
// finalization. It is pure and side-effect free.
func ComputeBill(in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	split := SplitPeriod(in.Today, in.ReadingDay)
	diag := Diagnostics{
		StartDate:      split.Start.Format(time.DateOnly),
		EndDate:        in.Today.Format(time.DateOnly),
		TotalDays:      split.TotalDays,
		PrevDays:       split.PrevDays,
		CurrDays:       split.CurrDays,
		BaseFee:        in.Tariff.BaseFee,
		CorrectedUsage: in.CorrectedUsageM3,
		UsageType:      string(in.UsageType),
	}

	if split.TotalDays <= 0 {
		return &Result{
			TotalFee:    FinalizeBaseOnly(in.Tariff.BaseFee),
			Diagnostics: diag,
		}, nil
	}

	prevMJ, currMJ := AllocateUsage(in.CorrectedUsageM3,
		split.PrevDays, split.CurrDays, split.TotalDays,
		in.Tariff.PrevHeat, in.Tariff.CurrHeat)

	prev, curr, boundary := SplitTariff(prevMJ, currMJ,
		split.PrevDays, split.CurrDays, split.TotalDays,
		in.UsageType, in.Tariff)
	diag.BoundaryUsedMJ = boundary

	prev.Reduction, prev.NetFee = ApplyReduction(prev.Fee,
		split.PrevDays, split.TotalDays, split.Start.Month(),
		in.Tariff.WinterReductionFee, in.Tariff.NonWinterReductionFee)
	curr.Reduction, curr.NetFee = ApplyReduction(curr.Fee,
		split.CurrDays, split.TotalDays, in.Today.Month(),
		in.Tariff.WinterReductionFee, in.Tariff.NonWinterReductionFee)

	diag.PrevMonth = prev
	diag.CurrMonth = curr

	return &Result{
		TotalFee:    Finalize(in.Tariff.BaseFee, prev.NetFee, curr.NetFee),
		Diagnostics: diag,
	}, nil
}
