package billing

import (
	"math"
	"testing"
	"time"
)

func sampleTariff() TariffSnapshot {
	return TariffSnapshot{
		BaseFee:                1250,
		PrevHeat:               42.5,
		CurrHeat:               43.0,
		PrevPriceCooking:       15.0,
		PrevPriceHeating:       20.0,
		CurrPriceCooking:       16.0,
		CurrPriceHeating:       21.0,
		CookingHeatingBoundary: 516,
		WinterReductionFee:     6000,
		NonWinterReductionFee:  1200,
	}
}

func TestComputeBill_BaseFeeOnlyOnReadingDay(t *testing.T) {
	// On the reading day itself the period is one day old; with zero
	// usage the bill is effectively base fee plus VAT.
	res, err := ComputeBill(Input{
		Today:      Date(2024, time.March, 26),
		ReadingDay: 26,
		UsageType:  UsageCombined,
		Tariff:     sampleTariff(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalFee != 1370 {
		t.Fatalf("expected 1370, got %d", res.TotalFee)
	}
	if res.Diagnostics.TotalDays != 1 || res.Diagnostics.PrevDays != 0 {
		t.Errorf("unexpected day split: %+v", res.Diagnostics)
	}
}

func TestComputeBill_FullPipeline(t *testing.T) {
	// 2024-03-10 with reading day 26: Feb 26..29 (4 days) + Mar 1..10
	// (10 days). Winter reduction applies to both months.
	in := Input{
		Today:            Date(2024, time.March, 10),
		ReadingDay:       26,
		CorrectedUsageM3: 70,
		UsageType:        UsageCombined,
		Tariff:           sampleTariff(),
	}
	res, err := ComputeBill(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := res.Diagnostics
	if d.PrevDays != 4 || d.CurrDays != 10 || d.TotalDays != 14 {
		t.Fatalf("unexpected day split: %+v", d)
	}

	prevMJ := 70.0 * 4 / 14 * 42.5
	currMJ := 70.0 * 10 / 14 * 43.0
	if !almostEqual(d.PrevMonth.EnergyMJ, prevMJ) {
		t.Errorf("prev energy: got %f, want %f", d.PrevMonth.EnergyMJ, prevMJ)
	}
	if !almostEqual(d.CurrMonth.EnergyMJ, currMJ) {
		t.Errorf("curr energy: got %f, want %f", d.CurrMonth.EnergyMJ, currMJ)
	}

	boundaryPrev := 516.0 * 4 / 14
	boundaryCurr := 516.0 * 10 / 14
	wantPrevCook := math.Min(prevMJ, boundaryPrev)
	wantCurrCook := math.Min(currMJ, boundaryCurr)
	if !almostEqual(d.PrevMonth.CookingMJ, wantPrevCook) {
		t.Errorf("prev cooking share: got %f, want %f", d.PrevMonth.CookingMJ, wantPrevCook)
	}
	if !almostEqual(d.CurrMonth.CookingMJ, wantCurrCook) {
		t.Errorf("curr cooking share: got %f, want %f", d.CurrMonth.CookingMJ, wantCurrCook)
	}

	prevFee := wantPrevCook*15 + (prevMJ-wantPrevCook)*20
	currFee := wantCurrCook*16 + (currMJ-wantCurrCook)*21
	prevRed := math.Min(6000.0*4/14, prevFee)
	currRed := math.Min(6000.0*10/14, currFee)
	want := Finalize(1250, prevFee-prevRed, currFee-currRed)
	if res.TotalFee != want {
		t.Fatalf("total fee: got %d, want %d", res.TotalFee, want)
	}
	if res.TotalFee%CurrencyStep != 0 {
		t.Errorf("total fee %d not a multiple of %d", res.TotalFee, CurrencyStep)
	}
}

func TestComputeBill_UsageConservation(t *testing.T) {
	in := Input{
		Today:            Date(2024, time.July, 3),
		ReadingDay:       15,
		CorrectedUsageM3: 33.7,
		UsageType:        UsageCombined,
		Tariff:           sampleTariff(),
	}
	res, err := ComputeBill(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := res.Diagnostics
	prevM3 := d.PrevMonth.EnergyMJ / in.Tariff.PrevHeat
	currM3 := d.CurrMonth.EnergyMJ / in.Tariff.CurrHeat
	if !almostEqual(prevM3+currM3, 33.7) {
		t.Fatalf("usage not conserved: %f + %f != 33.7", prevM3, currM3)
	}
}

func TestComputeBill_InvalidInput(t *testing.T) {
	in := Input{
		Today:      Date(2024, time.March, 10),
		ReadingDay: 31,
		UsageType:  UsageCombined,
	}
	if _, err := ComputeBill(in); err == nil {
		t.Fatalf("expected error for reading day 31")
	}

	in.ReadingDay = 26
	in.UsageType = "industrial"
	if _, err := ComputeBill(in); err == nil {
		t.Fatalf("expected error for unknown usage type")
	}

	in.UsageType = UsageCombined
	in.Tariff.BaseFee = -1
	if _, err := ComputeBill(in); err == nil {
		t.Fatalf("expected error for negative base fee")
	}
}
