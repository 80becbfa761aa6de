package estimator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/bher20/gasbillmanager/internal/billing"
	"github.com/bher20/gasbillmanager/internal/storage"
	"github.com/bher20/gasbillmanager/internal/tariff"

	_ "github.com/bher20/gasbillmanager/pkg/providers/gasproviders/manual"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestService(t *testing.T) (*Service, storage.Storage) {
	t.Helper()
	st := storage.NewMemory()
	tariffs := tariff.NewServiceWithStorage(tariff.Config{}, st)

	ctx := context.Background()
	inst := storage.Installation{
		ID:               "inst-1",
		Name:             "Home",
		ProviderKey:      "manual",
		ReadingDay:       26,
		ReadingCycle:     "disabled",
		UsageType:        "combined",
		CorrectionFactor: 1,
	}
	if err := st.UpsertInstallation(ctx, inst); err != nil {
		t.Fatalf("UpsertInstallation: %v", err)
	}
	err := tariffs.SetOverrides(ctx, inst.ID, map[string]float64{
		"base_fee":           1000,
		"prev_heat":          40,
		"curr_heat":          40,
		"prev_price_cooking": 20,
		"prev_price_heating": 20,
		"curr_price_cooking": 20,
		"curr_price_heating": 20,
	})
	if err != nil {
		t.Fatalf("SetOverrides: %v", err)
	}
	return NewService(st, tariffs), st
}

func TestEstimateRequiresInitializedState(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Estimate(context.Background(), "inst-1", 1000, billing.Date(2024, 4, 10))
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
}

func TestEstimateMidPeriod(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if err := svc.InitializeState(ctx, "inst-1", 1000); err != nil {
		t.Fatalf("InitializeState: %v", err)
	}

	est, err := svc.Estimate(ctx, "inst-1", 1030, billing.Date(2024, 4, 10))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	if est.UsageM3 != 30 {
		t.Errorf("UsageM3 = %v, want 30", est.UsageM3)
	}
	if !est.PeriodStart.Equal(billing.Date(2024, 3, 26)) {
		t.Errorf("PeriodStart = %v", est.PeriodStart)
	}
	if !est.PeriodEnd.Equal(billing.Date(2024, 4, 25)) {
		t.Errorf("PeriodEnd = %v", est.PeriodEnd)
	}
	if est.ElapsedDays != 16 || est.TotalDays != 31 {
		t.Errorf("days = %d/%d, want 16/31", est.ElapsedDays, est.TotalDays)
	}
	// 1200 MJ at 20 KRW plus the 1000 base, with VAT, lands on 27500.
	if est.PeriodFee != 27500 {
		t.Errorf("PeriodFee = %d, want 27500", est.PeriodFee)
	}
	if est.TotalFee != est.PeriodFee {
		t.Errorf("TotalFee = %d, monthly cycle should not aggregate", est.TotalFee)
	}
	if est.ProjectedUsageM3 != 58.13 {
		t.Errorf("ProjectedUsageM3 = %v, want 58.13", est.ProjectedUsageM3)
	}
	if est.ProjectedFee != 52250 {
		t.Errorf("ProjectedFee = %d, want 52250", est.ProjectedFee)
	}
}

func TestEstimateNegativeUsageClampsToZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if err := svc.InitializeState(ctx, "inst-1", 1000); err != nil {
		t.Fatalf("InitializeState: %v", err)
	}

	// A meter swap can report below the recorded period start.
	est, err := svc.Estimate(ctx, "inst-1", 900, billing.Date(2024, 4, 10))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.UsageM3 != 0 {
		t.Errorf("UsageM3 = %v, want 0", est.UsageM3)
	}
}

func TestMaybeResetOffReadingDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if err := svc.InitializeState(ctx, "inst-1", 1000); err != nil {
		t.Fatalf("InitializeState: %v", err)
	}

	closing, err := svc.MaybeReset(ctx, "inst-1", 1030, billing.Date(2024, 4, 10))
	if err != nil {
		t.Fatalf("MaybeReset: %v", err)
	}
	if closing != nil {
		t.Errorf("expected no reset off the reading day, got %+v", closing)
	}
}

func TestMaybeResetClosesPeriod(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	if err := svc.InitializeState(ctx, "inst-1", 1000); err != nil {
		t.Fatalf("InitializeState: %v", err)
	}

	closing, err := svc.MaybeReset(ctx, "inst-1", 1040.7, billing.Date(2024, 4, 26))
	if err != nil {
		t.Fatalf("MaybeReset: %v", err)
	}
	if closing == nil {
		t.Fatal("expected a closing estimate on the reading day")
	}
	if !almostEqual(closing.UsageM3, 40.7) {
		t.Errorf("closing usage = %v, want 40.7", closing.UsageM3)
	}
	if !closing.PeriodEnd.Equal(billing.Date(2024, 4, 25)) {
		t.Errorf("closing PeriodEnd = %v, want 2024-04-25", closing.PeriodEnd)
	}

	rec, err := st.GetPeriodRecord(ctx, "inst-1", storage.SlotPrev)
	if err != nil || rec == nil {
		t.Fatalf("GetPeriodRecord: %v, %v", rec, err)
	}
	if !almostEqual(rec.UsageM3, 40.7) || rec.FeeKRW != closing.PeriodFee {
		t.Errorf("record = %+v", rec)
	}

	// The whole meter units open the next period; the fraction stays.
	state, err := st.GetEstimatorState(ctx, "inst-1")
	if err != nil {
		t.Fatalf("GetEstimatorState: %v", err)
	}
	if state.PeriodStartM3 != 1040 {
		t.Errorf("PeriodStartM3 = %v, want 1040", state.PeriodStartM3)
	}
	if state.LastResetOn != "2024-04-26" {
		t.Errorf("LastResetOn = %q", state.LastResetOn)
	}
}

func TestMaybeResetLatchesPerDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if err := svc.InitializeState(ctx, "inst-1", 1000); err != nil {
		t.Fatalf("InitializeState: %v", err)
	}

	first, err := svc.MaybeReset(ctx, "inst-1", 1040, billing.Date(2024, 4, 26))
	if err != nil || first == nil {
		t.Fatalf("first reset: %v, %v", first, err)
	}
	second, err := svc.MaybeReset(ctx, "inst-1", 1041, billing.Date(2024, 4, 26))
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if second != nil {
		t.Error("same-day repeat should not reset again")
	}
}

func TestResetShiftsPrevToPrePrev(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	if err := svc.InitializeState(ctx, "inst-1", 1000); err != nil {
		t.Fatalf("InitializeState: %v", err)
	}

	if _, err := svc.MaybeReset(ctx, "inst-1", 1040, billing.Date(2024, 4, 26)); err != nil {
		t.Fatalf("first reset: %v", err)
	}
	if _, err := svc.MaybeReset(ctx, "inst-1", 1075, billing.Date(2024, 5, 26)); err != nil {
		t.Fatalf("second reset: %v", err)
	}

	prePrev, err := st.GetPeriodRecord(ctx, "inst-1", storage.SlotPrePrev)
	if err != nil || prePrev == nil {
		t.Fatalf("preprev record: %v, %v", prePrev, err)
	}
	if prePrev.UsageM3 != 40 {
		t.Errorf("preprev usage = %v, want 40", prePrev.UsageM3)
	}
	prev, err := st.GetPeriodRecord(ctx, "inst-1", storage.SlotPrev)
	if err != nil || prev == nil {
		t.Fatalf("prev record: %v, %v", prev, err)
	}
	if prev.UsageM3 != 35 {
		t.Errorf("prev usage = %v, want 35", prev.UsageM3)
	}
}

func TestAggregationOnBimonthlyCycle(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	inst, _ := st.GetInstallation(ctx, "inst-1")
	inst.ReadingCycle = string(billing.CycleOdd)
	if err := st.UpsertInstallation(ctx, *inst); err != nil {
		t.Fatalf("UpsertInstallation: %v", err)
	}
	if err := svc.InitializeState(ctx, "inst-1", 1000); err != nil {
		t.Fatalf("InitializeState: %v", err)
	}
	err := st.SavePeriodRecord(ctx, storage.PeriodRecord{
		InstallationID: "inst-1",
		Slot:           storage.SlotPrev,
		FeeKRW:         10000,
	})
	if err != nil {
		t.Fatalf("SavePeriodRecord: %v", err)
	}

	// April is not an invoice month for the odd cycle.
	est, err := svc.Estimate(ctx, "inst-1", 1030, billing.Date(2024, 4, 10))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.TotalFee != est.PeriodFee {
		t.Errorf("April TotalFee = %d, want passthrough %d", est.TotalFee, est.PeriodFee)
	}

	// May is, so the carried period joins the total.
	est, err = svc.Estimate(ctx, "inst-1", 1030, billing.Date(2024, 5, 10))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.TotalFee != est.PeriodFee+10000 {
		t.Errorf("May TotalFee = %d, want %d", est.TotalFee, est.PeriodFee+10000)
	}
}

func TestIsReadingDayEndOfMonth(t *testing.T) {
	if !isReadingDay(billing.Date(2024, 2, 29), billing.LastDayOfMonth) {
		t.Error("Feb 29 2024 is the last day of the month")
	}
	if isReadingDay(billing.Date(2024, 2, 28), billing.LastDayOfMonth) {
		t.Error("Feb 28 2024 is not the last day of a leap February")
	}
	if !isReadingDay(billing.Date(2024, 4, 30), billing.LastDayOfMonth) {
		t.Error("Apr 30 is the last day of April")
	}
	if !isReadingDay(billing.Date(2024, 4, 26), 26) {
		t.Error("explicit reading day should match")
	}
}

func TestMaybeResetUnknownInstallation(t *testing.T) {
	svc, _ := newTestService(t)
	day := billing.Date(2024, 4, 26)
	if _, err := svc.MaybeReset(context.Background(), "nope", 0, day); err == nil {
		t.Error("expected error for unknown installation")
	}
}
