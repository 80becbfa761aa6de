package estimator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/bher20/gasbillmanager/internal/billing"
	"github.com/bher20/gasbillmanager/internal/storage"
	"github.com/bher20/gasbillmanager/internal/tariff"
)

// ErrNotReady is returned when an installation has no recorded period
// start yet. Callers initialize one with InitializeState.
var ErrNotReady = errors.New("estimator: no period start recorded for installation")

// Estimate is the bill estimate for an installation at a point in time.
type Estimate struct {
	InstallationID string    `json:"installation_id"`
	Today          time.Time `json:"today"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	ElapsedDays    int       `json:"elapsed_days"`
	TotalDays      int       `json:"total_days"`

	UsageM3          float64 `json:"usage_m3"`
	CorrectedUsageM3 float64 `json:"corrected_usage_m3"`

	// PeriodFee is this period's fee so far. TotalFee adds carried
	// periods when the reading cycle bills several at once.
	PeriodFee int64 `json:"period_fee"`
	TotalFee  int64 `json:"total_fee"`

	// Projections extrapolate current daily usage to the full period.
	ProjectedUsageM3 float64 `json:"projected_usage_m3"`
	ProjectedFee     int64   `json:"projected_fee"`

	Diagnostics billing.Diagnostics `json:"diagnostics"`
}

// Service computes running bill estimates and performs the reading-day
// rollover for each installation.
type Service struct {
	store   storage.Storage
	tariffs *tariff.Service
}

func NewService(st storage.Storage, tariffs *tariff.Service) *Service {
	return &Service{store: st, tariffs: tariffs}
}

// InitializeState records the meter value that opens the first billing
// period for an installation.
func (s *Service) InitializeState(ctx context.Context, installationID string, meterM3 float64) error {
	return s.store.SaveEstimatorState(ctx, storage.EstimatorState{
		InstallationID: installationID,
		PeriodStartM3:  meterM3,
	})
}

func isReadingDay(today time.Time, readingDay int) bool {
	if readingDay == billing.LastDayOfMonth {
		next := billing.Date(today.Year(), today.Month(), today.Day()+1)
		return next.Day() == 1
	}
	return today.Day() == readingDay
}

// Estimate computes the current bill estimate for an installation given
// its latest meter reading.
func (s *Service) Estimate(ctx context.Context, installationID string, meterM3 float64, today time.Time) (*Estimate, error) {
	inst, state, err := s.load(ctx, installationID)
	if err != nil {
		return nil, err
	}
	snap, err := s.tariffs.GetTariff(ctx, *inst)
	if err != nil {
		return nil, err
	}
	// Remember the reading so the worker can close the period on the
	// reading day without a fresh meter value.
	if err := s.store.SetSetting(ctx, lastReadingKey(installationID), strconv.FormatFloat(meterM3, 'f', -1, 64)); err != nil {
		log.Printf("estimator: save last reading for %s: %v", installationID, err)
	}
	return s.estimate(ctx, inst, state, snap, meterM3, today)
}

func lastReadingKey(installationID string) string {
	return "last_reading:" + installationID
}

// LastReading returns the most recent meter value submitted through
// Estimate, or ok=false when none was recorded yet.
func (s *Service) LastReading(ctx context.Context, installationID string) (float64, bool, error) {
	raw, err := s.store.GetSetting(ctx, lastReadingKey(installationID))
	if err != nil || raw == "" {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("bad last reading %q: %w", raw, err)
	}
	return v, true, nil
}

func (s *Service) load(ctx context.Context, installationID string) (*storage.Installation, *storage.EstimatorState, error) {
	inst, err := s.store.GetInstallation(ctx, installationID)
	if err != nil {
		return nil, nil, err
	}
	if inst == nil {
		return nil, nil, fmt.Errorf("unknown installation %q", installationID)
	}
	state, err := s.store.GetEstimatorState(ctx, installationID)
	if err != nil {
		return nil, nil, err
	}
	if state == nil {
		return nil, nil, ErrNotReady
	}
	return inst, state, nil
}

func (s *Service) estimate(ctx context.Context, inst *storage.Installation, state *storage.EstimatorState, snap *billing.TariffSnapshot, meterM3 float64, today time.Time) (*Estimate, error) {
	usage := meterM3 - state.PeriodStartM3
	if usage < 0 {
		usage = 0
	}
	factor := inst.CorrectionFactor
	if factor <= 0 {
		factor = 1
	}
	corrected := usage * factor

	in := billing.Input{
		Today:            today,
		ReadingDay:       inst.ReadingDay,
		CorrectedUsageM3: corrected,
		UsageType:        billing.UsageType(inst.UsageType),
		Tariff:           *snap,
	}
	result, err := billing.ComputeBill(in)
	if err != nil {
		return nil, err
	}

	periodStart := billing.LastReadingDate(today, inst.ReadingDay)
	periodEnd := billing.NextReadingDate(periodStart, inst.ReadingDay).AddDate(0, 0, -1)
	elapsed := result.Diagnostics.TotalDays
	totalDays := int(periodEnd.Sub(periodStart).Hours()/24) + 1

	est := &Estimate{
		InstallationID:   inst.ID,
		Today:            today,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		ElapsedDays:      elapsed,
		TotalDays:        totalDays,
		UsageM3:          usage,
		CorrectedUsageM3: corrected,
		PeriodFee:        result.TotalFee,
		TotalFee:         result.TotalFee,
		Diagnostics:      result.Diagnostics,
	}

	if err := s.aggregate(ctx, inst, est, today); err != nil {
		return nil, err
	}
	s.project(inst, snap, est, today)
	return est, nil
}

// aggregate folds carried period fees into the total on billing months
// for non-monthly reading cycles.
func (s *Service) aggregate(ctx context.Context, inst *storage.Installation, est *Estimate, today time.Time) error {
	cycle := billing.ReadingCycle(inst.ReadingCycle)
	if cycle == "" || cycle == billing.CycleDisabled {
		return nil
	}

	var prevFee, prePrevFee float64
	if rec, err := s.store.GetPeriodRecord(ctx, inst.ID, storage.SlotPrev); err != nil {
		return err
	} else if rec != nil {
		prevFee = float64(rec.FeeKRW)
	}
	if rec, err := s.store.GetPeriodRecord(ctx, inst.ID, storage.SlotPrePrev); err != nil {
		return err
	} else if rec != nil {
		prePrevFee = float64(rec.FeeKRW)
	}

	est.TotalFee = int64(billing.AggregatePeriodic(float64(est.PeriodFee), prevFee, prePrevFee, today, cycle))
	return nil
}

// project extrapolates the current usage rate to the whole period and
// prices the projected usage.
func (s *Service) project(inst *storage.Installation, snap *billing.TariffSnapshot, est *Estimate, today time.Time) {
	if est.ElapsedDays <= 0 || est.TotalDays <= 0 || est.CorrectedUsageM3 <= 0 {
		est.ProjectedUsageM3 = est.UsageM3
		est.ProjectedFee = est.PeriodFee
		return
	}

	ratio := float64(est.TotalDays) / float64(est.ElapsedDays)
	est.ProjectedUsageM3 = math.Round(est.UsageM3*ratio*100) / 100

	in := billing.Input{
		Today:            est.PeriodEnd,
		ReadingDay:       inst.ReadingDay,
		CorrectedUsageM3: est.CorrectedUsageM3 * ratio,
		UsageType:        billing.UsageType(inst.UsageType),
		Tariff:           *snap,
	}
	if result, err := billing.ComputeBill(in); err == nil {
		est.ProjectedFee = result.TotalFee
	} else {
		est.ProjectedFee = est.PeriodFee
	}
}

// MaybeReset closes the current billing period when today is the
// installation's reading day. The closing estimate is archived into the
// prev slot (shifting its previous occupant to preprev), the period
// start becomes the whole part of the meter reading so the fractional
// remainder stays in the new period, and a per-day latch keeps repeated
// calls on the same day from resetting twice. It returns the closing
// estimate when a reset ran, nil otherwise.
func (s *Service) MaybeReset(ctx context.Context, installationID string, meterM3 float64, today time.Time) (*Estimate, error) {
	inst, state, err := s.load(ctx, installationID)
	if err != nil {
		return nil, err
	}
	if !isReadingDay(today, inst.ReadingDay) {
		return nil, nil
	}
	todayKey := today.Format(time.DateOnly)
	if state.LastResetOn == todayKey {
		return nil, nil
	}

	snap, err := s.tariffs.GetTariff(ctx, *inst)
	if err != nil {
		return nil, err
	}
	// The reading day opens the next period, so the closing bill covers
	// the period through yesterday.
	closingDay := billing.Date(today.Year(), today.Month(), today.Day()-1)
	closing, err := s.estimate(ctx, inst, state, snap, meterM3, closingDay)
	if err != nil {
		return nil, err
	}

	// Shift prev into preprev before overwriting the slot.
	if prev, err := s.store.GetPeriodRecord(ctx, inst.ID, storage.SlotPrev); err != nil {
		return nil, err
	} else if prev != nil {
		shifted := *prev
		shifted.ID = 0
		shifted.Slot = storage.SlotPrePrev
		if err := s.store.SavePeriodRecord(ctx, shifted); err != nil {
			return nil, err
		}
	}

	rec := storage.PeriodRecord{
		InstallationID: inst.ID,
		Slot:           storage.SlotPrev,
		PeriodStart:    closing.PeriodStart,
		PeriodEnd:      closingDay,
		UsageM3:        closing.UsageM3,
		FeeKRW:         closing.PeriodFee,
		RecordedAt:     time.Now().UTC(),
	}
	if err := s.store.SavePeriodRecord(ctx, rec); err != nil {
		return nil, err
	}

	state.PeriodStartM3 = math.Floor(meterM3)
	state.LastResetOn = todayKey
	if err := s.store.SaveEstimatorState(ctx, *state); err != nil {
		return nil, err
	}

	log.Printf("estimator: installation %s period closed, usage=%.2f m3 fee=%d KRW, new start=%.0f",
		inst.ID, closing.UsageM3, closing.PeriodFee, state.PeriodStartM3)
	return closing, nil
}
