package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryInstallations(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	inst := Installation{
		ID:           "inst-1",
		Name:         "Home",
		ProviderKey:  "seoul",
		ReadingDay:   26,
		ReadingCycle: "disabled",
		UsageType:    "combined",
	}
	if err := m.UpsertInstallation(ctx, inst); err != nil {
		t.Fatalf("UpsertInstallation: %v", err)
	}

	got, err := m.GetInstallation(ctx, "inst-1")
	if err != nil {
		t.Fatalf("GetInstallation: %v", err)
	}
	if got == nil || got.ProviderKey != "seoul" {
		t.Errorf("GetInstallation = %+v", got)
	}

	list, err := m.ListInstallations(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("ListInstallations = %v, %v", list, err)
	}

	if err := m.DeleteInstallation(ctx, "inst-1"); err != nil {
		t.Fatalf("DeleteInstallation: %v", err)
	}
	got, _ = m.GetInstallation(ctx, "inst-1")
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestMemoryTariffSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if snap, _ := m.GetTariffSnapshot(ctx, "seoul"); snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}

	err := m.SaveTariffSnapshot(ctx, TariffSnapshot{
		Provider: "seoul",
		Payload:  []byte(`{"base_fee":1250}`),
	})
	if err != nil {
		t.Fatalf("SaveTariffSnapshot: %v", err)
	}

	snap, err := m.GetTariffSnapshot(ctx, "seoul")
	if err != nil {
		t.Fatalf("GetTariffSnapshot: %v", err)
	}
	if snap == nil || string(snap.Payload) != `{"base_fee":1250}` {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt should default to now")
	}
}

func TestMemoryPeriodRecordSlots(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	prev := PeriodRecord{
		InstallationID: "inst-1",
		Slot:           SlotPrev,
		PeriodStart:    time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC),
		PeriodEnd:      time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
		UsageM3:        42,
		FeeKRW:         31250,
	}
	if err := m.SavePeriodRecord(ctx, prev); err != nil {
		t.Fatalf("SavePeriodRecord: %v", err)
	}

	// A replacement in the same slot overwrites, never appends.
	prev.UsageM3 = 43
	if err := m.SavePeriodRecord(ctx, prev); err != nil {
		t.Fatalf("SavePeriodRecord overwrite: %v", err)
	}

	got, err := m.GetPeriodRecord(ctx, "inst-1", SlotPrev)
	if err != nil {
		t.Fatalf("GetPeriodRecord: %v", err)
	}
	if got == nil || got.UsageM3 != 43 {
		t.Errorf("record = %+v, want usage 43", got)
	}

	if rec, _ := m.GetPeriodRecord(ctx, "inst-1", SlotPrePrev); rec != nil {
		t.Errorf("preprev should be empty, got %+v", rec)
	}
}

func TestMemoryEstimatorState(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if state, _ := m.GetEstimatorState(ctx, "inst-1"); state != nil {
		t.Fatalf("expected nil state, got %+v", state)
	}

	err := m.SaveEstimatorState(ctx, EstimatorState{
		InstallationID: "inst-1",
		PeriodStartM3:  1234.5,
		LastResetOn:    "2024-03-26",
	})
	if err != nil {
		t.Fatalf("SaveEstimatorState: %v", err)
	}

	state, err := m.GetEstimatorState(ctx, "inst-1")
	if err != nil {
		t.Fatalf("GetEstimatorState: %v", err)
	}
	if state.PeriodStartM3 != 1234.5 || state.LastResetOn != "2024-03-26" {
		t.Errorf("state = %+v", state)
	}
}

func TestMemorySettings(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if v, _ := m.GetSetting(ctx, "missing"); v != "" {
		t.Errorf("missing setting = %q, want empty", v)
	}
	if err := m.SetSetting(ctx, "tariff_refresh_cron", "0 3 * * 1"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	v, _ := m.GetSetting(ctx, "tariff_refresh_cron")
	if v != "0 3 * * 1" {
		t.Errorf("setting = %q", v)
	}
}
