package tariff

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bher20/gasbillmanager/internal/billing"
	"github.com/bher20/gasbillmanager/internal/storage"

	_ "github.com/bher20/gasbillmanager/pkg/providers/gasproviders/manual"
)

func seedSnapshot(t *testing.T, st storage.Storage, provider string, snap billing.TariffSnapshot, fetchedAt time.Time) {
	t.Helper()
	payload, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if err := st.SaveTariffSnapshot(context.Background(), storage.TariffSnapshot{
		Provider:  provider,
		Payload:   payload,
		FetchedAt: fetchedAt,
	}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
}

func TestGetProviderTariffUsesCachedSnapshot(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	seedSnapshot(t, st, "seoul", billing.TariffSnapshot{
		BaseFee:  1250,
		PrevHeat: 42.5,
		CurrHeat: 42.8,
	}, time.Now())

	svc := NewServiceWithStorage(Config{}, st)
	snap, err := svc.getProviderTariff(ctx, "seoul")
	if err != nil {
		t.Fatalf("getProviderTariff: %v", err)
	}
	if snap.BaseFee != 1250 || snap.PrevHeat != 42.5 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestGetTariffManualProviderFromOverrides(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	svc := NewServiceWithStorage(Config{}, st)

	inst := storage.Installation{ID: "inst-1", ProviderKey: "manual"}
	err := svc.SetOverrides(ctx, inst.ID, map[string]float64{
		"base_fee":           1000,
		"prev_heat":          42.1,
		"curr_heat":          42.9,
		"prev_price_cooking": 18.5,
		"prev_price_heating": 18.5,
		"curr_price_cooking": 19.2,
		"curr_price_heating": 19.2,
	})
	if err != nil {
		t.Fatalf("SetOverrides: %v", err)
	}

	snap, err := svc.GetTariff(ctx, inst)
	if err != nil {
		t.Fatalf("GetTariff: %v", err)
	}
	if snap.BaseFee != 1000 || snap.CurrPriceHeating != 19.2 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestOverridesLayerOnTopOfSnapshot(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	seedSnapshot(t, st, "seoul", billing.TariffSnapshot{
		BaseFee:          1250,
		PrevHeat:         42.5,
		CurrHeat:         42.8,
		CurrPriceCooking: 19.1,
	}, time.Now())

	svc := NewServiceWithStorage(Config{}, st)
	inst := storage.Installation{ID: "inst-1", ProviderKey: "seoul"}
	if err := svc.SetOverrides(ctx, inst.ID, map[string]float64{"base_fee": 900}); err != nil {
		t.Fatalf("SetOverrides: %v", err)
	}

	snap, err := svc.GetTariff(ctx, inst)
	if err != nil {
		t.Fatalf("GetTariff: %v", err)
	}
	if snap.BaseFee != 900 {
		t.Errorf("BaseFee = %v, want override 900", snap.BaseFee)
	}
	if snap.CurrPriceCooking != 19.1 {
		t.Errorf("CurrPriceCooking = %v, want snapshot value 19.1", snap.CurrPriceCooking)
	}
}

func TestUnknownOverrideFieldRejected(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	svc := NewServiceWithStorage(Config{}, st)

	if err := svc.SetOverrides(ctx, "inst-1", map[string]float64{"bogus": 1}); err != nil {
		t.Fatalf("SetOverrides: %v", err)
	}
	snap := &billing.TariffSnapshot{}
	if err := svc.applyOverrides(ctx, "inst-1", snap); err == nil {
		t.Error("expected error for unknown override field")
	}
}

func TestStaleSnapshotTriggersRefetch(t *testing.T) {
	st := storage.NewMemory()
	svc := NewServiceWithStorage(Config{MaxSnapshotAge: time.Hour}, st)

	if svc.stale(time.Now().Add(-2 * time.Hour)) != true {
		t.Error("two hour old snapshot should be stale")
	}
	if svc.stale(time.Now().Add(-time.Minute)) != false {
		t.Error("fresh snapshot should not be stale")
	}

	unlimited := NewServiceWithStorage(Config{}, st)
	if unlimited.stale(time.Now().Add(-24 * 365 * time.Hour)) {
		t.Error("zero MaxSnapshotAge disables staleness")
	}
}

func TestGetProviderTariffUnknownProvider(t *testing.T) {
	svc := NewService(Config{})
	if _, err := svc.getProviderTariff(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown provider")
	}
}
