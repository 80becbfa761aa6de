package tariff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bher20/gasbillmanager/internal/billing"
	"github.com/bher20/gasbillmanager/internal/storage"
	"github.com/bher20/gasbillmanager/pkg/providers"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders/daeryun"
)

// Config controls how the tariff service behaves.
type Config struct {
	// DaeryunPDFPath is an optional filesystem path to a downloaded
	// Daeryun ENS tariff sheet PDF.
	DaeryunPDFPath string
	// MaxSnapshotAge marks cached snapshots older than this as stale.
	// Zero means snapshots never go stale.
	MaxSnapshotAge time.Duration
}

// Service coordinates fetching and caching of provider tariffs.
type Service struct {
	cfg   Config
	store storage.Storage // may be nil for direct fetch mode
}

// NewService returns a Service without storage caching.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// NewServiceWithStorage returns a Service that uses the provided
// storage backend to cache and read tariff snapshots.
func NewServiceWithStorage(cfg Config, st storage.Storage) *Service {
	return &Service{cfg: cfg, store: st}
}

// overrideKey is the settings key holding manual tariff overrides for
// an installation, as a partial tariff JSON document.
func overrideKey(installationID string) string {
	return "tariff_override:" + installationID
}

// GetTariff resolves the tariff for an installation: cached snapshot
// first, live fetch on miss, then manual overrides on top. Manual-only
// providers work entirely from overrides.
func (s *Service) GetTariff(ctx context.Context, inst storage.Installation) (*billing.TariffSnapshot, error) {
	snap, err := s.getProviderTariff(ctx, inst.ProviderKey)
	if err != nil {
		if !errors.Is(err, providers.ErrNotSupported) {
			return nil, err
		}
		// Manual providers start from an empty tariff.
		snap = &billing.TariffSnapshot{}
	}

	if err := s.applyOverrides(ctx, inst.ID, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// ProviderTariff resolves a provider's published tariff without any
// per-installation overrides applied.
func (s *Service) ProviderTariff(ctx context.Context, key string) (*billing.TariffSnapshot, error) {
	return s.getProviderTariff(ctx, key)
}

func (s *Service) getProviderTariff(ctx context.Context, key string) (*billing.TariffSnapshot, error) {
	if s.store != nil {
		rec, err := s.store.GetTariffSnapshot(ctx, key)
		if err == nil && rec != nil && len(rec.Payload) > 0 && !s.stale(rec.FetchedAt) {
			var snap billing.TariffSnapshot
			if err := json.Unmarshal(rec.Payload, &snap); err == nil {
				return &snap, nil
			}
			// Decode failure falls through to a live fetch.
		}
	}

	snap, err := s.fetchLive(ctx, key)
	if err != nil {
		// A dead provider site should not take billing down when a
		// stale snapshot is still on hand.
		if s.store != nil && !errors.Is(err, providers.ErrNotSupported) {
			if rec, serr := s.store.GetTariffSnapshot(ctx, key); serr == nil && rec != nil && len(rec.Payload) > 0 {
				var cached billing.TariffSnapshot
				if jerr := json.Unmarshal(rec.Payload, &cached); jerr == nil {
					log.Printf("tariff: provider %s fetch failed, serving snapshot from %s: %v",
						key, rec.FetchedAt.Format(time.RFC3339), err)
					return &cached, nil
				}
			}
		}
		return nil, err
	}

	if s.store != nil {
		if payload, jerr := json.Marshal(snap); jerr == nil {
			_ = s.store.SaveTariffSnapshot(ctx, storage.TariffSnapshot{
				Provider:  key,
				Payload:   payload,
				FetchedAt: time.Now().UTC(),
			})
		}
	}
	return snap, nil
}

func (s *Service) stale(fetchedAt time.Time) bool {
	if s.cfg.MaxSnapshotAge <= 0 {
		return false
	}
	return time.Since(fetchedAt) > s.cfg.MaxSnapshotAge
}

// fetchLive pulls heat values, unit prices, base fee and the
// cooking/heating boundary from the registered provider.
func (s *Service) fetchLive(ctx context.Context, key string) (*billing.TariffSnapshot, error) {
	p, ok := gasproviders.Get(key)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", key)
	}

	heat, err := p.FetchHeat(ctx)
	if err != nil {
		return nil, fmt.Errorf("provider %s heat: %w", key, err)
	}

	snap := &billing.TariffSnapshot{
		PrevHeat: heat.PrevMonth,
		CurrHeat: heat.CurrMonth,
	}

	prices, err := p.FetchPrice(ctx)
	switch {
	case err == nil:
		snap.PrevPriceCooking = prices.PrevCooking
		snap.PrevPriceHeating = prices.PrevHeating
		snap.CurrPriceCooking = prices.CurrCooking
		snap.CurrPriceHeating = prices.CurrHeating
	case errors.Is(err, providers.ErrNotSupported):
		if dp, handled := s.pricesFromPDF(key); handled {
			snap.PrevPriceCooking = dp.PrevCooking
			snap.PrevPriceHeating = dp.PrevHeating
			snap.CurrPriceCooking = dp.CurrCooking
			snap.CurrPriceHeating = dp.CurrHeating
		}
		// Otherwise prices stay zero and come from overrides.
	default:
		return nil, fmt.Errorf("provider %s price: %w", key, err)
	}

	if fee, err := p.FetchBaseFee(ctx); err == nil {
		snap.BaseFee = fee
	} else if !errors.Is(err, providers.ErrNotSupported) {
		return nil, fmt.Errorf("provider %s base fee: %w", key, err)
	}

	if boundary, err := p.FetchCookingHeatingBoundary(ctx); err == nil {
		snap.CookingHeatingBoundary = boundary
	} else if !errors.Is(err, providers.ErrNotSupported) {
		return nil, fmt.Errorf("provider %s boundary: %w", key, err)
	}

	return snap, nil
}

// PDFPath returns the local tariff sheet path for providers whose
// prices come from an uploaded PDF, or "" for everyone else.
func (s *Service) PDFPath(key string) string {
	if key != "daeryun" {
		return ""
	}
	return s.cfg.DaeryunPDFPath
}

// pricesFromPDF parses a locally cached tariff sheet for providers that
// only publish PDF rate tables.
func (s *Service) pricesFromPDF(key string) (*gasproviders.PriceValues, bool) {
	if key != "daeryun" || s.cfg.DaeryunPDFPath == "" {
		return nil, false
	}
	p := &daeryun.Provider{}
	prices, err := p.ParseTariffPDF(s.cfg.DaeryunPDFPath)
	if err != nil {
		log.Printf("tariff: daeryun pdf %s: %v", s.cfg.DaeryunPDFPath, err)
		return nil, false
	}
	return prices, true
}

// applyOverrides merges the installation's manual tariff override
// document into the snapshot. Only fields present in the document are
// replaced.
func (s *Service) applyOverrides(ctx context.Context, installationID string, snap *billing.TariffSnapshot) error {
	if s.store == nil || installationID == "" {
		return nil
	}
	raw, err := s.store.GetSetting(ctx, overrideKey(installationID))
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}

	var doc map[string]float64
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("tariff override for %s: %w", installationID, err)
	}
	for field, value := range doc {
		switch field {
		case "base_fee":
			snap.BaseFee = value
		case "prev_heat":
			snap.PrevHeat = value
		case "curr_heat":
			snap.CurrHeat = value
		case "prev_price_cooking":
			snap.PrevPriceCooking = value
		case "prev_price_heating":
			snap.PrevPriceHeating = value
		case "curr_price_cooking":
			snap.CurrPriceCooking = value
		case "curr_price_heating":
			snap.CurrPriceHeating = value
		case "cooking_heating_boundary":
			snap.CookingHeatingBoundary = value
		case "winter_reduction_fee":
			snap.WinterReductionFee = value
		case "non_winter_reduction_fee":
			snap.NonWinterReductionFee = value
		default:
			return fmt.Errorf("tariff override for %s: unknown field %q", installationID, field)
		}
	}
	return nil
}

// SetOverrides stores a manual tariff override document for an
// installation, replacing any previous one.
func (s *Service) SetOverrides(ctx context.Context, installationID string, doc map[string]float64) error {
	if s.store == nil {
		return errors.New("no storage configured")
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.store.SetSetting(ctx, overrideKey(installationID), string(payload))
}

// Overrides returns the stored override document for an installation,
// or an empty map when none is set.
func (s *Service) Overrides(ctx context.Context, installationID string) (map[string]float64, error) {
	doc := map[string]float64{}
	if s.store == nil {
		return doc, nil
	}
	raw, err := s.store.GetSetting(ctx, overrideKey(installationID))
	if err != nil || raw == "" {
		return doc, err
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("tariff override for %s: %w", installationID, err)
	}
	return doc, nil
}

// Refresh forces a live fetch for one provider and stores the result.
func (s *Service) Refresh(ctx context.Context, key string) error {
	snap, err := s.fetchLive(ctx, key)
	if err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.store.SaveTariffSnapshot(ctx, storage.TariffSnapshot{
		Provider:  key,
		Payload:   payload,
		FetchedAt: time.Now().UTC(),
	})
}

// RefreshAll refreshes every registered provider that supports
// automatic fetching, returning the first error after trying them all.
func (s *Service) RefreshAll(ctx context.Context) error {
	var firstErr error
	for _, key := range gasproviders.List() {
		if err := s.Refresh(ctx, key); err != nil {
			if errors.Is(err, providers.ErrNotSupported) {
				continue
			}
			log.Printf("tariff: refresh %s: %v", key, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
