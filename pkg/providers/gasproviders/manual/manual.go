package manual

import (
	"context"

	"github.com/bher20/gasbillmanager/pkg/providers"
	"github.com/bher20/gasbillmanager/pkg/providers/gasproviders"
)

func init() {
	gasproviders.Register(&Provider{})
}

// Provider is the manual-entry mode: no scraping at all. Every fetch
// reports ErrNotSupported so the stored settings are never overwritten.
type Provider struct{}

func (p *Provider) Key() string { return "manual" }

func (p *Provider) Name() string { return "Manual entry" }

func (p *Provider) LandingURL() string { return "" }

func (p *Provider) Regions() []string { return nil }

func (p *Provider) SupportsCentralHeating() bool { return false }

func (p *Provider) FetchHeat(ctx context.Context) (*gasproviders.HeatValues, error) {
	return nil, providers.ErrNotSupported
}

func (p *Provider) FetchPrice(ctx context.Context) (*gasproviders.PriceValues, error) {
	return nil, providers.ErrNotSupported
}

func (p *Provider) FetchBaseFee(ctx context.Context) (float64, error) {
	return 0, providers.ErrNotSupported
}

func (p *Provider) FetchCookingHeatingBoundary(ctx context.Context) (float64, error) {
	return 0, providers.ErrNotSupported
}
