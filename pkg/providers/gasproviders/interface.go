package gasproviders

import (
	"context"

	"github.com/bher20/gasbillmanager/pkg/providers"
)

// HeatValues are the published average calorific values (MJ per m³),
// one per tariff month.
type HeatValues struct {
	PrevMonth float64 `json:"prev_month_heat"`
	CurrMonth float64 `json:"curr_month_heat"`
}

// PriceValues are the published unit prices (KRW per MJ) per tariff
// month and tariff category. Providers without a separate heating
// schedule report the same value for both categories.
type PriceValues struct {
	PrevCooking float64 `json:"prev_month_price_cooking"`
	PrevHeating float64 `json:"prev_month_price_heating"`
	CurrCooking float64 `json:"curr_month_price_cooking"`
	CurrHeating float64 `json:"curr_month_price_heating"`
}

// GasProvider is the interface all city-gas providers must implement.
// Fetch methods return providers.ErrNotSupported when the utility does
// not publish that value in a scrapeable form; any other error is a
// transient scrape failure and is retried on the next cycle.
type GasProvider interface {
	providers.Provider

	// Regions lists the region codes the provider serves, empty when
	// the provider has a single tariff area.
	Regions() []string

	// SupportsCentralHeating reports whether the provider publishes a
	// separate central-heating (apartment block) schedule.
	SupportsCentralHeating() bool

	FetchHeat(ctx context.Context) (*HeatValues, error)
	FetchPrice(ctx context.Context) (*PriceValues, error)
	FetchBaseFee(ctx context.Context) (float64, error)
	FetchCookingHeatingBoundary(ctx context.Context) (float64, error)
}
