package providers

import "errors"

// Provider is the base interface for all city-gas utility providers.
type Provider interface {
	// Key returns the unique identifier for the provider (e.g., "seoul", "samchully").
	Key() string
	// Name returns the human-readable name of the provider.
	Name() string
	// LandingURL returns the URL to the provider's tariff page.
	LandingURL() string
}

// Common errors shared across providers.
var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrParseFailed      = errors.New("failed to parse tariff data")
	// ErrNotSupported marks a data point the provider does not publish
	// in a scrapeable form. Callers keep the manually entered value.
	ErrNotSupported = errors.New("not supported by this provider")
)
