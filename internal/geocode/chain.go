// Package geocode resolves street addresses through an ordered list of
// geocoding providers and caches the answers.
package geocode

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
	"github.com/couchcryptid/storm-intel-service/internal/observability"
)

// Chain tries each geocoder in order and returns the first usable result.
// Providers are called one at a time; a later provider is only contacted
// when every earlier one failed or found nothing.
type Chain struct {
	geocoders []domain.Geocoder
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewChain builds a fallback chain. Order is significant: the first
// geocoder is the primary.
func NewChain(logger *slog.Logger, metrics *observability.Metrics, geocoders ...domain.Geocoder) *Chain {
	return &Chain{
		geocoders: geocoders,
		logger:    logger,
		metrics:   metrics,
	}
}

// Name implements domain.Geocoder.
func (c *Chain) Name() string { return "chain" }

// Geocode walks the chain. It returns domain.ErrAddressNotFound when no
// provider placed the address, and the context error if the caller gave up.
func (c *Chain) Geocode(ctx context.Context, addr domain.AddressParts) (domain.GeocodingResult, error) {
	if addr.IsZero() {
		return domain.GeocodingResult{}, fmt.Errorf("geocode: empty address: %w", domain.ErrInvalidRequest)
	}

	for _, g := range c.geocoders {
		if err := ctx.Err(); err != nil {
			return domain.GeocodingResult{}, fmt.Errorf("geocode: %w", err)
		}

		result, err := g.Geocode(ctx, addr)
		switch {
		case err != nil:
			c.metrics.GeocodeRequests.WithLabelValues(g.Name(), "error").Inc()
			c.logger.Warn("geocoder failed, trying next", "provider", g.Name(), "error", err)
			continue
		case !result.Found():
			c.metrics.GeocodeRequests.WithLabelValues(g.Name(), "empty").Inc()
			c.logger.Debug("geocoder found no match, trying next", "provider", g.Name())
			continue
		}

		c.metrics.GeocodeRequests.WithLabelValues(g.Name(), "success").Inc()
		if result.Provider == "" {
			result.Provider = g.Name()
		}
		return result, nil
	}

	return domain.GeocodingResult{}, fmt.Errorf("geocode %q: %w", addr.SingleLine(), domain.ErrAddressNotFound)
}
