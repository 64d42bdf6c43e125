// Package app wires configuration into the geocoder chain, the provider set
// and the assessor. Both the service and the one-shot CLI build through it.
package app

import (
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-intel-service/internal/adapter/census"
	"github.com/couchcryptid/storm-intel-service/internal/adapter/ihm"
	"github.com/couchcryptid/storm-intel-service/internal/adapter/mapbox"
	"github.com/couchcryptid/storm-intel-service/internal/adapter/ncei"
	"github.com/couchcryptid/storm-intel-service/internal/adapter/nominatim"
	"github.com/couchcryptid/storm-intel-service/internal/adapter/ratelimit"
	"github.com/couchcryptid/storm-intel-service/internal/adapter/visualcrossing"
	"github.com/couchcryptid/storm-intel-service/internal/aggregator"
	"github.com/couchcryptid/storm-intel-service/internal/assessment"
	"github.com/couchcryptid/storm-intel-service/internal/config"
	"github.com/couchcryptid/storm-intel-service/internal/domain"
	"github.com/couchcryptid/storm-intel-service/internal/geocode"
	"github.com/couchcryptid/storm-intel-service/internal/hotzone"
	"github.com/couchcryptid/storm-intel-service/internal/observability"
	"github.com/couchcryptid/storm-intel-service/internal/scoring"
)

// Engine is the assembled assessment stack.
type Engine struct {
	Assessor   *assessment.Assessor
	Aggregator *aggregator.Aggregator
}

// Build assembles the engine from configuration.
func Build(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Engine, error) {
	clock := clockwork.NewRealClock()

	territories, err := loadTerritories(cfg, logger)
	if err != nil {
		return nil, err
	}

	agg := aggregator.New(Geocoder(cfg, logger, metrics), Providers(cfg, logger), aggregator.Config{
		ProviderTimeout:       cfg.ProviderTimeout,
		DefaultLookbackMonths: cfg.DefaultLookbackMonths,
		DefaultRadiusMiles:    cfg.DefaultRadiusMiles,
	}, logger, metrics)

	for _, p := range agg.Inventory() {
		logger.Info("storm data provider", "provider", p.Name, "configured", p.Configured)
	}

	assessor := assessment.New(
		agg,
		scoring.NewCalculator(clock),
		hotzone.NewEngine(territories, clock, logger),
		clock,
		logger,
		metrics,
	)
	return &Engine{Assessor: assessor, Aggregator: agg}, nil
}

// Geocoder builds the fallback chain: Mapbox when enabled, then the Census
// Bureau, then Nominatim, behind an LRU cache.
func Geocoder(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) domain.Geocoder {
	var chain []domain.Geocoder
	if cfg.MapboxEnabled {
		chain = append(chain, mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger))
		logger.Info("mapbox geocoding enabled", "timeout", cfg.MapboxTimeout)
	}
	chain = append(chain,
		census.NewClient(cfg.CensusBaseURL, cfg.ProviderTimeout, logger),
		nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.ProviderTimeout, logger),
	)
	logger.Info("geocoder chain ready", "geocoders", len(chain), "cache_size", cfg.GeocodeCacheSize)
	return geocode.NewCached(geocode.NewChain(logger, metrics, chain...), cfg.GeocodeCacheSize, metrics)
}

// Providers builds the storm data providers, each behind its own rate
// limiter. Order is merge and report order.
func Providers(cfg *config.Config, logger *slog.Logger) []domain.EventProvider {
	raw := []domain.EventProvider{
		ihm.NewClient(ihm.Config{
			BaseURL:  cfg.IHMBaseURL,
			Username: cfg.IHMUsername,
			Password: cfg.IHMPassword,
			Timeout:  cfg.ProviderTimeout,
		}, logger),
		ncei.NewClient(ncei.Config{
			BaseURL: cfg.NCEIBaseURL,
			Enabled: cfg.NCEIEnabled,
			Timeout: cfg.ProviderTimeout,
		}, logger),
		visualcrossing.NewClient(visualcrossing.Config{
			BaseURL:    cfg.VisualCrossingBaseURL,
			APIKey:     cfg.VisualCrossingAPIKey,
			MinGustMPH: cfg.VisualCrossingMinGust,
			Timeout:    cfg.ProviderTimeout,
		}, logger),
	}

	providers := make([]domain.EventProvider, len(raw))
	for i, p := range raw {
		providers[i] = ratelimit.New(p, cfg.ProviderRateLimitRPS, cfg.ProviderRateLimitBurst)
	}
	return providers
}

func loadTerritories(cfg *config.Config, logger *slog.Logger) (hotzone.TerritoryStore, error) {
	if cfg.TerritoriesFile == "" {
		return nil, nil
	}
	store, err := hotzone.LoadTerritories(cfg.TerritoriesFile)
	if err != nil {
		return nil, fmt.Errorf("load territories: %w", err)
	}
	logger.Info("territories loaded", "file", cfg.TerritoriesFile, "territories", store.IDs())
	return store, nil
}
