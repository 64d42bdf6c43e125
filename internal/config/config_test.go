package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker   = "localhost:9092"
	testMapboxToken = "pk.test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "storm-assessment-requests", cfg.KafkaSourceTopic)
	assert.Equal(t, "storm-assessments", cfg.KafkaSinkTopic)
	assert.Equal(t, "storm-intel", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)

	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.GeocodeCacheSize)
	assert.Equal(t, "https://geocoding.geo.census.gov/geocoder", cfg.CensusBaseURL)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimBaseURL)
	assert.NotEmpty(t, cfg.NominatimUserAgent)

	assert.Empty(t, cfg.IHMUsername)
	assert.Empty(t, cfg.IHMPassword)
	assert.True(t, cfg.NCEIEnabled)
	assert.Empty(t, cfg.VisualCrossingAPIKey)
	assert.Equal(t, 50.0, cfg.VisualCrossingMinGust)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5.0, cfg.ProviderRateLimitRPS)
	assert.Equal(t, 2, cfg.ProviderRateLimitBurst)
	assert.Equal(t, 24, cfg.DefaultLookbackMonths)
	assert.Equal(t, 10.0, cfg.DefaultRadiusMiles)
	assert.Empty(t, cfg.TerritoriesFile)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("GEOCODE_CACHE_SIZE", "500")
	t.Setenv("IHM_USERNAME", "user")
	t.Setenv("IHM_PASSWORD", "secret")
	t.Setenv("NCEI_ENABLED", "false")
	t.Setenv("VISUALCROSSING_API_KEY", "vc-key")
	t.Setenv("VISUALCROSSING_MIN_GUST_MPH", "58")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("PROVIDER_RATE_LIMIT_RPS", "0.5")
	t.Setenv("PROVIDER_RATE_LIMIT_BURST", "1")
	t.Setenv("DEFAULT_LOOKBACK_MONTHS", "36")
	t.Setenv("DEFAULT_RADIUS_MILES", "2.5")
	t.Setenv("TERRITORIES_FILE", "/etc/storm/territories.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.GeocodeCacheSize)
	assert.Equal(t, "user", cfg.IHMUsername)
	assert.Equal(t, "secret", cfg.IHMPassword)
	assert.False(t, cfg.NCEIEnabled)
	assert.Equal(t, "vc-key", cfg.VisualCrossingAPIKey)
	assert.Equal(t, 58.0, cfg.VisualCrossingMinGust)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 0.5, cfg.ProviderRateLimitRPS)
	assert.Equal(t, 1, cfg.ProviderRateLimitBurst)
	assert.Equal(t, 36, cfg.DefaultLookbackMonths)
	assert.Equal(t, 2.5, cfg.DefaultRadiusMiles)
	assert.Equal(t, "/etc/storm/territories.yaml", cfg.TerritoriesFile)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MAPBOX_TIMEOUT", "bad"},
		{"PROVIDER_TIMEOUT", "0s"},
		{"PROVIDER_TIMEOUT", "-5s"},
		{"VISUALCROSSING_MIN_GUST_MPH", "windy"},
		{"PROVIDER_RATE_LIMIT_RPS", "0"},
		{"PROVIDER_RATE_LIMIT_BURST", "-1"},
		{"DEFAULT_LOOKBACK_MONTHS", "1.5"},
		{"DEFAULT_RADIUS_MILES", "-10"},
		{"NCEI_ENABLED", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_IHMPartialCredentials(t *testing.T) {
	t.Setenv("IHM_USERNAME", "user")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IHM_PASSWORD")
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("GEOCODE_CACHE_SIZE", "lots")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.GeocodeCacheSize)
}
