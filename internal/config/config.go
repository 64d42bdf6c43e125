package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Geocoding.
	MapboxToken        string
	MapboxEnabled      bool
	MapboxTimeout      time.Duration
	GeocodeCacheSize   int
	CensusBaseURL      string
	NominatimBaseURL   string
	NominatimUserAgent string

	// Storm data providers.
	IHMBaseURL             string
	IHMUsername            string
	IHMPassword            string
	NCEIBaseURL            string
	NCEIEnabled            bool
	VisualCrossingBaseURL  string
	VisualCrossingAPIKey   string
	VisualCrossingMinGust  float64
	ProviderTimeout        time.Duration
	ProviderRateLimitRPS   float64
	ProviderRateLimitBurst int
	DefaultLookbackMonths  int
	DefaultRadiusMiles     float64
	TerritoriesFile        string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	providerTimeout, err := parsePositiveDuration("PROVIDER_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	minGust, err := parsePositiveFloat("VISUALCROSSING_MIN_GUST_MPH", "50")
	if err != nil {
		return nil, err
	}

	rps, err := parsePositiveFloat("PROVIDER_RATE_LIMIT_RPS", "5")
	if err != nil {
		return nil, err
	}

	burst, err := parsePositiveInt("PROVIDER_RATE_LIMIT_BURST", "2")
	if err != nil {
		return nil, err
	}

	lookback, err := parsePositiveInt("DEFAULT_LOOKBACK_MONTHS", "24")
	if err != nil {
		return nil, err
	}

	radius, err := parsePositiveFloat("DEFAULT_RADIUS_MILES", "10")
	if err != nil {
		return nil, err
	}

	nceiEnabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("NCEI_ENABLED", "true"))
	if err != nil {
		return nil, errors.New("invalid NCEI_ENABLED")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "storm-assessment-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "storm-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "storm-intel"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:        mapboxToken,
		MapboxEnabled:      mapboxEnabled,
		MapboxTimeout:      mapboxTimeout,
		GeocodeCacheSize:   parseCacheSize(),
		CensusBaseURL:      sharedcfg.EnvOrDefault("CENSUS_BASE_URL", "https://geocoding.geo.census.gov/geocoder"),
		NominatimBaseURL:   sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "storm-intel-service/1.0"),

		IHMBaseURL:             sharedcfg.EnvOrDefault("IHM_BASE_URL", "https://maps.interactivehailmaps.com/ExternalApi"),
		IHMUsername:            os.Getenv("IHM_USERNAME"),
		IHMPassword:            os.Getenv("IHM_PASSWORD"),
		NCEIBaseURL:            sharedcfg.EnvOrDefault("NCEI_BASE_URL", "https://www.ncei.noaa.gov/swdiws"),
		NCEIEnabled:            nceiEnabled,
		VisualCrossingBaseURL:  sharedcfg.EnvOrDefault("VISUALCROSSING_BASE_URL", "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services"),
		VisualCrossingAPIKey:   os.Getenv("VISUALCROSSING_API_KEY"),
		VisualCrossingMinGust:  minGust,
		ProviderTimeout:        providerTimeout,
		ProviderRateLimitRPS:   rps,
		ProviderRateLimitBurst: burst,
		DefaultLookbackMonths:  lookback,
		DefaultRadiusMiles:     radius,
		TerritoriesFile:        os.Getenv("TERRITORIES_FILE"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if (cfg.IHMUsername == "") != (cfg.IHMPassword == "") {
		return nil, errors.New("IHM_USERNAME and IHM_PASSWORD must be set together")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return v, nil
}

func parsePositiveInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
