package geocode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
	"github.com/couchcryptid/storm-intel-service/internal/observability"
)

var testAddr = domain.AddressParts{Street: "2100 Ross Ave", City: "Dallas", State: "TX", Zip: "75201"}

// stubGeocoder returns a fixed answer and counts calls.
type stubGeocoder struct {
	name   string
	result domain.GeocodingResult
	err    error
	calls  int
	seen   []domain.AddressParts
}

func (s *stubGeocoder) Name() string { return s.name }

func (s *stubGeocoder) Geocode(_ context.Context, addr domain.AddressParts) (domain.GeocodingResult, error) {
	s.calls++
	s.seen = append(s.seen, addr)
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func found(lat, lng float64) domain.GeocodingResult {
	return domain.GeocodingResult{Lat: lat, Lng: lng, FormattedAddress: "somewhere"}
}

// --- Chain tests ---

func TestChain_PrimarySucceeds(t *testing.T) {
	primary := &stubGeocoder{name: "census", result: found(32.78, -96.80)}
	fallback := &stubGeocoder{name: "nominatim", result: found(1, 1)}
	metrics := observability.NewMetricsForTesting()

	chain := NewChain(discardLogger(), metrics, primary, fallback)
	result, err := chain.Geocode(context.Background(), testAddr)
	require.NoError(t, err)

	assert.Equal(t, 32.78, result.Lat)
	assert.Equal(t, "census", result.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls, "fallback must not be contacted")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("census", "success")), 0)
}

func TestChain_FallsThrough(t *testing.T) {
	tests := []struct {
		name    string
		primary *stubGeocoder
		outcome string
	}{
		{"primary error", &stubGeocoder{name: "primary", err: errors.New("503")}, "error"},
		{"primary empty", &stubGeocoder{name: "primary"}, "empty"},
		{"primary out of range", &stubGeocoder{name: "primary", result: found(120, -96)}, "empty"},
		{"primary zero point", &stubGeocoder{name: "primary", result: found(0, 0)}, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := &stubGeocoder{name: "nominatim", result: domain.GeocodingResult{Lat: 32.7, Lng: -96.8, Provider: "nominatim"}}
			metrics := observability.NewMetricsForTesting()

			chain := NewChain(discardLogger(), metrics, tt.primary, fallback)
			result, err := chain.Geocode(context.Background(), testAddr)
			require.NoError(t, err)

			assert.Equal(t, "nominatim", result.Provider)
			assert.Equal(t, 1, fallback.calls)
			assert.Equal(t, testAddr, fallback.seen[0], "each provider receives the full address parts")
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeRequests.WithLabelValues("primary", tt.outcome)), 0)
		})
	}
}

func TestChain_AllFail(t *testing.T) {
	chain := NewChain(discardLogger(), observability.NewMetricsForTesting(),
		&stubGeocoder{name: "a", err: errors.New("boom")},
		&stubGeocoder{name: "b"},
	)

	_, err := chain.Geocode(context.Background(), testAddr)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestChain_EmptyAddress(t *testing.T) {
	primary := &stubGeocoder{name: "a", result: found(1, 1)}
	chain := NewChain(discardLogger(), observability.NewMetricsForTesting(), primary)

	_, err := chain.Geocode(context.Background(), domain.AddressParts{})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Equal(t, 0, primary.calls)
}

func TestChain_CancelledContext(t *testing.T) {
	primary := &stubGeocoder{name: "a", result: found(1, 1)}
	chain := NewChain(discardLogger(), observability.NewMetricsForTesting(), primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.Geocode(ctx, testAddr)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, primary.calls)
}

// --- Cached tests ---

func TestCached_HitSkipsInner(t *testing.T) {
	inner := &stubGeocoder{name: "census", result: found(32.78, -96.80)}
	metrics := observability.NewMetricsForTesting()
	cached := NewCached(inner, 10, metrics)

	r1, err := cached.Geocode(context.Background(), testAddr)
	require.NoError(t, err)

	upper := testAddr
	upper.City = "DALLAS"
	r2, err := cached.Geocode(context.Background(), upper)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, "census", cached.Name())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCached_NotFoundIsNotCached(t *testing.T) {
	inner := &stubGeocoder{name: "census"}
	cached := NewCached(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Geocode(context.Background(), testAddr)
	_, _ = cached.Geocode(context.Background(), testAddr)

	assert.Equal(t, 2, inner.calls)
}

func TestCached_ErrorsPassThrough(t *testing.T) {
	inner := &stubGeocoder{name: "chain", err: domain.ErrAddressNotFound}
	cached := NewCached(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Geocode(context.Background(), testAddr)
	require.ErrorIs(t, err, domain.ErrAddressNotFound)
	assert.Equal(t, 0, cached.cache.len())
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.GeocodingResult{FormattedAddress: "A"})
	c.put("b", domain.GeocodingResult{FormattedAddress: "B"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.FormattedAddress)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{FormattedAddress: "A"})
	c.put("b", domain.GeocodingResult{FormattedAddress: "B"})
	c.put("c", domain.GeocodingResult{FormattedAddress: "C"}) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")
	assert.Equal(t, 2, c.len())

	result, ok := c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result.FormattedAddress)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{FormattedAddress: "A"})
	c.put("b", domain.GeocodingResult{FormattedAddress: "B"})
	c.get("a")
	c.put("c", domain.GeocodingResult{FormattedAddress: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{FormattedAddress: "A1"})
	c.put("a", domain.GeocodingResult{FormattedAddress: "A2"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.FormattedAddress)
	assert.Equal(t, 1, c.len())
}
