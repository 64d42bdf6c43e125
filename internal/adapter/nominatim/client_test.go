package nominatim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

const testUserAgent = "storm-intel-test/0.1"

func testClient(baseURL string) *Client {
	return NewClient(baseURL, testUserAgent, 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Geocode_RebuildsSingleLineQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "2100 Ross Ave, Dallas, TX 75201", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`[{"lat":"32.7881","lon":"-96.7992","display_name":"Ross Avenue, Dallas, Texas","importance":0.41}]`))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Geocode(context.Background(), domain.AddressParts{
		Street: "2100 Ross Ave", City: "Dallas", State: "TX", Zip: "75201",
	})
	require.NoError(t, err)

	assert.Equal(t, 32.7881, result.Lat)
	assert.Equal(t, -96.7992, result.Lng)
	assert.Equal(t, "Ross Avenue, Dallas, Texas", result.FormattedAddress)
	assert.Equal(t, 0.41, result.Confidence)
	assert.Equal(t, "nominatim", result.Provider)
}

func TestClient_Geocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Geocode(context.Background(), domain.AddressParts{Zip: "00000"})
	require.NoError(t, err)
	assert.False(t, result.Found())
}

func TestClient_Geocode_BadCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"north","lon":"-96.7"}]`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), domain.AddressParts{City: "Dallas"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse nominatim lat")
}

func TestClient_Geocode_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), domain.AddressParts{City: "Dallas"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
