package census

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

var testAddr = domain.AddressParts{Street: "2100 Ross Ave", City: "Dallas", State: "TX", Zip: "75201"}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Geocode_Match(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/locations/address", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2100 Ross Ave", q.Get("street"))
		assert.Equal(t, "Dallas", q.Get("city"))
		assert.Equal(t, "TX", q.Get("state"))
		assert.Equal(t, "75201", q.Get("zip"))
		assert.Equal(t, "Public_AR_Current", q.Get("benchmark"))
		assert.Equal(t, "json", q.Get("format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"addressMatches":[
			{"matchedAddress":"2100 ROSS AVE, DALLAS, TX, 75201","coordinates":{"x":-96.7990,"y":32.7880}}
		]}}`))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Geocode(context.Background(), testAddr)
	require.NoError(t, err)

	assert.Equal(t, 32.7880, result.Lat)
	assert.Equal(t, -96.7990, result.Lng)
	assert.Equal(t, "2100 ROSS AVE, DALLAS, TX, 75201", result.FormattedAddress)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, "census", result.Provider)
}

func TestClient_Geocode_AmbiguousLowersConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"addressMatches":[
			{"matchedAddress":"A","coordinates":{"x":-96.1,"y":32.1}},
			{"matchedAddress":"B","coordinates":{"x":-96.2,"y":32.2}}
		]}}`))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Geocode(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, "A", result.FormattedAddress)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestClient_Geocode_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"addressMatches":[]}}`))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Geocode(context.Background(), testAddr)
	require.NoError(t, err)
	assert.False(t, result.Found())
}

func TestClient_Geocode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), testAddr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Geocode_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), testAddr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode census response")
}
