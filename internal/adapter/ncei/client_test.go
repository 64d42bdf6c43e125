package ncei

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

var search = domain.Coordinates{Lat: 32.7767, Lng: -96.7970}

func testClient(baseURL string) *Client {
	return NewClient(Config{BaseURL: baseURL, Enabled: true, Timeout: 2 * time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func freezeClock(t *testing.T, now time.Time) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func TestClient_FetchByCoordinates_YearRequests(t *testing.T) {
	freezeClock(t, time.Date(2024, 8, 15, 16, 0, 0, 0, time.UTC))

	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		assert.Equal(t, "-96.7970,32.7767", r.URL.Query().Get("center"))
		assert.Equal(t, "10", r.URL.Query().Get("radius"))
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchByCoordinates(context.Background(), search.Lat, search.Lng, 24, 10)
	require.NoError(t, err)

	sort.Strings(paths)
	assert.Equal(t, []string{
		"/json/plsr/20220101:20221231",
		"/json/plsr/20230101:20231231",
		"/json/plsr/20240101:20240815",
	}, paths)
}

func TestClient_FetchEvents_FiltersToWindow(t *testing.T) {
	freezeClock(t, time.Date(2024, 8, 15, 16, 0, 0, 0, time.UTC))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/plsr/20240101:20240815" {
			_, _ = w.Write([]byte(`{"result":[]}`))
			return
		}
		// Window is 2024-02-15 .. 2024-08-15.
		_, _ = w.Write([]byte(`{"result":[
			{"ZTIME":"2024-01-20T20:00:00Z","EVENT":"HAIL","MAGNITUDE":"1.00","LAT":"32.80","LON":"-96.80"},
			{"ZTIME":"2024-05-12T21:34:00Z","EVENT":"HAIL","MAGNITUDE":"1.75","LAT":"32.80","LON":"-96.80"},
			{"ZTIME":"20240513020000","EVENT":"TSTM WND GST","MAGNITUDE":"65","LAT":"","LON":""},
			{"ZTIME":"2024-06-01T18:00:00Z","EVENT":"TORNADO","MAGNITUDE":"","LAT":"32.75","LON":"-96.70"},
			{"ZTIME":"2024-06-02T18:00:00Z","EVENT":"FLOOD","MAGNITUDE":"","LAT":"32.75","LON":"-96.70"},
			{"ZTIME":"garbage","EVENT":"HAIL","MAGNITUDE":"1.00"}
		]}`))
	}))
	defer srv.Close()

	payload, err := testClient(srv.URL).FetchEvents(context.Background(), domain.Query{
		Location: search, LookbackMonths: 6, RadiusMiles: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, Name, payload.Provider)
	require.Len(t, payload.Reports, 4, "January row is outside the window and garbage ZTIME is skipped")

	events := domain.Normalize(payload)
	require.Len(t, events, 3, "flood is dropped by the normalizer")

	assert.Equal(t, domain.KindHail, events[0].Kind)
	assert.Equal(t, 1.75, *events[0].HailSize)
	assert.Equal(t, "2024-05-12", events[0].Date.Format("2006-01-02"))

	assert.Equal(t, domain.KindWind, events[1].Kind)
	assert.Equal(t, 65.0, *events[1].WindSpeed)
	// 02:00 UTC on May 13 is the evening of May 12 in New York.
	assert.Equal(t, "2024-05-12", events[1].Date.Format("2006-01-02"))
	assert.Equal(t, search.Lat, events[1].Latitude)

	assert.Equal(t, domain.KindTornado, events[2].Kind)
	assert.Equal(t, domain.SeveritySevere, events[2].Severity)
}

func TestClient_FetchByCoordinates_YearFailureFailsProvider(t *testing.T) {
	freezeClock(t, time.Date(2024, 8, 15, 16, 0, 0, 0, time.UTC))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json/plsr/20230101:20231231" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchByCoordinates(context.Background(), search.Lat, search.Lng, 18, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("ncei %d returned status 503", 2023))
}

func TestClient_IsConfigured(t *testing.T) {
	assert.True(t, testClient("http://x").IsConfigured())
	disabled := NewClient(Config{BaseURL: "http://x"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.False(t, disabled.IsConfigured())
}

func TestParseOptional(t *testing.T) {
	assert.Nil(t, parseOptional(""))
	assert.Nil(t, parseOptional("  "))
	assert.Nil(t, parseOptional("UNK"))
	require.NotNil(t, parseOptional("1.75"))
	assert.Equal(t, 1.75, *parseOptional(" 1.75 "))
}
