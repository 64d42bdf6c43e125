// Package ncei fetches preliminary local storm reports (the "plsr" dataset)
// from the NOAA NCEI Severe Weather Data Inventory.
//
// The inventory is keyed by date range and search circle. Requests are made
// one calendar year at a time and the combined rows are filtered back to the
// exact lookback window.
package ncei

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// Name is the data source label NCEI events carry.
const Name = "NOAA NCEI"

// ZTIME is UTC; the inventory has emitted both layouts.
var ztimeLayouts = []string{"2006-01-02T15:04:05Z", "20060102150405"}

// Config holds the NCEI endpoint settings.
type Config struct {
	BaseURL string
	Enabled bool
	Timeout time.Duration
}

// Client implements domain.EventProvider against the SWDI web service.
type Client struct {
	client *resty.Client
	cfg    Config
	logger *slog.Logger
}

// NewClient creates an NCEI client rooted at cfg.BaseURL
// (for example https://www.ncei.noaa.gov/swdiws).
func NewClient(cfg Config, logger *slog.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{client: client, cfg: cfg, logger: logger}
}

// Name implements domain.EventProvider.
func (c *Client) Name() string { return Name }

// IsConfigured reports whether the provider is enabled. No key is needed.
func (c *Client) IsConfigured() bool { return c.cfg.Enabled }

// FetchEvents implements domain.EventProvider. NCEI has no address lookup.
func (c *Client) FetchEvents(ctx context.Context, q domain.Query) (domain.RawProviderPayload, error) {
	reports, err := c.FetchByCoordinates(ctx, q.Location.Lat, q.Location.Lng, q.LookbackMonths, q.RadiusMiles)
	if err != nil {
		return domain.RawProviderPayload{}, err
	}
	return domain.RawProviderPayload{Provider: Name, Search: q.Location, Reports: reports}, nil
}

// FetchByCoordinates returns storm reports within radiusMiles of a point
// over the last months calendar months.
func (c *Client) FetchByCoordinates(ctx context.Context, lat, lng float64, months int, radiusMiles float64) ([]domain.RawReport, error) {
	start, end := domain.LookbackWindow(months)
	startDate := domain.ReferenceDate(start)
	endDate := domain.ReferenceDate(end)

	var reports []domain.RawReport
	for year := start.Year(); year <= end.Year(); year++ {
		rows, err := c.fetchYear(ctx, year, end, lat, lng, radiusMiles)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			r, ok := c.toReport(row)
			if !ok {
				continue
			}
			if r.Time.Before(startDate) || r.Time.After(endDate) {
				continue
			}
			reports = append(reports, r)
		}
	}
	return reports, nil
}

// fetchYear requests Jan 1 through Dec 31 of year, or through end's date
// for the current year.
func (c *Client) fetchYear(ctx context.Context, year int, end time.Time, lat, lng, radiusMiles float64) ([]row, error) {
	last := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if year == end.Year() {
		last = end
	}
	path := fmt.Sprintf("/json/plsr/%d0101:%s", year, last.Format("20060102"))

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"center": fmt.Sprintf("%.4f,%.4f", lng, lat),
			"radius": strconv.FormatFloat(radiusMiles, 'f', -1, 64),
		}).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("ncei %d request: %w", year, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("ncei %d returned status %d", year, resp.StatusCode())
	}

	var body response
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode ncei %d response: %w", year, err)
	}
	c.logger.Debug("ncei year fetched", "year", year, "rows", len(body.Result))
	return body.Result, nil
}

func (c *Client) toReport(r row) (domain.RawReport, bool) {
	t, err := parseZTime(r.ZTime)
	if err != nil {
		c.logger.Warn("skipping ncei row with bad ZTIME", "ztime", r.ZTime, "error", err)
		return domain.RawReport{}, false
	}

	report := domain.RawReport{
		UpstreamID: r.ZTime + "|" + r.Lat + "|" + r.Lon,
		KindText:   r.Event,
		Time:       t,
		Lat:        parseOptional(r.Lat),
		Lng:        parseOptional(r.Lon),
	}

	magnitude := parseOptional(r.Magnitude)
	switch kind, _ := domain.ClassifyKind(r.Event); kind {
	case domain.KindHail:
		report.HailSizes = []*float64{magnitude}
	case domain.KindWind:
		report.WindSpeed = magnitude
	}
	return report, true
}

func parseZTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range ztimeLayouts {
		t, err := domain.ParseProviderTime(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseOptional turns the inventory's string numbers into pointers; blank or
// non-numeric values are absent.
func parseOptional(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// SWDI JSON response types. All values arrive as strings.

type response struct {
	Result []row `json:"result"`
}

type row struct {
	ZTime     string `json:"ZTIME"`
	Event     string `json:"EVENT"`
	Magnitude string `json:"MAGNITUDE"`
	Lat       string `json:"LAT"`
	Lon       string `json:"LON"`
}
