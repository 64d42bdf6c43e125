// Package visualcrossing derives wind events from the Visual Crossing
// weather timeline. The timeline reports daily aggregates, so only days
// whose peak gust reaches a configured threshold become events.
package visualcrossing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// Name is the data source label Visual Crossing events carry.
const Name = "Visual Crossing"

// DefaultMinGustMPH is the gust speed at which a day counts as a wind event.
const DefaultMinGustMPH = 50.0

// Config holds the Visual Crossing endpoint settings.
type Config struct {
	BaseURL    string
	APIKey     string
	MinGustMPH float64
	Timeout    time.Duration
}

// Client implements domain.EventProvider against the timeline API.
type Client struct {
	client *resty.Client
	cfg    Config
	logger *slog.Logger
}

// NewClient creates a Visual Crossing client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.MinGustMPH <= 0 {
		cfg.MinGustMPH = DefaultMinGustMPH
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{client: client, cfg: cfg, logger: logger}
}

// Name implements domain.EventProvider.
func (c *Client) Name() string { return Name }

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool { return c.cfg.APIKey != "" }

// FetchEvents implements domain.EventProvider.
func (c *Client) FetchEvents(ctx context.Context, q domain.Query) (domain.RawProviderPayload, error) {
	reports, err := c.FetchByCoordinates(ctx, q.Location.Lat, q.Location.Lng, q.LookbackMonths)
	if err != nil {
		return domain.RawProviderPayload{}, err
	}
	return domain.RawProviderPayload{Provider: Name, Search: q.Location, Reports: reports}, nil
}

// FetchByCoordinates returns one wind report per day in the lookback window
// whose gust reached MinGustMPH.
func (c *Client) FetchByCoordinates(ctx context.Context, lat, lng float64, months int) ([]domain.RawReport, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("visualcrossing: api key not configured")
	}

	start, end := domain.LookbackWindow(months)
	path := fmt.Sprintf("/timeline/%.6f,%.6f/%s/%s",
		lat, lng,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"))

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"unitGroup": "us",
			"include":   "days",
			"elements":  "datetime,windgust,windspeed,conditions",
			"key":       c.cfg.APIKey,
		}).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("visualcrossing timeline request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("visualcrossing timeline returned status %d", resp.StatusCode())
	}

	var body timeline
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode visualcrossing response: %w", err)
	}

	return c.toReports(body), nil
}

func (c *Client) toReports(body timeline) []domain.RawReport {
	loc, err := time.LoadLocation(body.Timezone)
	if err != nil || body.Timezone == "" {
		c.logger.Warn("unknown visualcrossing timezone, assuming UTC", "timezone", body.Timezone)
		loc = time.UTC
	}

	var lat, lng *float64
	if (domain.Coordinates{Lat: body.Latitude, Lng: body.Longitude}).Valid() {
		lat, lng = &body.Latitude, &body.Longitude
	}

	var reports []domain.RawReport
	for _, d := range body.Days {
		if d.WindGust == nil || *d.WindGust < c.cfg.MinGustMPH {
			continue
		}
		// Days are local calendar dates; noon keeps the date stable when
		// shifted into the reference zone.
		t, err := domain.ParseProviderTime("2006-01-02 15:04", d.Datetime+" 12:00", loc)
		if err != nil {
			c.logger.Warn("skipping visualcrossing day with bad date", "datetime", d.Datetime, "error", err)
			continue
		}
		gust := *d.WindGust
		reports = append(reports, domain.RawReport{
			UpstreamID: d.Datetime,
			KindText:   "wind gust",
			Time:       t,
			Lat:        lat,
			Lng:        lng,
			WindSpeed:  &gust,
		})
	}
	return reports
}

// Timeline API response types.

type timeline struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Days      []day   `json:"days"`
}

type day struct {
	Datetime   string   `json:"datetime"`
	WindGust   *float64 `json:"windgust"`
	WindSpeed  *float64 `json:"windspeed"`
	Conditions string   `json:"conditions"`
}
