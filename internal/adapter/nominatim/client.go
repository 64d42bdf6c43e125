// Package nominatim geocodes free-text addresses with OpenStreetMap
// Nominatim. It is the open fallback when the structured geocoders miss.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// Client implements domain.Geocoder using the Nominatim search API.
type Client struct {
	client *resty.Client
	logger *slog.Logger
}

// NewClient creates a Nominatim client. Nominatim's usage policy requires
// an identifying User-Agent.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	return &Client{client: client, logger: logger}
}

// Name implements domain.Geocoder.
func (c *Client) Name() string { return "nominatim" }

// Geocode searches for the address as one line of free text.
func (c *Client) Geocode(ctx context.Context, addr domain.AddressParts) (domain.GeocodingResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":            addr.SingleLine(),
			"format":       "jsonv2",
			"limit":        "1",
			"countrycodes": "us",
		}).
		Get("/search")
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("nominatim search request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.GeocodingResult{}, fmt.Errorf("nominatim API returned status %d", resp.StatusCode())
	}

	var places []place
	if err := json.Unmarshal(resp.Body(), &places); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(places) == 0 {
		return domain.GeocodingResult{}, nil
	}

	p := places[0]
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("parse nominatim lat %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("parse nominatim lon %q: %w", p.Lon, err)
	}

	return domain.GeocodingResult{
		Lat:              lat,
		Lng:              lng,
		FormattedAddress: p.DisplayName,
		Confidence:       p.Importance,
		Provider:         c.Name(),
	}, nil
}

// Nominatim returns coordinates as strings.
type place struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}
