// Package census geocodes US street addresses with the Census Bureau
// geocoder. The service is keyless and matches against structured
// street, city, state and ZIP fields.
package census

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

const benchmark = "Public_AR_Current"

// Client implements domain.Geocoder using the Census Bureau geocoder.
type Client struct {
	client *resty.Client
	logger *slog.Logger
}

// NewClient creates a Census geocoding client rooted at baseURL
// (for example https://geocoding.geo.census.gov/geocoder).
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{client: client, logger: logger}
}

// Name implements domain.Geocoder.
func (c *Client) Name() string { return "census" }

// Geocode implements domain.Geocoder.
func (c *Client) Geocode(ctx context.Context, addr domain.AddressParts) (domain.GeocodingResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"street":    addr.Street,
			"city":      addr.City,
			"state":     addr.State,
			"zip":       addr.Zip,
			"benchmark": benchmark,
			"format":    "json",
		}).
		Get("/locations/address")
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("census geocode request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.GeocodingResult{}, fmt.Errorf("census API returned status %d", resp.StatusCode())
	}

	var body response
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode census response: %w", err)
	}

	matches := body.Result.AddressMatches
	c.logger.Debug("census geocode", "matches", len(matches), "duration", resp.Time())
	if len(matches) == 0 {
		return domain.GeocodingResult{}, nil
	}

	m := matches[0]
	return domain.GeocodingResult{
		Lat:              m.Coordinates.Y,
		Lng:              m.Coordinates.X,
		FormattedAddress: m.MatchedAddress,
		Confidence:       1.0 / float64(len(matches)),
		Provider:         c.Name(),
	}, nil
}

// Census API response types.

type response struct {
	Result struct {
		AddressMatches []addressMatch `json:"addressMatches"`
	} `json:"result"`
}

type addressMatch struct {
	MatchedAddress string `json:"matchedAddress"`
	Coordinates    struct {
		X float64 `json:"x"` // longitude
		Y float64 `json:"y"` // latitude
	} `json:"coordinates"`
}
