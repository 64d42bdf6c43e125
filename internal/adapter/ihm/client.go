// Package ihm fetches hail impact history from an IHM-style hail mapping
// service. The service answers both by street address and by coordinates,
// reports dates in US Central local time without a zone suffix, and
// estimates hail size in radius bands around the queried point.
package ihm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// Name is the data source label IHM events carry.
const Name = "IHM"

const dateLayout = "2006-01-02T15:04:05"

var errNotConfigured = errors.New("ihm: credentials not configured")

// Config holds the credentials and endpoint for the IHM API.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client implements domain.EventProvider against the IHM API.
type Client struct {
	client  *resty.Client
	cfg     Config
	central *time.Location
	logger  *slog.Logger
}

// NewClient creates an IHM client. It panics only if the embedded
// timezone database is missing America/Chicago.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	central, err := time.LoadLocation("America/Chicago")
	if err != nil {
		panic(fmt.Sprintf("ihm: load central zone: %v", err))
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.Username, cfg.Password).
		SetHeader("Accept", "application/json")

	return &Client{client: client, cfg: cfg, central: central, logger: logger}
}

// Name implements domain.EventProvider.
func (c *Client) Name() string { return Name }

// IsConfigured reports whether both credentials are present.
func (c *Client) IsConfigured() bool {
	return c.cfg.Username != "" && c.cfg.Password != ""
}

// FetchEvents prefers the address lookup when the query carries an address,
// and falls back to the marker search around the resolved location.
func (c *Client) FetchEvents(ctx context.Context, q domain.Query) (domain.RawProviderPayload, error) {
	var (
		reports []domain.RawReport
		err     error
	)
	if q.Address != nil && !q.Address.IsZero() {
		reports, err = c.FetchByAddress(ctx, *q.Address, q.LookbackMonths)
	} else {
		reports, err = c.FetchByCoordinates(ctx, q.Location.Lat, q.Location.Lng, q.LookbackMonths, q.RadiusMiles)
	}
	if err != nil {
		return domain.RawProviderPayload{}, err
	}
	return domain.RawProviderPayload{Provider: Name, Search: q.Location, Reports: reports}, nil
}

// FetchByAddress returns the hail impact dates recorded for one address.
func (c *Client) FetchByAddress(ctx context.Context, addr domain.AddressParts, months int) ([]domain.RawReport, error) {
	var body addressResponse
	err := c.get(ctx, "/ImpactDatesForAddress", map[string]string{
		"address": addr.Street,
		"city":    addr.City,
		"state":   addr.State,
		"zip":     addr.Zip,
		"months":  strconv.Itoa(months),
	}, &body)
	if err != nil {
		return nil, err
	}
	return c.toReports(body.ImpactDates), nil
}

// FetchByCoordinates returns hail markers within radiusMiles of a point.
func (c *Client) FetchByCoordinates(ctx context.Context, lat, lng float64, months int, radiusMiles float64) ([]domain.RawReport, error) {
	var body markersResponse
	err := c.get(ctx, "/HailMarkers", map[string]string{
		"lat":    strconv.FormatFloat(lat, 'f', 6, 64),
		"lng":    strconv.FormatFloat(lng, 'f', 6, 64),
		"radius": strconv.FormatFloat(radiusMiles, 'f', -1, 64),
		"months": strconv.Itoa(months),
	}, &body)
	if err != nil {
		return nil, err
	}
	return c.toReports(body.Markers), nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	if !c.IsConfigured() {
		return errNotConfigured
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return fmt.Errorf("ihm %s request: %w", path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ihm %s returned status %d", path, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode ihm %s response: %w", path, err)
	}
	return nil
}

func (c *Client) toReports(items []impact) []domain.RawReport {
	reports := make([]domain.RawReport, 0, len(items))
	for _, it := range items {
		t, err := domain.ParseProviderTime(dateLayout, it.Date, c.central)
		if err != nil {
			c.logger.Warn("skipping ihm report with bad date", "id", it.ID, "error", err)
			continue
		}
		kind := it.EventType
		if kind == "" {
			kind = "hail"
		}
		reports = append(reports, domain.RawReport{
			UpstreamID: it.ID,
			KindText:   kind,
			Time:       t,
			Lat:        it.Lat,
			Lng:        it.Lng,
			HailSizes:  []*float64{it.SizeAtLocation, it.SizeWithin1Mile, it.SizeWithin3Miles, it.SizeWithin10Miles},
			WindSpeed:  it.WindSpeed,
		})
	}
	return reports
}

// IHM API response types.

type addressResponse struct {
	ImpactDates []impact `json:"impactDates"`
}

type markersResponse struct {
	Markers []impact `json:"markers"`
}

type impact struct {
	ID                string   `json:"id"`
	Date              string   `json:"date"` // Central local, no zone
	EventType         string   `json:"eventType"`
	Lat               *float64 `json:"lat"`
	Lng               *float64 `json:"lng"`
	SizeAtLocation    *float64 `json:"sizeAtLocation"`
	SizeWithin1Mile   *float64 `json:"sizeWithin1Mile"`
	SizeWithin3Miles  *float64 `json:"sizeWithin3Miles"`
	SizeWithin10Miles *float64 `json:"sizeWithin10Miles"`
	WindSpeed         *float64 `json:"windSpeed"`
}
