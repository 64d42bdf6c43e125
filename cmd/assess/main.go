// Command assess runs a single storm assessment against the configured
// geocoders and providers and prints the result as JSON. It reads the same
// environment (and .env file) as the service but never touches Kafka.
//
// Usage:
//
//	go run ./cmd/assess -street "5800 Legacy Dr" -city Plano -state TX -zip 75024
//	go run ./cmd/assess -lat 32.7767 -lng -96.797 -months 12 -radius 5 -html
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/storm-intel-service/internal/app"
	"github.com/couchcryptid/storm-intel-service/internal/assessment"
	"github.com/couchcryptid/storm-intel-service/internal/config"
	"github.com/couchcryptid/storm-intel-service/internal/domain"
	"github.com/couchcryptid/storm-intel-service/internal/observability"
)

type options struct {
	street, city, state, zip string
	lat, lng                 float64
	months                   int
	radius                   float64
	territory                string
	html                     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.street, "street", "", "street address")
	flag.StringVar(&opts.city, "city", "", "city")
	flag.StringVar(&opts.state, "state", "", "two-letter state code")
	flag.StringVar(&opts.zip, "zip", "", "ZIP code")
	flag.Float64Var(&opts.lat, "lat", 0, "latitude, used instead of an address")
	flag.Float64Var(&opts.lng, "lng", 0, "longitude, used instead of an address")
	flag.IntVar(&opts.months, "months", 0, "lookback window in months (default from DEFAULT_LOOKBACK_MONTHS)")
	flag.Float64Var(&opts.radius, "radius", 0, "search radius in miles (default from DEFAULT_RADIUS_MILES)")
	flag.StringVar(&opts.territory, "territory", "", "territory id for hot-zone ranking (needs TERRITORIES_FILE)")
	flag.BoolVar(&opts.html, "html", false, "include the HTML rendering of the narrative")
	flag.Parse()

	req, err := buildRequest(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(req, os.Stdout))
}

func buildRequest(opts options) (assessment.Request, error) {
	req := assessment.Request{
		LookbackMonths: opts.months,
		RadiusMiles:    opts.radius,
		TerritoryID:    opts.territory,
		IncludeHTML:    opts.html,
	}
	addr := domain.AddressParts{Street: opts.street, City: opts.city, State: opts.state, Zip: opts.zip}
	switch {
	case !addr.IsZero():
		req.Address = &addr
	case opts.lat != 0 || opts.lng != 0:
		req.Location = &domain.Coordinates{Lat: opts.lat, Lng: opts.lng}
	default:
		return req, errors.New("an address (-street/-city/-state/-zip) or a location (-lat/-lng) is required")
	}
	return req, nil
}

func run(req assessment.Request, out io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	engine, err := app.Build(cfg, logger, observability.NewMetrics())
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := engine.Assessor.Assess(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "assess: %v\n", err)
		if errors.Is(err, domain.ErrInvalidRequest) {
			return 2
		}
		return 1
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		return 1
	}
	if result.Status == domain.StatusAddressNotFound {
		return 3
	}
	return 0
}
