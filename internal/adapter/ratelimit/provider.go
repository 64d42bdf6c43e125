// Package ratelimit throttles calls to storm data providers.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// Provider wraps an EventProvider with a token-bucket limiter. The wrapped
// provider keeps its name so events and data sources are unchanged.
type Provider struct {
	inner   domain.EventProvider
	limiter *rate.Limiter
}

// New wraps inner. rps may be fractional for less than one request per
// second; burst is the bucket size.
func New(inner domain.EventProvider, rps float64, burst int) *Provider {
	return &Provider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Name implements domain.EventProvider.
func (p *Provider) Name() string { return p.inner.Name() }

// IsConfigured implements domain.EventProvider.
func (p *Provider) IsConfigured() bool { return p.inner.IsConfigured() }

// FetchEvents waits for a token, or for ctx to end, then forwards the call.
func (p *Provider) FetchEvents(ctx context.Context, q domain.Query) (domain.RawProviderPayload, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.RawProviderPayload{}, fmt.Errorf("%s rate limit wait: %w", p.inner.Name(), err)
	}
	return p.inner.FetchEvents(ctx, q)
}
