package ingestion

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	apperrors "airmarket/internal/errors"
	"airmarket/internal/infrastructure"
	"airmarket/pkg/contracts/domain"
)

// Provider is a source of raw flight listings
type Provider interface {
	// Name identifies the provider in logs and metrics
	Name() string
	// FetchFlights returns the provider's current listings
	FetchFlights(ctx context.Context) ([]domain.RawRecord, error)
}

// Chain tries providers in priority order until one returns records
type Chain struct {
	providers []Provider
	logger    *slog.Logger
	metrics   *infrastructure.PipelineMetrics
}

// NewChain creates a fallback chain. The last provider should be one that
// always succeeds, such as the synthetic generator.
func NewChain(logger *slog.Logger, metrics *infrastructure.PipelineMetrics, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger.With(slog.String("component", "provider_chain")),
		metrics:   metrics,
	}
}

// Name implements Provider
func (c *Chain) Name() string {
	return "chain"
}

// Providers returns the configured provider names in priority order
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Invalidate drops cached results held by any provider in the chain
func (c *Chain) Invalidate() {
	for _, p := range c.providers {
		if inv, ok := p.(interface{ Invalidate() }); ok {
			inv.Invalidate()
		}
	}
}

// AcceptFunc decides whether a provider's records are usable. Returning
// false moves the chain on to the next provider.
type AcceptFunc func(records []domain.RawRecord) bool

// FetchFlights returns the first non-empty result. Provider failures are
// logged and skipped; only cancellation of ctx or exhaustion of every
// provider is reported to the caller.
func (c *Chain) FetchFlights(ctx context.Context) ([]domain.RawRecord, error) {
	return c.FetchAccepted(ctx, nil)
}

// FetchAccepted is FetchFlights with an extra usability check applied to
// each non-empty result. A nil accept takes any non-empty result.
func (c *Chain) FetchAccepted(ctx context.Context, accept AcceptFunc) ([]domain.RawRecord, error) {
	attempted := make([]string, 0, len(c.providers))

	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attempted = append(attempted, p.Name())
		start := time.Now()
		records, err := p.FetchFlights(ctx)

		switch {
		case err != nil:
			c.metrics.RecordProviderFetch(ctx, p.Name(), "failure")
			c.logger.WarnContext(ctx, "provider failed, falling back",
				slog.String("provider", p.Name()),
				slog.String("error", err.Error()),
				slog.Duration("duration", time.Since(start)))
		case len(records) == 0:
			c.metrics.RecordProviderFetch(ctx, p.Name(), "empty")
			c.logger.WarnContext(ctx, "provider returned no flights, falling back",
				slog.String("provider", p.Name()))
		case accept != nil && !accept(records):
			c.metrics.RecordProviderFetch(ctx, p.Name(), "unusable")
			c.logger.WarnContext(ctx, "provider returned no usable flights, falling back",
				slog.String("provider", p.Name()),
				slog.Int("records", len(records)))
		default:
			c.metrics.RecordProviderFetch(ctx, p.Name(), "success")
			c.logger.InfoContext(ctx, "flight data fetched",
				slog.String("provider", p.Name()),
				slog.Int("records", len(records)),
				slog.Duration("duration", time.Since(start)))
			return records, nil
		}
	}

	return nil, apperrors.NewEmptyDatasetError(attempted)
}

// clientConfig holds settings shared by the live HTTP providers
type clientConfig struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// ClientOption configures a live provider
type ClientOption func(*clientConfig)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) { cfg.httpClient = c }
}

// WithBaseURL overrides the API base URL. An empty value keeps the default.
func WithBaseURL(u string) ClientOption {
	return func(cfg *clientConfig) {
		if u != "" {
			cfg.baseURL = u
		}
	}
}

// WithClock overrides the time source used for request windows and dates
func WithClock(now func() time.Time) ClientOption {
	return func(cfg *clientConfig) { cfg.now = now }
}

func newClientConfig(defaultBaseURL string, timeout time.Duration, opts []ClientOption) clientConfig {
	cfg := clientConfig{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
