package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "airmarket/internal/errors"
	"airmarket/pkg/contracts/domain"
)

const (
	defaultOpenSkyURL = "https://opensky-network.org/api"

	// Anonymous clients get one request per 10 seconds
	defaultOpenSkyInterval = 10 * time.Second

	callsignPrefixLen = 3
)

// OpenSkyProvider reads recent departures from the public OpenSky Network
// flights endpoint. No credential is required.
type OpenSkyProvider struct {
	cfg      clientConfig
	lookback time.Duration
	limit    int
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewOpenSkyProvider creates the public live provider. minInterval bounds
// how often the API is called; zero selects the anonymous quota.
func NewOpenSkyProvider(lookback time.Duration, limit int, timeout, minInterval time.Duration, logger *slog.Logger, opts ...ClientOption) *OpenSkyProvider {
	if minInterval <= 0 {
		minInterval = defaultOpenSkyInterval
	}
	return &OpenSkyProvider{
		cfg:      newClientConfig(defaultOpenSkyURL, timeout, opts),
		lookback: lookback,
		limit:    limit,
		limiter:  rate.NewLimiter(rate.Every(minInterval), 1),
		logger:   logger.With(slog.String("component", "opensky_provider")),
	}
}

// Name implements Provider
func (p *OpenSkyProvider) Name() string {
	return domain.SourceOpenSky
}

type openSkyFlight struct {
	ICAO24              string  `json:"icao24"`
	FirstSeen           int64   `json:"firstSeen"`
	EstDepartureAirport *string `json:"estDepartureAirport"`
	LastSeen            int64   `json:"lastSeen"`
	EstArrivalAirport   *string `json:"estArrivalAirport"`
	Callsign            *string `json:"callsign"`
}

// FetchFlights implements Provider
func (p *OpenSkyProvider) FetchFlights(ctx context.Context) ([]domain.RawRecord, error) {
	// Fail over instead of queueing behind the quota
	if !p.limiter.Allow() {
		return nil, apperrors.NewProviderUnavailableError(p.Name(), fmt.Errorf("request quota exhausted"))
	}

	end := p.cfg.now().UTC()
	begin := end.Add(-p.lookback)

	params := url.Values{}
	params.Set("begin", strconv.FormatInt(begin.Unix(), 10))
	params.Set("end", strconv.FormatInt(end.Unix(), 10))
	endpoint := strings.TrimRight(p.cfg.baseURL, "/") + "/flights/all?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewProviderUnavailableError(p.Name(), err)
	}

	resp, err := p.cfg.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderUnavailableError(p.Name(), err)
	}
	defer resp.Body.Close()

	// OpenSky answers 404 when the window holds no flights
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewProviderUnavailableError(p.Name(),
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var flights []openSkyFlight
	if err := json.NewDecoder(resp.Body).Decode(&flights); err != nil {
		return nil, apperrors.NewProviderUnavailableError(p.Name(), fmt.Errorf("decode response: %w", err))
	}

	records := make([]domain.RawRecord, 0, min(len(flights), p.limit))
	for _, f := range flights {
		if len(records) >= p.limit {
			break
		}
		dep, arr := stringVal(f.EstDepartureAirport), stringVal(f.EstArrivalAirport)
		if dep == "" || arr == "" {
			continue
		}

		fields := map[string]interface{}{
			"estDepartureAirport": dep,
			"estArrivalAirport":   arr,
		}
		if f.FirstSeen > 0 {
			fields["firstSeen"] = f.FirstSeen
		}
		if callsign := stringVal(f.Callsign); callsign != "" {
			fields["callsign"] = callsign
			fields["callsignPrefix"] = callsign[:min(len(callsign), callsignPrefixLen)]
		}
		records = append(records, domain.RawRecord{Source: p.Name(), Fields: fields})
	}

	p.logger.DebugContext(ctx, "opensky flights decoded",
		slog.Int("received", len(flights)),
		slog.Int("usable", len(records)))

	return records, nil
}

func stringVal(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
