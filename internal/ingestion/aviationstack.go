package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "airmarket/internal/errors"
	"airmarket/pkg/contracts/domain"
)

const defaultAviationStackURL = "http://api.aviationstack.com/v1"

var errMissingAPIKey = errors.New("api key not configured")

// AviationStackProvider fetches scheduled flights from the AviationStack API.
// The API carries no commercial fields, so price and load figures are left
// to the normalizer's simulation ranges.
type AviationStackProvider struct {
	cfg    clientConfig
	apiKey string
	limit  int
	logger *slog.Logger
}

// NewAviationStackProvider creates the credentialed live provider
func NewAviationStackProvider(apiKey string, limit int, timeout time.Duration, logger *slog.Logger, opts ...ClientOption) *AviationStackProvider {
	return &AviationStackProvider{
		cfg:    newClientConfig(defaultAviationStackURL, timeout, opts),
		apiKey: strings.TrimSpace(apiKey),
		limit:  limit,
		logger: logger.With(slog.String("component", "aviationstack_provider")),
	}
}

// Name implements Provider
func (p *AviationStackProvider) Name() string {
	return domain.SourceAviationStack
}

type aviationStackResponse struct {
	Data  []aviationStackFlight `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type aviationStackFlight struct {
	FlightDate string                 `json:"flight_date"`
	Departure  *aviationStackEndpoint `json:"departure"`
	Arrival    *aviationStackEndpoint `json:"arrival"`
	Airline    struct {
		Name string `json:"name"`
	} `json:"airline"`
	Flight struct {
		IATA   string `json:"iata"`
		Number string `json:"number"`
	} `json:"flight"`
}

type aviationStackEndpoint struct {
	Airport string `json:"airport"`
	IATA    string `json:"iata"`
}

// FetchFlights implements Provider
func (p *AviationStackProvider) FetchFlights(ctx context.Context) ([]domain.RawRecord, error) {
	if p.apiKey == "" {
		return nil, apperrors.NewProviderUnavailableError(p.Name(), errMissingAPIKey)
	}

	params := url.Values{}
	params.Set("access_key", p.apiKey)
	params.Set("limit", strconv.Itoa(p.limit))
	endpoint := strings.TrimRight(p.cfg.baseURL, "/") + "/flights?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewProviderUnavailableError(p.Name(), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.cfg.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderUnavailableError(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewProviderUnavailableError(p.Name(),
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload aviationStackResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewProviderUnavailableError(p.Name(), fmt.Errorf("decode response: %w", err))
	}
	if payload.Error != nil {
		return nil, apperrors.NewProviderUnavailableError(p.Name(),
			fmt.Errorf("api error %s: %s", payload.Error.Code, payload.Error.Message))
	}

	records := make([]domain.RawRecord, 0, len(payload.Data))
	for _, f := range payload.Data {
		if f.Departure == nil || f.Arrival == nil {
			continue
		}
		fields := map[string]interface{}{}
		setIfPresent(fields, "flight_date", f.FlightDate)
		setIfPresent(fields, "departure.airport", f.Departure.Airport)
		setIfPresent(fields, "arrival.airport", f.Arrival.Airport)
		setIfPresent(fields, "airline.name", f.Airline.Name)
		setIfPresent(fields, "flight.iata", f.Flight.IATA)
		records = append(records, domain.RawRecord{Source: p.Name(), Fields: fields})
	}

	p.logger.DebugContext(ctx, "aviationstack flights decoded",
		slog.Int("received", len(payload.Data)),
		slog.Int("usable", len(records)))

	return records, nil
}

func setIfPresent(fields map[string]interface{}, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		fields[key] = v
	}
}
