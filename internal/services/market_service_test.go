package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"airmarket/internal/dataprocessing"
	apperrors "airmarket/internal/errors"
	"airmarket/internal/exporter"
	"airmarket/internal/ingestion"
	"airmarket/internal/narrative"
	"airmarket/internal/pipeline"
	"airmarket/pkg/contracts/domain"
)

var testNow = time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockNarrator struct {
	mock.Mock
}

func (m *MockNarrator) Narrate(ctx context.Context, summary domain.DataSummary) string {
	args := m.Called(ctx, summary)
	return args.String(0)
}

func (m *MockNarrator) Enabled() bool {
	return m.Called().Bool(0)
}

func newTestService(t *testing.T, narrator Narrator) *MarketService {
	t.Helper()
	logger := discardLogger()
	synthetic := ingestion.NewSyntheticProvider(42, 7, ingestion.WithSyntheticClock(clock))
	chain := ingestion.NewChain(logger, nil, synthetic)
	p := pipeline.New(chain,
		dataprocessing.NewNormalizer(logger, dataprocessing.WithNormalizerClock(clock)),
		dataprocessing.NewFilterChain(logger, nil),
		logger,
		pipeline.WithClock(clock))
	exp := exporter.New(logger, exporter.WithClock(clock))

	svc := NewMarketService(p, exp, narrator, "", logger)
	svc.now = clock
	return svc
}

func TestMarketService_Analyze(t *testing.T) {
	svc := newTestService(t, nil)

	analysis, err := svc.Analyze(context.Background(), domain.FilterCriteria{
		DepartureCity:   "New York",
		DestinationCity: "Los Angeles",
	})
	require.NoError(t, err)

	view := analysis.View
	require.False(t, view.Empty())
	assert.Equal(t, domain.SourceSynthetic, view.Source)
	assert.Equal(t, testNow, analysis.FetchedAt)
	assert.Len(t, view.Steps, 2)
	assert.GreaterOrEqual(t, len(view.Records), 8, "one popular flight per synthetic day")
	for _, r := range view.Records {
		assert.Equal(t, "New York → Los Angeles", r.Route)
	}

	require.Len(t, analysis.Routes, 1)
	assert.Equal(t, len(view.Records), analysis.Routes[0].FlightCount)
	assert.NotNil(t, analysis.Demand)
	assert.Contains(t, analysis.Narrative, "Most Popular Route: New York → Los Angeles")
	assert.Contains(t, analysis.Narrative, "Revenue per Passenger")
}

func TestMarketService_AnalyzeEmptyView(t *testing.T) {
	svc := newTestService(t, nil)

	analysis, err := svc.Analyze(context.Background(), domain.FilterCriteria{DepartureCity: "Atlantis"})
	require.NoError(t, err)

	assert.True(t, analysis.View.Empty())
	assert.Contains(t, analysis.View.Guidance, "No flights found departing from Atlantis")
	assert.Nil(t, analysis.Demand)
	assert.Contains(t, analysis.Narrative, narrative.NoRouteData)
}

func TestMarketService_AnalyzeInvalidCriteria(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Analyze(context.Background(), domain.FilterCriteria{
		PriceRange: &domain.FloatRange{Min: 500, Max: 100},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestMarketService_Options(t *testing.T) {
	svc := newTestService(t, nil)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.Wildcard, opts.DepartureCities[0])
	assert.Contains(t, opts.DepartureCities, "New York")
	assert.Contains(t, opts.Airlines, "Delta")
	require.NotNil(t, opts.Dates)
	assert.Equal(t, domain.Day(testNow), opts.Dates.End)
}

type countingProvider struct {
	ingestion.Provider
	calls int
}

func (c *countingProvider) FetchFlights(ctx context.Context) ([]domain.RawRecord, error) {
	c.calls++
	return c.Provider.FetchFlights(ctx)
}

func TestMarketService_Reload(t *testing.T) {
	logger := discardLogger()
	source := &countingProvider{Provider: ingestion.NewSyntheticProvider(42, 7, ingestion.WithSyntheticClock(clock))}
	chain := ingestion.NewChain(logger, nil, ingestion.NewCachedProvider(source, time.Hour, logger))
	p := pipeline.New(chain,
		dataprocessing.NewNormalizer(logger, dataprocessing.WithNormalizerClock(clock)),
		dataprocessing.NewFilterChain(logger, nil),
		logger,
		pipeline.WithClock(clock))
	svc := NewMarketService(p, exporter.New(logger), nil, "", logger)

	_, err := svc.Options(context.Background())
	require.NoError(t, err)
	_, err = svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls, "second call is served from the cache")

	result, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
	assert.Equal(t, domain.SourceSynthetic, result.Source)
	assert.Equal(t, testNow, result.FetchedAt)
	assert.Positive(t, result.Records)
	assert.NotEmpty(t, result.SnapshotID)
}

func TestMarketService_Narrative(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		svc := newTestService(t, nil)

		result, err := svc.Narrative(context.Background(), domain.FilterCriteria{})
		require.NoError(t, err)
		assert.False(t, result.AIEnabled)
		assert.Equal(t, narrative.NotConfiguredMessage, result.AI)
		assert.NotEmpty(t, result.Narrative)
		assert.Positive(t, result.Summary.TotalFlights)
	})

	t.Run("enabled", func(t *testing.T) {
		narrator := new(MockNarrator)
		narrator.On("Enabled").Return(true)
		narrator.On("Narrate", mock.Anything, mock.MatchedBy(func(s domain.DataSummary) bool {
			return s.AirlineCount == 1
		})).Return("- Delta dominates").Once()

		svc := newTestService(t, narrator)
		result, err := svc.Narrative(context.Background(), domain.FilterCriteria{Airline: "Delta"})
		require.NoError(t, err)

		assert.True(t, result.AIEnabled)
		assert.Equal(t, "- Delta dominates", result.AI)
		narrator.AssertExpectations(t)
	})

	t.Run("empty view skips the AI call", func(t *testing.T) {
		narrator := new(MockNarrator)
		svc := newTestService(t, narrator)

		_, err := svc.Narrative(context.Background(), domain.FilterCriteria{Airline: "Pan Am"})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyFilterResult))
		narrator.AssertNotCalled(t, "Narrate", mock.Anything, mock.Anything)
	})
}

func TestMarketService_Export(t *testing.T) {
	svc := newTestService(t, nil)

	result, err := svc.Export(context.Background(), domain.FilterCriteria{DepartureCity: "Chicago"}, "csv")
	require.NoError(t, err)

	assert.Equal(t, "airline_analysis_20240304_103000.csv", result.Filename)
	assert.Equal(t, domain.FormatCSV.MIMEType(), result.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, result.Records+1)
	assert.Equal(t, exporter.RecordHeaders, rows[0])
	for _, row := range rows[1:] {
		assert.Equal(t, "Chicago", row[1])
	}
}

func TestMarketService_ExportUnsupportedFormat(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Export(context.Background(), domain.FilterCriteria{}, "docx")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnsupportedFormat))
}
