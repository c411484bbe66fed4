package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airmarket/internal/dataprocessing"
	apperrors "airmarket/internal/errors"
	"airmarket/internal/ingestion"
	"airmarket/pkg/contracts/domain"
)

var testNow = time.Date(2024, time.July, 15, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingProvider struct{}

func (failingProvider) Name() string { return "aviationstack" }

func (failingProvider) FetchFlights(ctx context.Context) ([]domain.RawRecord, error) {
	return nil, apperrors.NewProviderUnavailableError("aviationstack", errors.New("timeout"))
}

type staticProvider struct {
	records []domain.RawRecord
}

func (staticProvider) Name() string { return "static" }

func (s staticProvider) FetchFlights(ctx context.Context) ([]domain.RawRecord, error) {
	return s.records, nil
}

func newTestPipeline(providers ...ingestion.Provider) *Pipeline {
	logger := discardLogger()
	chain := ingestion.NewChain(logger, nil, providers...)
	normalizer := dataprocessing.NewNormalizer(logger, dataprocessing.WithNormalizerClock(clock))
	return New(chain, normalizer, dataprocessing.NewFilterChain(logger, nil), logger, WithClock(clock))
}

func TestPipeline_RefreshFallsBackToSynthetic(t *testing.T) {
	synthetic := ingestion.NewSyntheticProvider(42, 30, ingestion.WithSyntheticClock(clock))
	p := newTestPipeline(failingProvider{}, synthetic)

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.SourceSynthetic, snap.Source)
	assert.Equal(t, testNow, snap.FetchedAt)
	assert.NotEmpty(t, snap.ID)
	assert.Zero(t, snap.Stats.Skipped)
	assert.Equal(t, snap.Len(), snap.Insights.TotalFlights)
	assert.Len(t, snap.Insights.DemandPeriods, 31)

	for _, r := range snap.Records() {
		assert.Equal(t, domain.RouteLabel(r.DepartureCity, r.DestinationCity), r.Route)
		assert.Equal(t, domain.OccupancyRate(r.Occupancy, r.Capacity), r.OccupancyRate)
	}
}

func TestPipeline_RefreshEmptyDataset(t *testing.T) {
	malformed := staticProvider{records: []domain.RawRecord{
		{Source: domain.SourceSynthetic, Fields: map[string]interface{}{"price": "free"}},
	}}

	_, err := newTestPipeline(malformed).Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyDataset))

	_, err = newTestPipeline(failingProvider{}).Refresh(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyDataset))
}

func TestPipeline_RefreshSkipsUnusableProvider(t *testing.T) {
	unusable := staticProvider{records: []domain.RawRecord{
		{Source: domain.SourceOpenSky, Fields: map[string]interface{}{"firstSeen": "garbage"}},
	}}
	synthetic := ingestion.NewSyntheticProvider(42, 30, ingestion.WithSyntheticClock(clock))

	snap, err := newTestPipeline(unusable, synthetic).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceSynthetic, snap.Source)
	assert.Positive(t, snap.Len())
	assert.Zero(t, snap.Stats.Skipped)

	_, err = newTestPipeline(failingProvider{}, unusable).Refresh(context.Background())
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeEmptyDataset, appErr.Type)
	assert.Equal(t, "aviationstack,static", appErr.Context["providers"])
}

func TestPipeline_Apply(t *testing.T) {
	p := newTestPipeline(ingestion.NewSyntheticProvider(42, 30, ingestion.WithSyntheticClock(clock)))
	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)

	t.Run("no criteria keeps the baseline", func(t *testing.T) {
		view, err := p.Apply(context.Background(), snap, domain.FilterCriteria{})
		require.NoError(t, err)
		assert.False(t, view.Empty())
		assert.Equal(t, snap.Len(), len(view.Records))
		assert.Equal(t, snap.Insights, view.Insights)
	})

	t.Run("route filter recomputes insights", func(t *testing.T) {
		view, err := p.Apply(context.Background(), snap, domain.FilterCriteria{
			DepartureCity:   "New York",
			DestinationCity: "Los Angeles",
		})
		require.NoError(t, err)
		require.False(t, view.Empty())

		assert.Equal(t, snap.Len(), view.BaselineCount)
		assert.Equal(t, len(view.Records), view.Insights.TotalFlights)
		require.Len(t, view.Insights.PopularRoutes, 1)
		assert.Equal(t, "New York → Los Angeles", view.Insights.PopularRoutes[0].Route)
		assert.Len(t, view.Insights.DemandPeriods, 31)
	})

	t.Run("unknown city is an empty view", func(t *testing.T) {
		view, err := p.Apply(context.Background(), snap, domain.FilterCriteria{DepartureCity: "Atlantis"})
		require.NoError(t, err)
		assert.True(t, view.Empty())
		assert.True(t, apperrors.IsType(view.Err(), apperrors.ErrTypeEmptyFilterResult))
		assert.NotEmpty(t, view.Guidance)
	})

	t.Run("invalid criteria", func(t *testing.T) {
		_, err := p.Apply(context.Background(), snap, domain.FilterCriteria{PriceRange: &domain.FloatRange{Min: 10, Max: 1}})
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestSnapshot_IsImmutable(t *testing.T) {
	records := []domain.FlightRecord{{DepartureCity: "A", DestinationCity: "B", Price: 100, Capacity: 10, Occupancy: 5}}
	snap := NewSnapshot("test", testNow, dataprocessing.Derive(records))

	records[0].Price = 1
	got := snap.Records()
	assert.Equal(t, 100.0, got[0].Price)

	got[0].Price = 2
	assert.Equal(t, 100.0, snap.Records()[0].Price)
	assert.Equal(t, 1, snap.Insights.TotalFlights)
}
