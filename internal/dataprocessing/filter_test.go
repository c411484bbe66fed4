package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "airmarket/internal/errors"
	"airmarket/pkg/contracts/domain"
)

func baselineRecords() []domain.FlightRecord {
	return []domain.FlightRecord{
		flight(day(1), "New York", "Los Angeles", "Delta", 350, 200, 180),
		flight(day(1), "New York", "Los Angeles", "United", 520, 200, 100),
		flight(day(2), "New York", "Miami", "Delta", 280, 150, 140),
		flight(day(2), "Chicago", "Miami", "JetBlue", 410, 180, 90),
		flight(day(3), "New York", "Los Angeles", "Delta", 610, 220, 210),
		flight(day(4), "Denver", "Seattle", "Southwest", 199, 120, 60),
		flight(day(5), "New York", "Los Angeles", "Delta", 300, 100, 95),
		flight(day(5), "New York", "Chicago", "Delta", 330, 160, 150),
	}
}

func allCriteria() domain.FilterCriteria {
	return domain.FilterCriteria{
		DepartureCity:   "New York",
		DestinationCity: "Los Angeles",
		DateRange:       &domain.DateRange{Start: day(1), End: day(4)},
		PriceRange:      &domain.FloatRange{Min: 300, Max: 650},
		Airline:         "Delta",
		OccupancyRange:  &domain.FloatRange{Min: 80, Max: 100},
	}
}

func TestPredicates_WildcardsAreSkipped(t *testing.T) {
	tests := []struct {
		name     string
		criteria domain.FilterCriteria
		want     []string
	}{
		{name: "empty", criteria: domain.FilterCriteria{}, want: nil},
		{name: "explicit wildcards", criteria: domain.FilterCriteria{DepartureCity: "All", DestinationCity: "all", Airline: " "}, want: nil},
		{name: "all active in fixed order", criteria: allCriteria(), want: []string{
			PredicateDeparture, PredicateDestination, PredicateDate, PredicatePrice, PredicateAirline, PredicateOccupancy,
		}},
		{name: "airline and price", criteria: domain.FilterCriteria{Airline: "Delta", PriceRange: &domain.FloatRange{Max: 10}}, want: []string{
			PredicatePrice, PredicateAirline,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, p := range Predicates(tt.criteria) {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestApplyPredicates_OrderIndependent(t *testing.T) {
	records := baselineRecords()
	preds := Predicates(allCriteria())
	require.Len(t, preds, 6)

	want, _ := ApplyPredicates(records, preds)
	require.Len(t, want, 2)

	for _, perm := range permutations(preds) {
		got, steps := ApplyPredicates(records, perm)
		assert.Equal(t, want, got)
		assert.Len(t, steps, len(perm))
	}
}

func permutations(preds []Predicate) [][]Predicate {
	if len(preds) <= 1 {
		return [][]Predicate{append([]Predicate(nil), preds...)}
	}
	var out [][]Predicate
	for i := range preds {
		rest := make([]Predicate, 0, len(preds)-1)
		rest = append(rest, preds[:i]...)
		rest = append(rest, preds[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]Predicate{preds[i]}, p...))
		}
	}
	return out
}

func TestFilterChain_Apply(t *testing.T) {
	chain := NewFilterChain(discardLogger(), nil)
	baseline := baselineRecords()

	result, err := chain.Apply(context.Background(), baseline, allCriteria())
	require.NoError(t, err)

	assert.False(t, result.Empty())
	assert.NoError(t, result.Err())
	assert.Equal(t, len(baseline), result.BaselineCount)
	require.Len(t, result.Records, 2)
	assert.Equal(t, []domain.FilterStep{
		{Name: PredicateDeparture, Remaining: 6},
		{Name: PredicateDestination, Remaining: 4},
		{Name: PredicateDate, Remaining: 3},
		{Name: PredicatePrice, Remaining: 3},
		{Name: PredicateAirline, Remaining: 2},
		{Name: PredicateOccupancy, Remaining: 2},
	}, result.Steps)

	// insights describe the filtered records only
	assert.Equal(t, 2, result.Insights.TotalFlights)
	assert.Equal(t, []domain.RouteCount{{Route: "New York → Los Angeles", Count: 2}}, result.Insights.PopularRoutes)
	assert.Equal(t, 350.0*180+610*210, result.Insights.TotalRevenue)
	assert.Len(t, baseline, 8, "baseline is retained")
}

func TestFilterChain_NoCriteriaKeepsEverything(t *testing.T) {
	baseline := baselineRecords()
	result, err := NewFilterChain(discardLogger(), nil).Apply(context.Background(), baseline, domain.FilterCriteria{})
	require.NoError(t, err)

	assert.Equal(t, baseline, result.Records)
	assert.Empty(t, result.Steps)
	assert.Equal(t, Aggregate(baseline), result.Insights)
}

func TestFilterChain_UnknownCityIsEmptyResult(t *testing.T) {
	result, err := NewFilterChain(discardLogger(), nil).Apply(context.Background(), baselineRecords(), domain.FilterCriteria{
		DepartureCity: "Atlantis",
	})
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.NotNil(t, result.Records)
	assert.Zero(t, result.Insights.TotalFlights)
	assert.False(t, result.Insights.HasOccupancy())

	emptyErr := result.Err()
	require.Error(t, emptyErr)
	assert.True(t, apperrors.IsType(emptyErr, apperrors.ErrTypeEmptyFilterResult))
	assert.Contains(t, result.Guidance, "No flights found departing from Atlantis")
}

func TestFilterChain_InvalidRanges(t *testing.T) {
	tests := []struct {
		name     string
		criteria domain.FilterCriteria
	}{
		{name: "price min above max", criteria: domain.FilterCriteria{PriceRange: &domain.FloatRange{Min: 500, Max: 100}}},
		{name: "negative occupancy", criteria: domain.FilterCriteria{OccupancyRange: &domain.FloatRange{Min: -1, Max: 50}}},
		{name: "dates reversed", criteria: domain.FilterCriteria{DateRange: &domain.DateRange{Start: day(5), End: day(1)}}},
	}

	chain := NewFilterChain(discardLogger(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chain.Apply(context.Background(), baselineRecords(), tt.criteria)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		})
	}
}

func TestFilterChain_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFilterChain(discardLogger(), nil).Apply(ctx, baselineRecords(), domain.FilterCriteria{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGuidance(t *testing.T) {
	baseline := baselineRecords()

	tests := []struct {
		name      string
		criteria  domain.FilterCriteria
		wantFirst string
		contains  string
	}{
		{
			name:      "both cities",
			criteria:  domain.FilterCriteria{DepartureCity: "Denver", DestinationCity: "Miami"},
			wantFirst: "No flights found from Denver to Miami",
			contains:  "Popular routes include: New York → Los Angeles, New York → Miami, Chicago → Miami",
		},
		{
			name:      "destination only",
			criteria:  domain.FilterCriteria{DestinationCity: "Atlantis"},
			wantFirst: "No flights found arriving at Atlantis",
			contains:  "Try selecting 'All' for destination city to see all available routes",
		},
		{
			name:      "no cities",
			criteria:  domain.FilterCriteria{Airline: "Concorde"},
			wantFirst: "No flights match the selected filters",
			contains:  "Refresh the data to load a new sample",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Guidance(tt.criteria, baseline)
			require.NotEmpty(t, lines)
			assert.Equal(t, tt.wantFirst, lines[0])
			assert.Contains(t, lines, tt.contains)
		})
	}
}
