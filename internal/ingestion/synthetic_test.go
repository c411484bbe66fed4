package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airmarket/pkg/contracts/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSyntheticProvider_PopularRoutesEveryDay(t *testing.T) {
	now := time.Date(2024, time.July, 15, 14, 30, 0, 0, time.UTC)
	p := NewSyntheticProvider(42, 30, WithSyntheticClock(fixedClock(now)))

	records, err := p.FetchFlights(context.Background())
	require.NoError(t, err)

	nyToLA := map[time.Time]int{}
	perDay := map[time.Time]int{}
	for _, r := range records {
		day := r.Fields["date"].(time.Time)
		perDay[day]++
		if r.Fields["departure_city"] == "New York" && r.Fields["destination_city"] == "Los Angeles" {
			nyToLA[day]++
		}
	}

	require.Len(t, perDay, 31, "window covers today and the 30 days before it")
	for day := domain.Day(now).AddDate(0, 0, -30); !day.After(domain.Day(now)); day = day.AddDate(0, 0, 1) {
		assert.GreaterOrEqual(t, nyToLA[day], 1, "missing New York → Los Angeles on %s", day.Format(domain.DateLayout))
		extra := perDay[day] - len(PopularRoutes)
		assert.GreaterOrEqual(t, extra, minExtraFlights)
		assert.LessOrEqual(t, extra, maxExtraFlights)
	}
}

func TestSyntheticProvider_Deterministic(t *testing.T) {
	now := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

	first, err := NewSyntheticProvider(42, 7, WithSyntheticClock(fixedClock(now))).FetchFlights(context.Background())
	require.NoError(t, err)
	second, err := NewSyntheticProvider(42, 7, WithSyntheticClock(fixedClock(now))).FetchFlights(context.Background())
	require.NoError(t, err)
	other, err := NewSyntheticProvider(7, 7, WithSyntheticClock(fixedClock(now))).FetchFlights(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestSyntheticProvider_FieldRanges(t *testing.T) {
	now := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	records, err := NewSyntheticProvider(42, 14, WithSyntheticClock(fixedClock(now))).FetchFlights(context.Background())
	require.NoError(t, err)

	for _, r := range records {
		assert.Equal(t, domain.SourceSynthetic, r.Source)
		assert.NotEqual(t, r.Fields["departure_city"], r.Fields["destination_city"])
		assert.Contains(t, SampleAirlines, r.Fields["airline"])

		capacity := r.Fields["capacity"].(int)
		occupancy := r.Fields["occupancy"].(int)
		price := r.Fields["price"].(float64)
		assert.GreaterOrEqual(t, capacity, minCapacity)
		assert.Less(t, capacity, maxCapacity)
		assert.GreaterOrEqual(t, occupancy, minOccupancy)
		assert.Less(t, occupancy, capacity)
		assert.Greater(t, price, 0.0)

		day := r.Fields["date"].(time.Time)
		weekend := day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
		maxPrice := maxBasePrice + maxPriceJitter
		if weekend {
			maxPrice = maxBasePrice*weekendPremium + maxPriceJitter
		}
		assert.LessOrEqual(t, price, maxPrice)
	}
}

func TestSyntheticProvider_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSyntheticProvider(42, 30).FetchFlights(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
