package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Insight list sizes
const (
	PopularRoutesLimit = 5
	RoutePricesLimit   = 10
)

// RouteCount is a route with its flight count
type RouteCount struct {
	Route string `json:"route"`
	Count int    `json:"count"`
}

// RouteValue is a route with an averaged value
type RouteValue struct {
	Route string  `json:"route"`
	Value float64 `json:"value"`
}

// DateValue is a calendar day with an averaged value
type DateValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DateCount is a calendar day with a flight count
type DateCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// InsightSet is the aggregate view over a record collection.
// It is always rebuilt from records and never edited in place.
type InsightSet struct {
	PopularRoutes []RouteCount `json:"popular_routes"`
	PriceTrends   []DateValue  `json:"price_trends"`
	DemandPeriods []DateCount  `json:"demand_periods"`
	RoutePrices   []RouteValue `json:"route_prices"`
	// AvgOccupancy is NaN when there are no records
	AvgOccupancy float64 `json:"avg_occupancy"`
	TotalFlights int     `json:"total_flights"`
	TotalRevenue float64 `json:"total_revenue"`
}

// HasOccupancy reports whether AvgOccupancy is defined
func (s InsightSet) HasOccupancy() bool {
	return !math.IsNaN(s.AvgOccupancy) && !math.IsInf(s.AvgOccupancy, 0)
}

// AverageRoutePrice returns the mean of the ranked route prices and false
// when no route prices exist.
func (s InsightSet) AverageRoutePrice() (float64, bool) {
	if len(s.RoutePrices) == 0 {
		return 0, false
	}
	var sum float64
	for _, rp := range s.RoutePrices {
		sum += rp.Value
	}
	return sum / float64(len(s.RoutePrices)), true
}

// PeakDemand returns the first day with the highest flight count
func (s InsightSet) PeakDemand() (DateCount, bool) {
	if len(s.DemandPeriods) == 0 {
		return DateCount{}, false
	}
	peak := s.DemandPeriods[0]
	for _, dc := range s.DemandPeriods[1:] {
		if dc.Count > peak.Count {
			peak = dc
		}
	}
	return peak, true
}

// MarshalJSON encodes an undefined average occupancy as null
func (s InsightSet) MarshalJSON() ([]byte, error) {
	type Alias InsightSet
	out := struct {
		Alias
		AvgOccupancy *float64 `json:"avg_occupancy"`
	}{Alias: Alias(s)}
	if s.HasOccupancy() {
		v := s.AvgOccupancy
		out.AvgOccupancy = &v
	}
	return json.Marshal(out)
}
