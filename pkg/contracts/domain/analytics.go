package domain

import (
	"time"
)

// DataSummary is the condensed description of a dataset handed to the AI
// narrative collaborator
type DataSummary struct {
	TotalFlights int    `json:"total_flights"`
	DateRange    string `json:"date_range"`
	AirlineCount int    `json:"airline_count"`
	RouteCount   int    `json:"route_count"`
	AvgPrice     string `json:"avg_price"`
	AvgOccupancy string `json:"avg_occupancy"`
}

// RouteSummary aggregates the performance of a single route
type RouteSummary struct {
	Route            string  `json:"route"`
	AvgPrice         float64 `json:"avg_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	AvgOccupancy     float64 `json:"avg_occupancy"`
	FlightCount      int     `json:"flight_count"`
	TotalRevenue     float64 `json:"total_revenue"`
	PerformanceScore float64 `json:"performance_score"`
}

// DailySummary aggregates all flights of one calendar day
type DailySummary struct {
	Date         time.Time `json:"date"`
	AvgPrice     float64   `json:"avg_price"`
	AvgOccupancy float64   `json:"avg_occupancy"`
	FlightCount  int       `json:"flight_count"`
	TotalRevenue float64   `json:"total_revenue"`
	DayOfWeek    string    `json:"day_of_week"`
	IsWeekend    bool      `json:"is_weekend"`
}

// DemandTrend describes the direction of daily flight counts
type DemandTrend string

const (
	TrendIncreasing DemandTrend = "Increasing"
	TrendDecreasing DemandTrend = "Decreasing"
	TrendStable     DemandTrend = "Stable"
)

// DemandAnalysis summarizes the daily demand series
type DemandAnalysis struct {
	AvgDailyFlights float64     `json:"avg_daily_flights"`
	PeakDay         DateCount   `json:"peak_day"`
	LowDay          DateCount   `json:"low_day"`
	Trend           DemandTrend `json:"trend"`
}

// RevenueAnalysis summarizes revenue efficiency
type RevenueAnalysis struct {
	TotalRevenue        float64 `json:"total_revenue"`
	RevenuePerFlight    float64 `json:"revenue_per_flight"`
	RevenuePerPassenger float64 `json:"revenue_per_passenger"`
}
