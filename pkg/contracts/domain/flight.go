package domain

import (
	"fmt"
	"math"
	"time"
)

// UnknownValue is substituted for missing text fields during normalization
const UnknownValue = "Unknown"

// RouteSeparator joins departure and destination cities in a route label
const RouteSeparator = " → "

// DateLayout is the canonical day format used in exports and summaries
const DateLayout = "2006-01-02"

// Data sources known to the normalizer
const (
	SourceAviationStack = "aviationstack"
	SourceOpenSky       = "opensky"
	SourceSynthetic     = "synthetic"
)

// RawRecord is a single flight listing as delivered by a provider.
// Field names are provider specific and only interpreted by the normalizer.
type RawRecord struct {
	Source string                 `json:"source"`
	Fields map[string]interface{} `json:"fields"`
}

// FlightRecord represents one canonical row of the working dataset
type FlightRecord struct {
	Date            time.Time `json:"date"`
	DepartureCity   string    `json:"departure_city"`
	DestinationCity string    `json:"destination_city"`
	Airline         string    `json:"airline"`
	FlightNumber    string    `json:"flight_number"`
	Price           float64   `json:"price"`
	Capacity        int       `json:"capacity"`
	Occupancy       int       `json:"occupancy"`

	// Derived fields, populated by WithDerived
	Route         string  `json:"route"`
	OccupancyRate float64 `json:"occupancy_rate"`
	Revenue       float64 `json:"revenue"`
}

// WithDerived returns a copy of the record with route, occupancy rate and
// revenue recomputed from the base fields.
func (r FlightRecord) WithDerived() FlightRecord {
	r.Route = RouteLabel(r.DepartureCity, r.DestinationCity)
	r.OccupancyRate = OccupancyRate(r.Occupancy, r.Capacity)
	r.Revenue = r.Price * float64(r.Occupancy)
	return r
}

// DateString returns the record's day in DateLayout
func (r FlightRecord) DateString() string {
	return r.Date.Format(DateLayout)
}

// RouteLabel builds the route label for a city pair
func RouteLabel(departure, destination string) string {
	return departure + RouteSeparator + destination
}

// OccupancyRate returns occupancy as a percentage of capacity rounded to two
// decimals. A non-positive capacity yields 0.
func OccupancyRate(occupancy, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return Round2(float64(occupancy) / float64(capacity) * 100)
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Day truncates t to its UTC calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a calendar day
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
