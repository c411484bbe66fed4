package domain

import (
	"strings"
	"time"
)

// Wildcard is the filter value meaning "predicate not applied"
const Wildcard = "All"

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtefield=Start"`
}

// Contains reports whether the day of t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// FloatRange is an inclusive numeric range
type FloatRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

// Contains reports whether v falls inside the range
func (r FloatRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterCriteria is the combined set of optional predicates applied to the
// working dataset. Nil ranges and empty or wildcard strings are not applied.
type FilterCriteria struct {
	DateRange       *DateRange  `json:"date_range,omitempty"`
	DepartureCity   string      `json:"departure_city,omitempty"`
	DestinationCity string      `json:"destination_city,omitempty"`
	PriceRange      *FloatRange `json:"price_range,omitempty"`
	Airline         string      `json:"airline,omitempty"`
	OccupancyRange  *FloatRange `json:"occupancy_range,omitempty"`
}

// IsWildcard reports whether a text criterion is unset
func IsWildcard(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, Wildcard)
}

// IsEmpty reports whether no predicate is active
func (c FilterCriteria) IsEmpty() bool {
	return c.DateRange == nil &&
		c.PriceRange == nil &&
		c.OccupancyRange == nil &&
		IsWildcard(c.DepartureCity) &&
		IsWildcard(c.DestinationCity) &&
		IsWildcard(c.Airline)
}

// FilterStep is the diagnostic outcome of one applied predicate
type FilterStep struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

// FilterOptions describes the values a user can choose from for the current
// baseline dataset
type FilterOptions struct {
	DepartureCities   []string    `json:"departure_cities"`
	DestinationCities []string    `json:"destination_cities"`
	Airlines          []string    `json:"airlines"`
	Dates             *DateRange  `json:"dates,omitempty"`
	Price             *FloatRange `json:"price,omitempty"`
	Occupancy         *FloatRange `json:"occupancy,omitempty"`
}
