// Package api contains API contract definitions for the airline market
// analyzer. Version v1 represents the current stable API version.
package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"airmarket/pkg/contracts/domain"
)

// Open ends used when only one bound of a date range is given
var (
	earliestDay = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	latestDay   = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// FlightQuery carries the filter parameters of flight, insight, narrative
// and export requests. Empty fields and "All" are not applied.
type FlightQuery struct {
	StartDate       string `json:"start_date,omitempty" query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string `json:"end_date,omitempty" query:"end_date" validate:"omitempty,datetime=2006-01-02"`
	DepartureCity   string `json:"departure_city,omitempty" query:"departure_city" validate:"max=100"`
	DestinationCity string `json:"destination_city,omitempty" query:"destination_city" validate:"max=100"`
	MinPrice        string `json:"min_price,omitempty" query:"min_price" validate:"omitempty,numeric"`
	MaxPrice        string `json:"max_price,omitempty" query:"max_price" validate:"omitempty,numeric"`
	Airline         string `json:"airline,omitempty" query:"airline" validate:"max=100"`
	MinOccupancy    string `json:"min_occupancy,omitempty" query:"min_occupancy" validate:"omitempty,numeric"`
	MaxOccupancy    string `json:"max_occupancy,omitempty" query:"max_occupancy" validate:"omitempty,numeric"`
}

// FlightQueryFromValues reads a FlightQuery from URL query parameters
func FlightQueryFromValues(v url.Values) FlightQuery {
	get := func(key string) string { return strings.TrimSpace(v.Get(key)) }
	return FlightQuery{
		StartDate:       get("start_date"),
		EndDate:         get("end_date"),
		DepartureCity:   get("departure_city"),
		DestinationCity: get("destination_city"),
		MinPrice:        get("min_price"),
		MaxPrice:        get("max_price"),
		Airline:         get("airline"),
		MinOccupancy:    get("min_occupancy"),
		MaxOccupancy:    get("max_occupancy"),
	}
}

// ToCriteria converts the query into filter criteria. A range with only one
// bound is open on the other side.
func (q FlightQuery) ToCriteria() (domain.FilterCriteria, error) {
	criteria := domain.FilterCriteria{
		DepartureCity:   q.DepartureCity,
		DestinationCity: q.DestinationCity,
		Airline:         q.Airline,
	}

	if q.StartDate != "" || q.EndDate != "" {
		dr := domain.DateRange{Start: earliestDay, End: latestDay}
		if q.StartDate != "" {
			start, err := domain.ParseDay(q.StartDate)
			if err != nil {
				return criteria, err
			}
			dr.Start = start
		}
		if q.EndDate != "" {
			end, err := domain.ParseDay(q.EndDate)
			if err != nil {
				return criteria, err
			}
			dr.End = end
		}
		criteria.DateRange = &dr
	}

	price, err := floatRange("price", q.MinPrice, q.MaxPrice)
	if err != nil {
		return criteria, err
	}
	criteria.PriceRange = price

	occupancy, err := floatRange("occupancy", q.MinOccupancy, q.MaxOccupancy)
	if err != nil {
		return criteria, err
	}
	criteria.OccupancyRange = occupancy

	return criteria, nil
}

func floatRange(name, min, max string) (*domain.FloatRange, error) {
	if min == "" && max == "" {
		return nil, nil
	}
	r := &domain.FloatRange{Min: 0, Max: math.MaxFloat64}
	if min != "" {
		v, err := strconv.ParseFloat(min, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid min_%s %q: %w", name, min, err)
		}
		r.Min = v
	}
	if max != "" {
		v, err := strconv.ParseFloat(max, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid max_%s %q: %w", name, max, err)
		}
		r.Max = v
	}
	return r, nil
}
