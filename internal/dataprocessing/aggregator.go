package dataprocessing

import (
	"math"
	"sort"
	"time"

	"airmarket/pkg/contracts/domain"
)

// Aggregate computes the insight set for a record collection. Records are
// expected to carry derived fields (see Derive). An empty collection yields
// empty lists, zero totals and an undefined average occupancy.
func Aggregate(records []domain.FlightRecord) domain.InsightSet {
	insights := domain.InsightSet{
		PopularRoutes: []domain.RouteCount{},
		PriceTrends:   []domain.DateValue{},
		DemandPeriods: []domain.DateCount{},
		RoutePrices:   []domain.RouteValue{},
		AvgOccupancy:  math.NaN(),
		TotalFlights:  len(records),
	}
	if len(records) == 0 {
		return insights
	}

	type acc struct {
		sum   float64
		count int
	}

	routeOrder := make([]string, 0)
	routes := make(map[string]*acc)
	days := make(map[time.Time]*acc)
	var occupancySum float64

	for _, r := range records {
		route := r.Route
		if route == "" {
			route = domain.RouteLabel(r.DepartureCity, r.DestinationCity)
		}
		ra, ok := routes[route]
		if !ok {
			ra = &acc{}
			routes[route] = ra
			routeOrder = append(routeOrder, route)
		}
		ra.sum += r.Price
		ra.count++

		day := domain.Day(r.Date)
		da, ok := days[day]
		if !ok {
			da = &acc{}
			days[day] = da
		}
		da.sum += r.Price
		da.count++

		occupancySum += r.OccupancyRate
		insights.TotalRevenue += r.Revenue
	}

	popular := make([]domain.RouteCount, 0, len(routeOrder))
	byPrice := make([]domain.RouteValue, 0, len(routeOrder))
	for _, route := range routeOrder {
		a := routes[route]
		popular = append(popular, domain.RouteCount{Route: route, Count: a.count})
		byPrice = append(byPrice, domain.RouteValue{Route: route, Value: a.sum / float64(a.count)})
	}

	// stable keeps first-encountered order among equal counts
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].Count > popular[j].Count
	})
	insights.PopularRoutes = popular[:min(len(popular), domain.PopularRoutesLimit)]

	sort.Slice(byPrice, func(i, j int) bool {
		if byPrice[i].Value != byPrice[j].Value {
			return byPrice[i].Value > byPrice[j].Value
		}
		return byPrice[i].Route < byPrice[j].Route
	})
	insights.RoutePrices = byPrice[:min(len(byPrice), domain.RoutePricesLimit)]

	dates := make([]time.Time, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	insights.PriceTrends = make([]domain.DateValue, 0, len(dates))
	insights.DemandPeriods = make([]domain.DateCount, 0, len(dates))
	for _, d := range dates {
		a := days[d]
		insights.PriceTrends = append(insights.PriceTrends, domain.DateValue{Date: d, Value: a.sum / float64(a.count)})
		insights.DemandPeriods = append(insights.DemandPeriods, domain.DateCount{Date: d, Count: a.count})
	}

	insights.AvgOccupancy = occupancySum / float64(len(records))
	return insights
}
