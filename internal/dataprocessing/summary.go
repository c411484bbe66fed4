package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"time"

	"airmarket/pkg/contracts/domain"
)

// Weights of the route performance score. Price is scored relative to the
// most expensive route, occupancy as a fraction of 100%.
const (
	performancePriceWeight     = 0.4
	performanceOccupancyWeight = 0.6
)

// RouteSummaries returns per-route statistics ordered by flight count
// descending, then route label.
func RouteSummaries(records []domain.FlightRecord) []domain.RouteSummary {
	byRoute := make(map[string]*domain.RouteSummary)
	occupancy := make(map[string]float64)

	for _, r := range records {
		s, ok := byRoute[r.Route]
		if !ok {
			s = &domain.RouteSummary{Route: r.Route, MinPrice: r.Price, MaxPrice: r.Price}
			byRoute[r.Route] = s
		}
		s.FlightCount++
		s.AvgPrice += r.Price
		s.TotalRevenue += r.Revenue
		s.MinPrice = math.Min(s.MinPrice, r.Price)
		s.MaxPrice = math.Max(s.MaxPrice, r.Price)
		occupancy[r.Route] += r.OccupancyRate
	}

	summaries := make([]domain.RouteSummary, 0, len(byRoute))
	var topPrice float64
	for route, s := range byRoute {
		s.AvgPrice = domain.Round2(s.AvgPrice / float64(s.FlightCount))
		s.AvgOccupancy = domain.Round2(occupancy[route] / float64(s.FlightCount))
		s.TotalRevenue = domain.Round2(s.TotalRevenue)
		topPrice = math.Max(topPrice, s.AvgPrice)
		summaries = append(summaries, *s)
	}

	for i := range summaries {
		var priceScore float64
		if topPrice > 0 {
			priceScore = summaries[i].AvgPrice / topPrice
		}
		score := priceScore*performancePriceWeight + summaries[i].AvgOccupancy/100*performanceOccupancyWeight
		summaries[i].PerformanceScore = math.Round(score*1000) / 1000
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].FlightCount != summaries[j].FlightCount {
			return summaries[i].FlightCount > summaries[j].FlightCount
		}
		return summaries[i].Route < summaries[j].Route
	})
	return summaries
}

// DailySummaries returns per-day statistics in ascending date order
func DailySummaries(records []domain.FlightRecord) []domain.DailySummary {
	byDay := make(map[time.Time]*domain.DailySummary)
	for _, r := range records {
		day := domain.Day(r.Date)
		s, ok := byDay[day]
		if !ok {
			s = &domain.DailySummary{
				Date:      day,
				DayOfWeek: day.Weekday().String(),
				IsWeekend: day.Weekday() == time.Saturday || day.Weekday() == time.Sunday,
			}
			byDay[day] = s
		}
		s.FlightCount++
		s.AvgPrice += r.Price
		s.AvgOccupancy += r.OccupancyRate
		s.TotalRevenue += r.Revenue
	}

	summaries := make([]domain.DailySummary, 0, len(byDay))
	for _, s := range byDay {
		s.AvgPrice = domain.Round2(s.AvgPrice / float64(s.FlightCount))
		s.AvgOccupancy = domain.Round2(s.AvgOccupancy / float64(s.FlightCount))
		s.TotalRevenue = domain.Round2(s.TotalRevenue)
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Date.Before(summaries[j].Date) })
	return summaries
}

// AnalyzeDemand describes the daily demand series of an insight set. The
// trend compares the last day's flight count with the first day's.
func AnalyzeDemand(insights domain.InsightSet) (domain.DemandAnalysis, bool) {
	periods := insights.DemandPeriods
	if len(periods) == 0 {
		return domain.DemandAnalysis{}, false
	}

	analysis := domain.DemandAnalysis{PeakDay: periods[0], LowDay: periods[0], Trend: domain.TrendStable}
	total := 0
	for _, p := range periods {
		total += p.Count
		if p.Count > analysis.PeakDay.Count {
			analysis.PeakDay = p
		}
		if p.Count < analysis.LowDay.Count {
			analysis.LowDay = p
		}
	}
	analysis.AvgDailyFlights = float64(total) / float64(len(periods))

	switch delta := periods[len(periods)-1].Count - periods[0].Count; {
	case delta > 0:
		analysis.Trend = domain.TrendIncreasing
	case delta < 0:
		analysis.Trend = domain.TrendDecreasing
	}
	return analysis, true
}

// AnalyzeRevenue computes revenue efficiency over records. Revenue per
// passenger is zero when no seats were occupied.
func AnalyzeRevenue(records []domain.FlightRecord) domain.RevenueAnalysis {
	var analysis domain.RevenueAnalysis
	passengers := 0
	for _, r := range records {
		analysis.TotalRevenue += r.Revenue
		passengers += r.Occupancy
	}
	if len(records) > 0 {
		analysis.RevenuePerFlight = analysis.TotalRevenue / float64(len(records))
	}
	if passengers > 0 {
		analysis.RevenuePerPassenger = analysis.TotalRevenue / float64(passengers)
	}
	return analysis
}

// Summarize condenses records into the textual summary handed to the AI
// narrative
func Summarize(records []domain.FlightRecord) domain.DataSummary {
	summary := domain.DataSummary{
		TotalFlights: len(records),
		DateRange:    domain.UnknownValue,
		AvgPrice:     "N/A",
		AvgOccupancy: "N/A",
	}
	if len(records) == 0 {
		return summary
	}

	airlines := make(map[string]struct{})
	routes := make(map[string]struct{})
	first, last := records[0].Date, records[0].Date
	var priceSum, occupancySum float64
	for _, r := range records {
		airlines[r.Airline] = struct{}{}
		routes[r.Route] = struct{}{}
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
		priceSum += r.Price
		occupancySum += r.OccupancyRate
	}

	n := float64(len(records))
	summary.AirlineCount = len(airlines)
	summary.RouteCount = len(routes)
	summary.DateRange = fmt.Sprintf("%s to %s", first.Format(domain.DateLayout), last.Format(domain.DateLayout))
	summary.AvgPrice = fmt.Sprintf("$%.2f", priceSum/n)
	summary.AvgOccupancy = fmt.Sprintf("%.1f%%", occupancySum/n)
	return summary
}

// Options lists the selectable filter values of a baseline dataset. Each
// text list starts with the wildcard.
func Options(records []domain.FlightRecord) domain.FilterOptions {
	opts := domain.FilterOptions{
		DepartureCities:   []string{domain.Wildcard},
		DestinationCities: []string{domain.Wildcard},
		Airlines:          []string{domain.Wildcard},
	}
	if len(records) == 0 {
		return opts
	}

	deps := make(map[string]struct{})
	dests := make(map[string]struct{})
	airlines := make(map[string]struct{})
	dates := domain.DateRange{Start: records[0].Date, End: records[0].Date}
	price := domain.FloatRange{Min: records[0].Price, Max: records[0].Price}
	occupancy := domain.FloatRange{Min: records[0].OccupancyRate, Max: records[0].OccupancyRate}

	for _, r := range records {
		deps[r.DepartureCity] = struct{}{}
		dests[r.DestinationCity] = struct{}{}
		airlines[r.Airline] = struct{}{}
		if r.Date.Before(dates.Start) {
			dates.Start = r.Date
		}
		if r.Date.After(dates.End) {
			dates.End = r.Date
		}
		price.Min, price.Max = math.Min(price.Min, r.Price), math.Max(price.Max, r.Price)
		occupancy.Min = math.Min(occupancy.Min, r.OccupancyRate)
		occupancy.Max = math.Max(occupancy.Max, r.OccupancyRate)
	}

	opts.DepartureCities = sortedKeys(deps)
	opts.DestinationCities = sortedKeys(dests)
	opts.Airlines = sortedKeys(airlines)
	opts.Dates = &dates
	opts.Price = &price
	opts.Occupancy = &occupancy
	return opts
}

// sortedKeys returns the wildcard followed by the sorted keys of m
func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return append([]string{domain.Wildcard}, keys...)
}
