package narrative

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"airmarket/internal/dataprocessing"
	"airmarket/pkg/contracts/domain"
)

// Fallback sentences for empty aggregates
const (
	NoRouteData     = "No route data available"
	NoPriceData     = "No price data available"
	NoDemandData    = "No demand data available"
	NoOccupancyData = "No occupancy data available"
)

// Composer renders insight sets as deterministic bullet text
type Composer struct {
	bullet string
}

// NewComposer creates a composer using "- " bullets
func NewComposer() *Composer {
	return &Composer{bullet: "- "}
}

// Compose returns one bullet line per insight section
func (c *Composer) Compose(insights domain.InsightSet) string {
	return c.join(c.Bullets(insights))
}

// ComposeDetailed extends Compose with demand and revenue analysis of the
// records the insights were computed from
func (c *Composer) ComposeDetailed(insights domain.InsightSet, records []domain.FlightRecord) string {
	lines := c.Bullets(insights)
	lines = append(lines, DemandLines(insights)...)
	lines = append(lines, RevenueLines(records)...)
	return c.join(lines)
}

// Bullets returns the summary lines without bullet markers
func (c *Composer) Bullets(insights domain.InsightSet) []string {
	lines := make([]string, 0, 6)

	if len(insights.PopularRoutes) > 0 {
		top := insights.PopularRoutes[0]
		lines = append(lines, fmt.Sprintf("Most Popular Route: %s with %s flights", top.Route, humanize.Comma(int64(top.Count))))
	} else {
		lines = append(lines, "Popular Routes: "+NoRouteData)
	}

	if avg, ok := insights.AverageRoutePrice(); ok {
		lines = append(lines, "Average Route Price: "+Money(avg))
	} else {
		lines = append(lines, "Average Route Price: "+NoPriceData)
	}

	if peak, ok := insights.PeakDemand(); ok {
		lines = append(lines, fmt.Sprintf("Peak Demand: %s with %s flights",
			peak.Date.Format(domain.DateLayout), humanize.Comma(int64(peak.Count))))
	} else {
		lines = append(lines, "Peak Demand: "+NoDemandData)
	}

	lines = append(lines, "Total Flights Analyzed: "+humanize.Comma(int64(insights.TotalFlights)))

	if insights.HasOccupancy() {
		lines = append(lines, fmt.Sprintf("Average Occupancy Rate: %.1f%%", insights.AvgOccupancy))
	} else {
		lines = append(lines, "Average Occupancy Rate: "+NoOccupancyData)
	}

	lines = append(lines, "Total Revenue: "+Money(insights.TotalRevenue))
	return lines
}

// DemandLines describes the daily demand series
func DemandLines(insights domain.InsightSet) []string {
	analysis, ok := dataprocessing.AnalyzeDemand(insights)
	if !ok {
		return []string{"Demand Trend: " + NoDemandData}
	}

	first := insights.DemandPeriods[0].Count
	last := insights.DemandPeriods[len(insights.DemandPeriods)-1].Count

	trend := "Demand Trend: " + string(analysis.Trend)
	if delta := last - first; delta != 0 {
		trend = fmt.Sprintf("%s (%+d flights)", trend, delta)
	}

	return []string{
		fmt.Sprintf("Average Daily Flights: %.1f", analysis.AvgDailyFlights),
		fmt.Sprintf("Busiest Day: %s with %d flights", analysis.PeakDay.Date.Format(domain.DateLayout), analysis.PeakDay.Count),
		fmt.Sprintf("Quietest Day: %s with %d flights", analysis.LowDay.Date.Format(domain.DateLayout), analysis.LowDay.Count),
		trend,
	}
}

// RevenueLines describes revenue efficiency over records
func RevenueLines(records []domain.FlightRecord) []string {
	analysis := dataprocessing.AnalyzeRevenue(records)
	return []string{
		"Average Revenue per Flight: " + Money(analysis.RevenuePerFlight),
		"Revenue per Passenger: " + Money(analysis.RevenuePerPassenger),
	}
}

// Money formats v as dollars with thousands separators and two decimals
func Money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func (c *Composer) join(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.bullet)
		b.WriteString(line)
	}
	return b.String()
}
