package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"airmarket/internal/dataprocessing"
	"airmarket/pkg/contracts/domain"
)

// Spreadsheet sheet names
const (
	SheetFlightData      = "Flight Data"
	SheetInsightsSummary = "Insights Summary"
	SheetPopularRoutes   = "Popular Routes"
	SheetRoutePrices     = "Route Prices"
	SheetRouteSummary    = "Route Summary"
	SheetDailySummary    = "Daily Summary"
)

type sheetWriter struct {
	file   *excelize.File
	header int
}

func (e *Exporter) writeSpreadsheet(w io.Writer, records []domain.FlightRecord, insights domain.InsightSet) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	sw := &sheetWriter{file: f, header: header}

	if err := f.SetSheetName("Sheet1", SheetFlightData); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}

	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{
			formatDate(r.Date), r.DepartureCity, r.DestinationCity, r.Airline, r.FlightNumber,
			r.Price, r.Capacity, r.Occupancy, r.Route, r.OccupancyRate, r.Revenue,
		}
	}
	if err := sw.table(SheetFlightData, toRow(RecordHeaders), rows); err != nil {
		return err
	}

	if err := sw.addSheet(SheetInsightsSummary, []interface{}{"Metric", "Value"}, summaryRows(records, insights)); err != nil {
		return err
	}

	if len(insights.PopularRoutes) > 0 {
		rows := make([][]interface{}, len(insights.PopularRoutes))
		for i, rc := range insights.PopularRoutes {
			rows[i] = []interface{}{rc.Route, rc.Count}
		}
		if err := sw.addSheet(SheetPopularRoutes, []interface{}{"Route", "Flight Count"}, rows); err != nil {
			return err
		}
	}

	if len(insights.RoutePrices) > 0 {
		rows := make([][]interface{}, len(insights.RoutePrices))
		for i, rv := range insights.RoutePrices {
			rows[i] = []interface{}{rv.Route, domain.Round2(rv.Value)}
		}
		if err := sw.addSheet(SheetRoutePrices, []interface{}{"Route", "Average Price"}, rows); err != nil {
			return err
		}
	}

	if summaries := dataprocessing.RouteSummaries(records); len(summaries) > 0 {
		rows := make([][]interface{}, len(summaries))
		for i, s := range summaries {
			rows[i] = []interface{}{s.Route, s.FlightCount, s.AvgPrice, s.MinPrice, s.MaxPrice, s.AvgOccupancy, s.TotalRevenue, s.PerformanceScore}
		}
		headers := []interface{}{"Route", "Flight Count", "Average Price", "Min Price", "Max Price", "Average Occupancy", "Total Revenue", "Performance Score"}
		if err := sw.addSheet(SheetRouteSummary, headers, rows); err != nil {
			return err
		}
	}

	if summaries := dataprocessing.DailySummaries(records); len(summaries) > 0 {
		rows := make([][]interface{}, len(summaries))
		for i, s := range summaries {
			rows[i] = []interface{}{formatDate(s.Date), s.DayOfWeek, formatBool(s.IsWeekend), s.FlightCount, s.AvgPrice, s.AvgOccupancy, s.TotalRevenue}
		}
		headers := []interface{}{"Date", "Day of Week", "Weekend", "Flight Count", "Average Price", "Average Occupancy", "Total Revenue"}
		if err := sw.addSheet(SheetDailySummary, headers, rows); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// summaryRows lists the headline metrics of the insights summary sheet
func summaryRows(records []domain.FlightRecord, insights domain.InsightSet) [][]interface{} {
	summary := dataprocessing.Summarize(records)
	occupancy := "N/A"
	if insights.HasOccupancy() {
		occupancy = fmt.Sprintf("%.2f%%", insights.AvgOccupancy)
	}
	return [][]interface{}{
		{"Total Flights", insights.TotalFlights},
		{"Average Price", summary.AvgPrice},
		{"Average Occupancy", occupancy},
		{"Total Revenue", fmt.Sprintf("$%s", formatFloat(insights.TotalRevenue))},
		{"Unique Airlines", summary.AirlineCount},
		{"Unique Routes", summary.RouteCount},
	}
}

func (sw *sheetWriter) addSheet(name string, headers []interface{}, rows [][]interface{}) error {
	if _, err := sw.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	return sw.table(name, headers, rows)
}

// table writes a bold header row followed by rows starting at A1
func (sw *sheetWriter) table(sheet string, headers []interface{}, rows [][]interface{}) error {
	if err := sw.file.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %q header: %w", sheet, err)
	}
	if err := sw.file.SetRowStyle(sheet, 1, 1, sw.header); err != nil {
		return fmt.Errorf("failed to style %q header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %q row %d: %w", sheet, i+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return sw.file.SetColWidth(sheet, "A", last, 18)
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
