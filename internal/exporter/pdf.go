package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"airmarket/internal/dataprocessing"
	"airmarket/pkg/contracts/domain"
)

// ReportTitle heads every PDF report
const ReportTitle = "Airline Market Demand Analysis Report"

// pdfSampleColumns are the record columns printed in the PDF data sample
var pdfSampleColumns = []struct {
	header string
	width  float64
	value  func(domain.FlightRecord) string
}{
	{"Date", 24, func(r domain.FlightRecord) string { return formatDate(r.Date) }},
	{"Route", 70, func(r domain.FlightRecord) string { return r.Route }},
	{"Airline", 40, func(r domain.FlightRecord) string { return r.Airline }},
	{"Flight", 22, func(r domain.FlightRecord) string { return r.FlightNumber }},
	{"Price", 22, func(r domain.FlightRecord) string { return formatFloat(r.Price) }},
	{"Capacity", 20, func(r domain.FlightRecord) string { return formatInt(r.Capacity) }},
	{"Occupancy", 20, func(r domain.FlightRecord) string { return formatInt(r.Occupancy) }},
	{"Occ. %", 18, func(r domain.FlightRecord) string { return formatFloat(r.OccupancyRate) }},
}

func (e *Exporter) writePDF(w io.Writer, records []domain.FlightRecord, insights domain.InsightSet) error {
	pdf := fpdf.New("L", "mm", "Letter", "")
	pdf.SetCompression(e.pdfCompress)
	pdf.SetTitle(ReportTitle, false)
	pdf.SetCreator("airmarket", false)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	// core fonts are cp1252; route arrows and other runes are translated
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return tr(strings.ReplaceAll(s, domain.RouteSeparator, " -> "))
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, ReportTitle, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated: "+e.now().Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}

	section("Executive Summary")
	summary := dataprocessing.Summarize(records)
	occupancy := "N/A"
	if insights.HasOccupancy() {
		occupancy = fmt.Sprintf("%.1f%%", insights.AvgOccupancy)
	}
	rows := [][2]string{
		{"Total Flights", formatInt(insights.TotalFlights)},
		{"Date Range", summary.DateRange},
		{"Average Price", summary.AvgPrice},
		{"Average Occupancy", occupancy},
		{"Total Revenue", "$" + formatFloat(insights.TotalRevenue)},
	}
	pdf.SetFillColor(230, 230, 230)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, "Metric", "1", 0, "L", true, 0, "")
	pdf.CellFormat(80, 7, "Value", "1", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(60, 7, text(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 7, text(row[1]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	section("Key Insights")
	if len(insights.PopularRoutes) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Most Popular Routes:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for i, rc := range insights.PopularRoutes {
			pdf.CellFormat(0, 6, text(fmt.Sprintf("%d. %s: %d flights", i+1, rc.Route, rc.Count)), "", 1, "L", false, 0, "")
		}
	} else {
		pdf.CellFormat(0, 6, "No route data available", "", 1, "L", false, 0, "")
	}
	if avg, ok := insights.AverageRoutePrice(); ok {
		pdf.CellFormat(0, 6, "Average Route Price: $"+formatFloat(avg), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	sample := records[:min(len(records), e.pdfSampleSize)]
	section(fmt.Sprintf("Data Sample (First %d Records)", len(sample)))
	pdf.SetFont("Helvetica", "B", 9)
	for _, col := range pdfSampleColumns {
		pdf.CellFormat(col.width, 7, col.header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range sample {
		for _, col := range pdfSampleColumns {
			pdf.CellFormat(col.width, 6, text(col.value(r)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(sample) == 0 {
		pdf.CellFormat(0, 6, "No records", "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf.Output(w)
}
