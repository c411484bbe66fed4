// Package exporter serializes the working flight dataset and its insights
// into downloadable reports.
//
// Three formats are supported:
//
//   - csv: one row per record with a fixed header, dates as YYYY-MM-DD and
//     money and rates with two decimals
//   - spreadsheet: an xlsx workbook with the record table plus insight,
//     route and daily summary sheets
//   - pdf: a landscape report with an executive summary, key insights and a
//     sample of the records
//
// Example usage:
//
//	exp := exporter.New(logger, exporter.WithMetrics(metrics))
//	data, err := exp.Export(ctx, records, insights, domain.FormatSpreadsheet)
//
//	path, err := exp.SaveReport(ctx, paths.ReportsDir, "airline_analysis", records, insights, domain.FormatPDF)
package exporter
