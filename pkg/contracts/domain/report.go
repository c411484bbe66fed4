package domain

import (
	"strings"
)

// ExportFormat identifies a report serialization
type ExportFormat string

const (
	FormatCSV         ExportFormat = "csv"
	FormatSpreadsheet ExportFormat = "spreadsheet"
	FormatPDF         ExportFormat = "pdf"
)

// AllFormats lists every supported export format in display order
var AllFormats = []ExportFormat{FormatCSV, FormatSpreadsheet, FormatPDF}

// ParseExportFormat normalizes user input into an ExportFormat.
// Unknown values are returned unchanged so the exporter can reject them.
func ParseExportFormat(s string) ExportFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV
	case "spreadsheet", "xlsx", "excel":
		return FormatSpreadsheet
	case "pdf":
		return FormatPDF
	default:
		return ExportFormat(s)
	}
}

// Extension returns the file extension without the dot
func (f ExportFormat) Extension() string {
	switch f {
	case FormatSpreadsheet:
		return "xlsx"
	default:
		return string(f)
	}
}

// MIMEType returns the content type of the format
func (f ExportFormat) MIMEType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatSpreadsheet:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether the format is supported
func (f ExportFormat) Valid() bool {
	for _, known := range AllFormats {
		if f == known {
			return true
		}
	}
	return false
}
