package exporter

import (
	"strconv"
	"time"

	"airmarket/pkg/contracts/domain"
)

// formatFloat formats a value with exactly 2 decimal places so that 13.4
// appears as 13.40
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}
