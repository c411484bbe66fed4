package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"airmarket/pkg/contracts/domain"
)

// RecordHeaders are the columns of a flight record table
var RecordHeaders = []string{
	"date", "departure_city", "destination_city", "airline", "flight_number",
	"price", "capacity", "occupancy", "route", "occupancy_rate", "revenue",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// recordRow stringifies a record in RecordHeaders order
func recordRow(r domain.FlightRecord) []string {
	return []string{
		formatDate(r.Date),
		r.DepartureCity,
		r.DestinationCity,
		r.Airline,
		r.FlightNumber,
		formatFloat(r.Price),
		formatInt(r.Capacity),
		formatInt(r.Occupancy),
		r.Route,
		formatFloat(r.OccupancyRate),
		formatFloat(r.Revenue),
	}
}

func (e *Exporter) writeCSV(w io.Writer, records []domain.FlightRecord) error {
	if e.csvBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(RecordHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, r := range records {
		if err := writer.Write(recordRow(r)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
