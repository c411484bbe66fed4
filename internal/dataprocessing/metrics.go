package dataprocessing

import "airmarket/pkg/contracts/domain"

// Derive returns a new slice with route, occupancy rate and revenue computed
// for every record. The input is not modified and Derive is idempotent.
func Derive(records []domain.FlightRecord) []domain.FlightRecord {
	out := make([]domain.FlightRecord, len(records))
	for i, r := range records {
		out[i] = r.WithDerived()
	}
	return out
}
