// Package dataprocessing turns provider output into the working flight
// dataset and everything computed from it.
//
// # Pipeline
//
//	RawRecords → Normalizer → Derive → FilterChain → Aggregate → InsightSet
//
// The Normalizer maps each provider's field names onto FlightRecord,
// substituting "Unknown" for missing text and simulated values for missing
// price, capacity and occupancy. Rows with values that cannot be coerced are
// skipped one by one; normalization itself never fails.
//
// Derive adds route, occupancy rate and revenue. Aggregate is a pure function
// of its input and is re-run on every filtered collection, so insights never
// describe records that are no longer in view.
//
// # Filtering
//
// FilterChain composes the active predicates with logical AND in a fixed
// order (cities, date, price, airline, occupancy). The order only changes the
// per-step "remaining" diagnostics. An empty result is reported through
// FilterResult.Empty together with guidance text rather than as an error.
//
// # Summaries
//
// RouteSummaries, DailySummaries, AnalyzeDemand and AnalyzeRevenue produce
// the secondary tables used by the spreadsheet export and the detailed
// narrative. Summarize builds the compact description sent to the AI
// narrative, and Options lists the values a filter form can offer.
package dataprocessing
