// Package http implements the HTTP handlers of the airline market analyzer.
// Handlers are a thin layer over the service layer: they parse query
// parameters, call a service and render JSON or a report download.
//
// # Routes
//
//	GET /api/health              overall health
//	GET /api/health/ready        readiness (503 when not ready)
//	GET /api/health/live         liveness
//	GET /api/version             version information
//	GET /api/flights             filtered flight records
//	GET /api/insights            insights, summaries and narrative
//	GET /api/narrative           composed and AI narrative
//	GET /api/filters/options     selectable filter values
//	POST /api/refresh            drop cached provider data and reload
//	GET /api/export/{format}     csv, spreadsheet or pdf download
//	GET /api/reports             saved reports, newest first
//	POST /api/reports?format=    save a filtered report server side
//	GET /api/reports/{name}      download a saved report
//
// Filter parameters are shared by every filtered route: start_date,
// end_date (YYYY-MM-DD), departure_city, destination_city, airline ("All"
// or empty disables a text filter), min_price, max_price, min_occupancy and
// max_occupancy.
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by errors.ErrorHandler.
// A filter combination that matches no flights is not an error: the
// response has status "empty" and carries guidance lines.
//
// # Testing
//
// Handlers depend on MarketServiceInterface, ReportServiceInterface and
// HealthServiceInterface and are tested with testify mocks and httptest recorders.
package http
