// Package services implements the business logic layer of the airline market
// analyzer. It sits between the HTTP handlers and the analysis pipeline so
// that handlers only translate requests and responses.
//
// # Available Services
//
//	- MarketService: refreshes a snapshot, applies filters and returns
//	  insights, narratives, filter options and exported reports
//	- HealthService: health, readiness and liveness checks plus version info
//
// # Request Model
//
// Every MarketService call fetches its own snapshot through the provider
// chain. The provider cache is the only state shared between requests, so
// concurrent requests never observe each other's filters.
//
// An empty filter result is not an error for Analyze; the returned view
// carries guidance instead. Narrative fails with EMPTY_FILTER_RESULT for an
// empty view so the AI collaborator is never asked about no data.
//
// # Testing
//
// The AI collaborator is injected as a Narrator and mocked with testify:
//
//	narrator := new(MockNarrator)
//	narrator.On("Enabled").Return(true)
//	narrator.On("Narrate", mock.Anything, mock.Anything).Return("- insight")
package services
