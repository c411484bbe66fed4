// Package app wires configuration, observability, the analysis components
// and the HTTP layer into a runnable application.
//
// # Initialization Flow
//
//	1. Initialize logging from the loaded configuration
//	2. Resolve and create the data, reports and logs directories
//	3. Initialize OpenTelemetry tracing and the Prometheus metrics exporter
//	4. Build the provider chain, normalizer, filter chain, pipeline,
//	   exporter and AI narrator (BuildComponents)
//	5. Create the market and health services
//	6. Set up middleware and routes, then the HTTP server
//
// BuildComponents is shared with the report command so both entry points
// use the same provider fallback order.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app
