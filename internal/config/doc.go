// Package config provides centralized configuration management for the
// airline market analyzer. It loads configuration from multiple sources,
// validates it, and exposes a typed API to the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (AIRMARKET_CONFIG, config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern AIRMARKET_<SECTION>_<FIELD>:
//
//	AIRMARKET_SERVER_PORT=8080
//	AIRMARKET_PROVIDERS_AVIATIONSTACK_KEY=...
//	AIRMARKET_PROVIDERS_OPENSKY_ENABLED=false
//	AIRMARKET_SYNTHETIC_DAYS=30
//	AIRMARKET_NARRATIVE_API_KEY=...
//	AIRMARKET_LOGGING_LEVEL=debug
//
// # Path Management
//
// Paths are resolved once from the configuration:
//
//	paths, err := cfg.GetPaths()
//	reportPath := paths.GetReportPath("airline_analysis_20240115_093000.csv")
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// Use config.Default() to obtain a configuration that does not depend on
// environment variables or external resources.
package config
