package app

import (
	"fmt"
	"log/slog"

	"airmarket/internal/config"
	"airmarket/internal/dataprocessing"
	"airmarket/internal/exporter"
	"airmarket/internal/infrastructure"
	"airmarket/internal/ingestion"
	"airmarket/internal/narrative"
	"airmarket/internal/pipeline"
)

// Components holds the analysis stack shared by the web server and the
// report command
type Components struct {
	Metrics  *infrastructure.PipelineMetrics
	Chain    *ingestion.Chain
	Pipeline *pipeline.Pipeline
	Exporter *exporter.Exporter
	Narrator *narrative.AINarrator
}

// BuildComponents wires providers, normalizer, filters, pipeline, exporter
// and the AI narrator from configuration
func BuildComponents(cfg *config.Config, logger *slog.Logger, otelProviders *infrastructure.OTelProviders) (*Components, error) {
	metrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	chain := ingestion.NewChain(logger, metrics, BuildProviders(cfg, logger)...)

	normalizer := dataprocessing.NewNormalizer(logger, dataprocessing.WithSimulationSeed(cfg.Synthetic.Seed))
	filters := dataprocessing.NewFilterChain(logger, metrics)

	p := pipeline.New(chain, normalizer, filters, logger,
		pipeline.WithMetrics(metrics),
		pipeline.WithTracer(otelProviders.Tracer))

	exp := exporter.New(logger,
		exporter.WithMetrics(metrics),
		exporter.WithTracer(otelProviders.Tracer),
		exporter.WithPDFSampleSize(cfg.Export.PDFSampleSize))

	narrator := narrative.NewAINarrator(cfg.Narrative, logger)

	logger.Info("Analysis components initialized",
		slog.Any("providers", chain.Providers()),
		slog.Bool("ai_narrative", narrator.Enabled()))

	return &Components{
		Metrics:  metrics,
		Chain:    chain,
		Pipeline: p,
		Exporter: exp,
		Narrator: narrator,
	}, nil
}

// BuildProviders returns the provider fallback order. AviationStack is only
// tried when a key is configured; the synthetic generator always comes last
// so a fetch never ends without data.
func BuildProviders(cfg *config.Config, logger *slog.Logger) []ingestion.Provider {
	pc := cfg.Providers
	providers := make([]ingestion.Provider, 0, 3)

	if cfg.AviationStackEnabled() {
		aviationStack := ingestion.NewAviationStackProvider(pc.AviationStackKey, pc.AviationStackLimit, pc.Timeout, logger,
			ingestion.WithBaseURL(pc.AviationStackURL))
		providers = append(providers, cached(aviationStack, pc, logger))
	}

	if pc.OpenSkyEnabled {
		openSky := ingestion.NewOpenSkyProvider(pc.OpenSkyLookback, pc.OpenSkyLimit, pc.Timeout, pc.OpenSkyMinInterval, logger,
			ingestion.WithBaseURL(pc.OpenSkyURL))
		providers = append(providers, cached(openSky, pc, logger))
	}

	return append(providers, ingestion.NewSyntheticProvider(cfg.Synthetic.Seed, cfg.Synthetic.Days))
}

func cached(p ingestion.Provider, pc config.ProvidersConfig, logger *slog.Logger) ingestion.Provider {
	if pc.CacheTTL <= 0 {
		return p
	}
	return ingestion.NewCachedProvider(p, pc.CacheTTL, logger)
}
