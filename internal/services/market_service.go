package services

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"airmarket/internal/dataprocessing"
	apperrors "airmarket/internal/errors"
	"airmarket/internal/exporter"
	"airmarket/internal/narrative"
	"airmarket/internal/pipeline"
	"airmarket/pkg/contracts/domain"
)

// Narrator produces the optional AI narrative for a data summary
type Narrator interface {
	Narrate(ctx context.Context, summary domain.DataSummary) string
	Enabled() bool
}

// Analysis is a filtered view together with the tables and text derived
// from it
type Analysis struct {
	View      *pipeline.View                `json:"view"`
	FetchedAt time.Time                     `json:"fetched_at"`
	Narrative string                        `json:"narrative"`
	Routes    []domain.RouteSummary         `json:"routes"`
	Daily     []domain.DailySummary         `json:"daily"`
	Demand    *domain.DemandAnalysis        `json:"demand,omitempty"`
	Revenue   domain.RevenueAnalysis        `json:"revenue"`
	Stats     dataprocessing.NormalizeStats `json:"stats"`
}

// NarrativeResult holds the composed narrative and the AI narrative for one
// filtered view
type NarrativeResult struct {
	Summary   domain.DataSummary `json:"summary"`
	Narrative string             `json:"narrative"`
	AI        string             `json:"ai_narrative"`
	AIEnabled bool               `json:"ai_enabled"`
}

// ExportResult is a serialized report ready to be sent to a client
type ExportResult struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	Records     int    `json:"records"`
}

// RefreshResult describes the snapshot loaded by a forced refresh
type RefreshResult struct {
	SnapshotID string    `json:"snapshot_id"`
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
	Records    int       `json:"records"`
	Skipped    int       `json:"skipped"`
}

// MarketService runs the analysis pipeline for the HTTP handlers. Each call
// fetches a fresh snapshot; nothing is shared between requests apart from
// the provider cache.
type MarketService struct {
	pipeline *pipeline.Pipeline
	exporter *exporter.Exporter
	composer *narrative.Composer
	narrator Narrator
	prefix   string
	now      func() time.Time
	logger   *slog.Logger
}

// NewMarketService creates a market service. narrator may be nil, in which
// case the AI narrative is reported as not configured.
func NewMarketService(p *pipeline.Pipeline, exp *exporter.Exporter, narrator Narrator, filePrefix string, logger *slog.Logger) *MarketService {
	if logger == nil {
		logger = slog.Default()
	}
	if filePrefix == "" {
		filePrefix = exporter.DefaultFilePrefix
	}
	return &MarketService{
		pipeline: p,
		exporter: exp,
		composer: narrative.NewComposer(),
		narrator: narrator,
		prefix:   filePrefix,
		now:      time.Now,
		logger:   logger.With(slog.String("service", "market")),
	}
}

// view refreshes the dataset and applies criteria to it
func (s *MarketService) view(ctx context.Context, criteria domain.FilterCriteria) (*pipeline.Snapshot, *pipeline.View, error) {
	snap, err := s.pipeline.Refresh(ctx)
	if err != nil {
		return nil, nil, err
	}
	view, err := s.pipeline.Apply(ctx, snap, criteria)
	if err != nil {
		return nil, nil, err
	}
	return snap, view, nil
}

// Reload discards cached provider results and fetches a new snapshot
func (s *MarketService) Reload(ctx context.Context) (*RefreshResult, error) {
	s.pipeline.Invalidate()
	snap, err := s.pipeline.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.String("snapshot_id", snap.ID),
		slog.String("source", snap.Source),
		slog.Int("records", snap.Len()))

	return &RefreshResult{
		SnapshotID: snap.ID,
		Source:     snap.Source,
		FetchedAt:  snap.FetchedAt,
		Records:    snap.Len(),
		Skipped:    snap.Stats.Skipped,
	}, nil
}

// Analyze returns the filtered flights, their insights and the detailed
// narrative. An empty view is returned without error.
func (s *MarketService) Analyze(ctx context.Context, criteria domain.FilterCriteria) (*Analysis, error) {
	snap, view, err := s.view(ctx, criteria)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		View:      view,
		FetchedAt: snap.FetchedAt,
		Narrative: s.composer.ComposeDetailed(view.Insights, view.Records),
		Routes:    dataprocessing.RouteSummaries(view.Records),
		Daily:     dataprocessing.DailySummaries(view.Records),
		Revenue:   dataprocessing.AnalyzeRevenue(view.Records),
		Stats:     snap.Stats,
	}
	if demand, ok := dataprocessing.AnalyzeDemand(view.Insights); ok {
		analysis.Demand = &demand
	}

	s.logger.DebugContext(ctx, "analysis complete",
		slog.String("snapshot_id", view.SnapshotID),
		slog.Int("records", len(view.Records)),
		slog.Bool("empty", view.Empty()))
	return analysis, nil
}

// Options lists the filter values available in a fresh baseline
func (s *MarketService) Options(ctx context.Context) (domain.FilterOptions, error) {
	snap, err := s.pipeline.Refresh(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return dataprocessing.Options(snap.Records()), nil
}

// Narrative composes the narratives for a filtered view. The AI collaborator
// is not consulted for an empty view, which fails with EMPTY_FILTER_RESULT.
func (s *MarketService) Narrative(ctx context.Context, criteria domain.FilterCriteria) (*NarrativeResult, error) {
	_, view, err := s.view(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if view.Empty() {
		return nil, view.Err()
	}

	result := &NarrativeResult{
		Summary:   dataprocessing.Summarize(view.Records),
		Narrative: s.composer.Compose(view.Insights),
		AI:        narrative.NotConfiguredMessage,
	}
	if s.narrator != nil && s.narrator.Enabled() {
		result.AIEnabled = true
		result.AI = s.narrator.Narrate(ctx, result.Summary)
	}
	return result, nil
}

// Export serializes a filtered view. Unknown formats fail with
// UNSUPPORTED_FORMAT before any data is fetched.
func (s *MarketService) Export(ctx context.Context, criteria domain.FilterCriteria, format string) (*ExportResult, error) {
	f := domain.ParseExportFormat(format)
	if !f.Valid() {
		return nil, apperrors.NewUnsupportedFormatError(format)
	}

	_, view, err := s.view(ctx, criteria)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.exporter.Write(ctx, &buf, view.Records, view.Insights, f); err != nil {
		return nil, err
	}

	return &ExportResult{
		Filename:    exporter.Filename(s.prefix, f, s.now()),
		ContentType: f.MIMEType(),
		Data:        buf.Bytes(),
		Records:     len(view.Records),
	}, nil
}

// AIEnabled reports whether an AI narrator is configured
func (s *MarketService) AIEnabled() bool {
	return s.narrator != nil && s.narrator.Enabled()
}
