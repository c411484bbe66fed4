package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"airmarket/internal/dataprocessing"
	apperrors "airmarket/internal/errors"
	"airmarket/internal/infrastructure"
	"airmarket/internal/ingestion"
	"airmarket/pkg/contracts/domain"
)

// Snapshot is one immutable fetch cycle: the unfiltered baseline records and
// the insights computed from them
type Snapshot struct {
	ID        string                        `json:"id"`
	Source    string                        `json:"source"`
	FetchedAt time.Time                     `json:"fetched_at"`
	Insights  domain.InsightSet             `json:"insights"`
	Stats     dataprocessing.NormalizeStats `json:"stats"`

	records []domain.FlightRecord
}

// Records returns a copy of the baseline records
func (s *Snapshot) Records() []domain.FlightRecord {
	out := make([]domain.FlightRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of baseline records
func (s *Snapshot) Len() int {
	return len(s.records)
}

// NewSnapshot builds a snapshot from already derived records. The records
// are copied.
func NewSnapshot(source string, fetchedAt time.Time, records []domain.FlightRecord) *Snapshot {
	owned := make([]domain.FlightRecord, len(records))
	copy(owned, records)
	return &Snapshot{
		ID:        uuid.New().String(),
		Source:    source,
		FetchedAt: fetchedAt,
		Insights:  dataprocessing.Aggregate(owned),
		records:   owned,
	}
}

// View is the filtered working dataset derived from a snapshot
type View struct {
	SnapshotID    string                `json:"snapshot_id"`
	Source        string                `json:"source"`
	BaselineCount int                   `json:"baseline_count"`
	Records       []domain.FlightRecord `json:"records"`
	Insights      domain.InsightSet     `json:"insights"`
	Steps         []domain.FilterStep   `json:"steps"`
	Guidance      []string              `json:"guidance,omitempty"`
}

// Empty reports whether the filters eliminated every record
func (v *View) Empty() bool {
	return len(v.Records) == 0
}

// Err returns an EMPTY_FILTER_RESULT error for an empty view, nil otherwise
func (v *View) Err() error {
	if !v.Empty() {
		return nil
	}
	return apperrors.NewEmptyFilterResultError(v.Guidance)
}

// Pipeline runs fetch, normalization, derivation, filtering and aggregation
type Pipeline struct {
	provider   ingestion.Provider
	normalizer *dataprocessing.Normalizer
	filters    *dataprocessing.FilterChain
	logger     *slog.Logger
	metrics    *infrastructure.PipelineMetrics
	tracer     trace.Tracer
	now        func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithMetrics sets the pipeline metrics
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracer sets the tracer for pipeline spans
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithClock sets the time source for snapshot timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline
func New(provider ingestion.Provider, normalizer *dataprocessing.Normalizer, filters *dataprocessing.FilterChain, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		provider:   provider,
		normalizer: normalizer,
		filters:    filters,
		logger:     logger.With(slog.String("component", "pipeline")),
		metrics:    infrastructure.NoopPipelineMetrics(),
		tracer:     otel.Tracer(infrastructure.InstrumentationName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Invalidate drops any cached provider results so the next Refresh fetches
// from the sources again
func (p *Pipeline) Invalidate() {
	if inv, ok := p.provider.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
}

// acceptingProvider is implemented by providers that can skip a result the
// caller cannot use, such as ingestion.Chain
type acceptingProvider interface {
	FetchAccepted(ctx context.Context, accept ingestion.AcceptFunc) ([]domain.RawRecord, error)
}

// Refresh fetches a new dataset and returns its snapshot. A provider whose
// records all fail normalization is treated like an empty one, so the chain
// keeps falling back. It fails with EMPTY_DATASET when no provider produced
// a usable record.
func (p *Pipeline) Refresh(ctx context.Context) (*Snapshot, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Refresh")
	defer span.End()
	start := time.Now()

	var (
		raw     []domain.RawRecord
		records []domain.FlightRecord
		stats   dataprocessing.NormalizeStats
		err     error
	)
	normalize := func(batch []domain.RawRecord) bool {
		records, stats = p.normalizer.NormalizeWithStats(batch)
		p.metrics.RecordsNormalized.Add(ctx, int64(stats.Output))
		p.metrics.RecordsSkipped.Add(ctx, int64(stats.Skipped))
		return len(records) > 0
	}

	if ap, ok := p.provider.(acceptingProvider); ok {
		raw, err = ap.FetchAccepted(ctx, normalize)
	} else {
		raw, err = p.provider.FetchFlights(ctx)
		if err == nil && !normalize(raw) {
			err = apperrors.NewEmptyDatasetError([]string{p.provider.Name()}).
				WithContext("skipped", stats.Skipped)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	source := raw[0].Source
	snap := NewSnapshot(source, p.now(), dataprocessing.Derive(records))
	snap.Stats = stats

	duration := time.Since(start)
	p.metrics.RefreshDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("source", source)))
	span.SetAttributes(
		attribute.String("snapshot.id", snap.ID),
		attribute.String("source", source),
		attribute.Int("records", snap.Len()),
	)

	p.logger.InfoContext(ctx, "dataset refreshed",
		slog.String("snapshot_id", snap.ID),
		slog.String("source", source),
		slog.Int("records", snap.Len()),
		slog.Int("skipped", stats.Skipped),
		slog.Int("simulated", stats.Simulated),
		slog.Duration("duration", duration))

	return snap, nil
}

// Apply filters a snapshot. An empty view is returned without error; check
// View.Empty.
func (p *Pipeline) Apply(ctx context.Context, snap *Snapshot, criteria domain.FilterCriteria) (*View, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Apply", trace.WithAttributes(attribute.String("snapshot.id", snap.ID)))
	defer span.End()

	result, err := p.filters.Apply(ctx, snap.records, criteria)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(result.Records)))

	return &View{
		SnapshotID:    snap.ID,
		Source:        snap.Source,
		BaselineCount: result.BaselineCount,
		Records:       result.Records,
		Insights:      result.Insights,
		Steps:         result.Steps,
		Guidance:      result.Guidance,
	}, nil
}
