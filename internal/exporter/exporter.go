package exporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "airmarket/internal/errors"
	"airmarket/internal/infrastructure"
	"airmarket/pkg/contracts/domain"
)

// DefaultFilePrefix names exported report files
const DefaultFilePrefix = "airline_analysis"

// DefaultPDFSampleSize is the number of records printed in the PDF data sample
const DefaultPDFSampleSize = 10

// Exporter serializes a record collection and its insights into reports
type Exporter struct {
	logger        *slog.Logger
	metrics       *infrastructure.PipelineMetrics
	tracer        trace.Tracer
	now           func() time.Time
	pdfSampleSize int
	pdfCompress   bool
	csvBOM        bool
}

// Option configures an Exporter
type Option func(*Exporter)

// WithMetrics records export counts and durations
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(e *Exporter) { e.metrics = m }
}

// WithTracer sets the tracer used for export spans
func WithTracer(t trace.Tracer) Option {
	return func(e *Exporter) { e.tracer = t }
}

// WithClock sets the time source for generation timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithPDFSampleSize sets how many records the PDF data sample shows
func WithPDFSampleSize(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.pdfSampleSize = n
		}
	}
}

// WithPDFCompression toggles stream compression in PDF output
func WithPDFCompression(enabled bool) Option {
	return func(e *Exporter) { e.pdfCompress = enabled }
}

// WithCSVBOM prefixes CSV output with a UTF-8 byte order mark so that Excel
// detects the encoding
func WithCSVBOM(enabled bool) Option {
	return func(e *Exporter) { e.csvBOM = enabled }
}

// New creates an exporter
func New(logger *slog.Logger, opts ...Option) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Exporter{
		logger:        logger.With(slog.String("component", "exporter")),
		metrics:       infrastructure.NoopPipelineMetrics(),
		tracer:        otel.Tracer(infrastructure.InstrumentationName),
		now:           time.Now,
		pdfSampleSize: DefaultPDFSampleSize,
		pdfCompress:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export returns the serialized report
func (e *Exporter) Export(ctx context.Context, records []domain.FlightRecord, insights domain.InsightSet, format domain.ExportFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(ctx, &buf, records, insights, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes the report to w. Unknown formats fail with
// UNSUPPORTED_FORMAT; serializer and writer failures, including panics, fail
// with EXPORT_FAILED. The records are never modified.
func (e *Exporter) Write(ctx context.Context, w io.Writer, records []domain.FlightRecord, insights domain.InsightSet, format domain.ExportFormat) (err error) {
	format = domain.ParseExportFormat(string(format))
	if !format.Valid() {
		return apperrors.NewUnsupportedFormatError(string(format))
	}

	ctx, span := e.tracer.Start(ctx, "exporter.Write", trace.WithAttributes(
		attribute.String("format", string(format)),
		attribute.Int("records", len(records)),
	))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewExportFailedError(string(format), fmt.Errorf("panic: %v", r))
		}
		e.metrics.RecordExport(ctx, string(format), time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.logger.ErrorContext(ctx, "export failed",
				slog.String("format", string(format)),
				slog.String("error", err.Error()))
		} else {
			e.logger.InfoContext(ctx, "report exported",
				slog.String("format", string(format)),
				slog.Int("records", len(records)),
				slog.Duration("duration", time.Since(start)))
		}
		span.End()
	}()

	switch format {
	case domain.FormatCSV:
		err = e.writeCSV(w, records)
	case domain.FormatSpreadsheet:
		err = e.writeSpreadsheet(w, records, insights)
	case domain.FormatPDF:
		err = e.writePDF(w, records, insights)
	}
	if err != nil {
		return apperrors.NewExportFailedError(string(format), err)
	}
	return nil
}

// Filename builds the report file name for a format and timestamp
func Filename(prefix string, format domain.ExportFormat, t time.Time) string {
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	return fmt.Sprintf("%s_%s.%s", prefix, t.Format("20060102_150405"), format.Extension())
}

// SaveReport exports into a new file under dir and returns its path. A
// partially written file is removed on failure.
func (e *Exporter) SaveReport(ctx context.Context, dir, prefix string, records []domain.FlightRecord, insights domain.InsightSet, format domain.ExportFormat) (string, error) {
	format = domain.ParseExportFormat(string(format))
	if !format.Valid() {
		return "", apperrors.NewUnsupportedFormatError(string(format))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.NewExportFailedError(string(format), fmt.Errorf("failed to create directory: %w", err))
	}

	path := filepath.Join(dir, Filename(prefix, format, e.now()))
	file, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewExportFailedError(string(format), fmt.Errorf("failed to create file: %w", err))
	}

	writeErr := e.Write(ctx, file, records, insights, format)
	closeErr := file.Close()
	if writeErr == nil && closeErr != nil {
		writeErr = apperrors.NewExportFailedError(string(format), fmt.Errorf("failed to close file: %w", closeErr))
	}
	if writeErr != nil {
		os.Remove(path)
		return "", writeErr
	}
	return path, nil
}
