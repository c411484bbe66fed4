package services

import (
	"context"
	"log/slog"
	"path/filepath"

	apperrors "airmarket/internal/errors"
	"airmarket/internal/files"
	"airmarket/pkg/contracts/domain"
)

// SavedReport is a report written to the reports directory
type SavedReport struct {
	files.ReportFile
	Records int `json:"records"`
}

// ReportService saves filtered views as report files and serves the
// catalog of saved reports
type ReportService struct {
	market  *MarketService
	catalog *files.Catalog
	retain  int
	logger  *slog.Logger
}

// NewReportService creates a report service. Reports beyond the newest
// retain are pruned after each save; retain <= 0 keeps everything.
func NewReportService(market *MarketService, catalog *files.Catalog, retain int, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		market:  market,
		catalog: catalog,
		retain:  retain,
		logger:  logger.With(slog.String("service", "report")),
	}
}

// Save writes a filtered view into the reports directory. Unknown formats
// fail with UNSUPPORTED_FORMAT before any data is fetched.
func (s *ReportService) Save(ctx context.Context, criteria domain.FilterCriteria, format string) (*SavedReport, error) {
	f := domain.ParseExportFormat(format)
	if !f.Valid() {
		return nil, apperrors.NewUnsupportedFormatError(format)
	}

	_, view, err := s.market.view(ctx, criteria)
	if err != nil {
		return nil, err
	}

	path, err := s.market.exporter.SaveReport(ctx, s.catalog.Dir(), s.catalog.Prefix(), view.Records, view.Insights, f)
	if err != nil {
		return nil, err
	}

	report, err := s.catalog.Resolve(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "report saved",
		slog.String("name", report.Name),
		slog.String("format", string(f)),
		slog.Int("records", len(view.Records)))

	if removed, err := s.catalog.Prune(s.retain); err != nil {
		s.logger.WarnContext(ctx, "failed to prune old reports", slog.String("error", err.Error()))
	} else if removed > 0 {
		s.logger.InfoContext(ctx, "old reports pruned", slog.Int("removed", removed))
	}

	return &SavedReport{ReportFile: report, Records: len(view.Records)}, nil
}

// List returns the saved reports, newest first
func (s *ReportService) List(ctx context.Context) ([]files.ReportFile, error) {
	return s.catalog.List()
}

// Get resolves a saved report by file name
func (s *ReportService) Get(ctx context.Context, name string) (files.ReportFile, error) {
	return s.catalog.Resolve(name)
}
