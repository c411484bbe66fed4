package http

import (
	"context"

	"airmarket/internal/files"
	"airmarket/internal/services"
	"airmarket/pkg/contracts/domain"
)

// MarketServiceInterface defines the analysis operations used by MarketHandler
type MarketServiceInterface interface {
	Analyze(ctx context.Context, criteria domain.FilterCriteria) (*services.Analysis, error)
	Options(ctx context.Context) (domain.FilterOptions, error)
	Narrative(ctx context.Context, criteria domain.FilterCriteria) (*services.NarrativeResult, error)
	Export(ctx context.Context, criteria domain.FilterCriteria, format string) (*services.ExportResult, error)
	Reload(ctx context.Context) (*services.RefreshResult, error)
}

// HealthServiceInterface defines the health checks used by HealthHandler
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

// ReportServiceInterface defines the saved report operations used by
// ReportHandler
type ReportServiceInterface interface {
	Save(ctx context.Context, criteria domain.FilterCriteria, format string) (*services.SavedReport, error)
	List(ctx context.Context) ([]files.ReportFile, error)
	Get(ctx context.Context, name string) (files.ReportFile, error)
}
