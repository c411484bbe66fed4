package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "airmarket/internal/errors"
	"airmarket/internal/infrastructure"
	"airmarket/pkg/contracts/domain"
)

// Predicate names, in application order
const (
	PredicateDeparture   = "departure_city"
	PredicateDestination = "destination_city"
	PredicateDate        = "date_range"
	PredicatePrice       = "price_range"
	PredicateAirline     = "airline"
	PredicateOccupancy   = "occupancy_range"
)

// guidanceRouteHints is how many baseline routes are suggested when a
// filter combination matches nothing
const guidanceRouteHints = 3

// Predicate is a single named record filter
type Predicate struct {
	Name  string
	Match func(domain.FlightRecord) bool
}

// Predicates returns the active predicates for criteria in their fixed
// order. Wildcard or unset criteria produce no predicate.
func Predicates(criteria domain.FilterCriteria) []Predicate {
	var preds []Predicate

	if !domain.IsWildcard(criteria.DepartureCity) {
		city := strings.TrimSpace(criteria.DepartureCity)
		preds = append(preds, Predicate{PredicateDeparture, func(r domain.FlightRecord) bool {
			return r.DepartureCity == city
		}})
	}
	if !domain.IsWildcard(criteria.DestinationCity) {
		city := strings.TrimSpace(criteria.DestinationCity)
		preds = append(preds, Predicate{PredicateDestination, func(r domain.FlightRecord) bool {
			return r.DestinationCity == city
		}})
	}
	if criteria.DateRange != nil {
		dr := *criteria.DateRange
		preds = append(preds, Predicate{PredicateDate, func(r domain.FlightRecord) bool {
			return dr.Contains(r.Date)
		}})
	}
	if criteria.PriceRange != nil {
		pr := *criteria.PriceRange
		preds = append(preds, Predicate{PredicatePrice, func(r domain.FlightRecord) bool {
			return pr.Contains(r.Price)
		}})
	}
	if !domain.IsWildcard(criteria.Airline) {
		airline := strings.TrimSpace(criteria.Airline)
		preds = append(preds, Predicate{PredicateAirline, func(r domain.FlightRecord) bool {
			return r.Airline == airline
		}})
	}
	if criteria.OccupancyRange != nil {
		occupancy := *criteria.OccupancyRange
		preds = append(preds, Predicate{PredicateOccupancy, func(r domain.FlightRecord) bool {
			return occupancy.Contains(r.OccupancyRate)
		}})
	}

	return preds
}

// ApplyPredicates keeps the records matching every predicate and reports how
// many records remained after each one. The input slice is not modified.
func ApplyPredicates(records []domain.FlightRecord, preds []Predicate) ([]domain.FlightRecord, []domain.FilterStep) {
	current := make([]domain.FlightRecord, len(records))
	copy(current, records)

	steps := make([]domain.FilterStep, 0, len(preds))
	for _, p := range preds {
		kept := current[:0:0]
		for _, r := range current {
			if p.Match(r) {
				kept = append(kept, r)
			}
		}
		current = kept
		steps = append(steps, domain.FilterStep{Name: p.Name, Remaining: len(current)})
	}
	return current, steps
}

// FilterResult is the filtered working dataset and the insights computed
// from it
type FilterResult struct {
	Records       []domain.FlightRecord `json:"records"`
	Steps         []domain.FilterStep   `json:"steps"`
	Insights      domain.InsightSet     `json:"insights"`
	BaselineCount int                   `json:"baseline_count"`
	Guidance      []string              `json:"guidance,omitempty"`
}

// Empty reports whether the filters eliminated every record
func (r *FilterResult) Empty() bool {
	return len(r.Records) == 0
}

// Err returns an EmptyFilterResult error carrying the guidance when the
// result is empty, nil otherwise
func (r *FilterResult) Err() error {
	if !r.Empty() {
		return nil
	}
	return apperrors.NewEmptyFilterResultError(r.Guidance)
}

// FilterChain applies filter criteria to a baseline dataset
type FilterChain struct {
	logger   *slog.Logger
	validate *validator.Validate
	metrics  *infrastructure.PipelineMetrics
}

// NewFilterChain creates a filter chain. metrics may be nil.
func NewFilterChain(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *FilterChain {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NoopPipelineMetrics()
	}
	return &FilterChain{
		logger:   logger.With(slog.String("component", "filter_chain")),
		validate: validator.New(),
		metrics:  metrics,
	}
}

// Validate checks that the ranges in criteria are well formed
func (f *FilterChain) Validate(criteria domain.FilterCriteria) error {
	if err := f.validate.Struct(criteria); err != nil {
		return apperrors.NewAppValidationError("invalid filter criteria", err)
	}
	return nil
}

// Apply filters baseline by criteria and recomputes insights from the
// filtered records. An empty result is not an error; callers check
// FilterResult.Empty and show FilterResult.Guidance.
func (f *FilterChain) Apply(ctx context.Context, baseline []domain.FlightRecord, criteria domain.FilterCriteria) (*FilterResult, error) {
	if err := f.Validate(criteria); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, steps := ApplyPredicates(baseline, Predicates(criteria))
	for _, s := range steps {
		f.logger.DebugContext(ctx, fmt.Sprintf("%d flights remaining", s.Remaining), slog.String("filter", s.Name))
	}
	f.logger.InfoContext(ctx, fmt.Sprintf("%d (from %d total)", len(records), len(baseline)),
		slog.Int("filters", len(steps)))

	result := &FilterResult{
		Records:       records,
		Steps:         steps,
		Insights:      Aggregate(records),
		BaselineCount: len(baseline),
	}

	attrs := metric.WithAttributes(attribute.Bool("empty", result.Empty()))
	f.metrics.FilterRuns.Add(ctx, 1, attrs)
	if result.Empty() {
		f.metrics.FilterEmptyResults.Add(ctx, 1)
		result.Guidance = Guidance(criteria, baseline)
		f.logger.WarnContext(ctx, "all data was filtered out", slog.Int("baseline", len(baseline)))
	}

	return result, nil
}

// Guidance produces user-facing suggestions for a criteria combination that
// matched no records
func Guidance(criteria domain.FilterCriteria, baseline []domain.FlightRecord) []string {
	dep, dest := strings.TrimSpace(criteria.DepartureCity), strings.TrimSpace(criteria.DestinationCity)
	depSet, destSet := !domain.IsWildcard(dep), !domain.IsWildcard(dest)

	var lines []string
	switch {
	case depSet && destSet:
		lines = append(lines,
			fmt.Sprintf("No flights found from %s to %s", dep, dest),
			"Try selecting 'All' for one of the cities to see available routes")
		if hint := popularRoutesHint(baseline); hint != "" {
			lines = append(lines, hint)
		}
	case depSet:
		lines = append(lines,
			fmt.Sprintf("No flights found departing from %s", dep),
			"Try selecting 'All' for departure city to see all available routes")
	case destSet:
		lines = append(lines,
			fmt.Sprintf("No flights found arriving at %s", dest),
			"Try selecting 'All' for destination city to see all available routes")
	default:
		lines = append(lines, "No flights match the selected filters")
	}

	return append(lines,
		"Try widening the date, price or occupancy ranges",
		"Refresh the data to load a new sample")
}

func popularRoutesHint(baseline []domain.FlightRecord) string {
	top := Aggregate(baseline).PopularRoutes
	if len(top) == 0 {
		return ""
	}
	names := make([]string, 0, guidanceRouteHints)
	for _, rc := range top[:min(len(top), guidanceRouteHints)] {
		names = append(names, rc.Route)
	}
	return "Popular routes include: " + strings.Join(names, ", ")
}
