package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"airmarket/internal/app"
	"airmarket/internal/config"
	"airmarket/internal/dataprocessing"
	"airmarket/internal/files"
	"airmarket/internal/infrastructure"
	"airmarket/internal/services"
	api "airmarket/pkg/contracts/api/v1"
	"airmarket/pkg/contracts/domain"
)

// options are the parsed command line flags
type options struct {
	outDir  string
	prefix  string
	formats []domain.ExportFormat
	query   api.FlightQuery
	ai      bool
	retain  int
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	// The report command is short lived; nothing scrapes its metrics.
	cfg.Telemetry.EnableMetrics = false

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer otelProviders.Shutdown(context.Background())

	if opts.outDir == "" {
		paths, err := cfg.GetPaths()
		if err != nil {
			logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
			os.Exit(1)
		}
		opts.outDir = paths.ReportsDir
	}
	if opts.prefix == "" {
		opts.prefix = cfg.Export.FilePrefix
	}
	if opts.retain < 0 {
		opts.retain = cfg.Export.RetainReports
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, otelProviders, opts, logger, os.Stdout); err != nil {
		logger.Error("Report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// parseFlags parses and validates the command line
func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)

	opts := &options{}
	formats := fs.String("formats", "csv,spreadsheet,pdf", "comma separated export formats (csv, spreadsheet, pdf)")
	fs.StringVar(&opts.outDir, "out", "", "output directory for reports (defaults to the configured reports directory)")
	fs.StringVar(&opts.prefix, "prefix", "", "report file name prefix (defaults to the configured prefix)")
	fs.BoolVar(&opts.ai, "ai", false, "include the AI narrative when a key is configured")
	fs.IntVar(&opts.retain, "retain", -1, "reports to keep after saving (-1 uses the configured value, 0 keeps all)")

	fs.StringVar(&opts.query.StartDate, "from", "", "first flight date, YYYY-MM-DD")
	fs.StringVar(&opts.query.EndDate, "to", "", "last flight date, YYYY-MM-DD")
	fs.StringVar(&opts.query.DepartureCity, "departure", "", "departure city")
	fs.StringVar(&opts.query.DestinationCity, "destination", "", "destination city")
	fs.StringVar(&opts.query.Airline, "airline", "", "airline name")
	fs.StringVar(&opts.query.MinPrice, "min-price", "", "minimum ticket price")
	fs.StringVar(&opts.query.MaxPrice, "max-price", "", "maximum ticket price")
	fs.StringVar(&opts.query.MinOccupancy, "min-occupancy", "", "minimum occupancy rate in percent")
	fs.StringVar(&opts.query.MaxOccupancy, "max-occupancy", "", "maximum occupancy rate in percent")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	parsed, err := parseFormats(*formats)
	if err != nil {
		return nil, err
	}
	opts.formats = parsed

	if err := validator.New().Struct(opts.query); err != nil {
		return nil, fmt.Errorf("invalid filter flags: %w", err)
	}
	return opts, nil
}

// parseFormats splits a comma separated list, dropping duplicates
func parseFormats(s string) ([]domain.ExportFormat, error) {
	seen := make(map[domain.ExportFormat]bool)
	var formats []domain.ExportFormat

	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f := domain.ParseExportFormat(part)
		if !f.Valid() {
			return nil, fmt.Errorf("unsupported format %q", strings.TrimSpace(part))
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}

	if len(formats) == 0 {
		return nil, errors.New("at least one export format is required")
	}
	return formats, nil
}

// run fetches one snapshot, prints the narrative and writes every requested
// report concurrently
func run(ctx context.Context, cfg *config.Config, otelProviders *infrastructure.OTelProviders, opts *options, logger *slog.Logger, out io.Writer) error {
	criteria, err := opts.query.ToCriteria()
	if err != nil {
		return fmt.Errorf("invalid filter flags: %w", err)
	}

	components, err := app.BuildComponents(cfg, logger, otelProviders)
	if err != nil {
		return err
	}
	svc := services.NewMarketService(components.Pipeline, components.Exporter, components.Narrator, opts.prefix, logger)

	analysis, err := svc.Analyze(ctx, criteria)
	if err != nil {
		return err
	}
	view := analysis.View

	fmt.Fprintf(out, "Source: %s\n", view.Source)
	fmt.Fprintf(out, "Flights: %s of %s\n\n", humanize.Comma(int64(len(view.Records))), humanize.Comma(int64(view.BaselineCount)))

	if view.Empty() {
		fmt.Fprintln(out, "No flights match the selected filters.")
		for _, hint := range view.Guidance {
			fmt.Fprintf(out, "- %s\n", hint)
		}
		fmt.Fprintln(out)
	} else {
		fmt.Fprintln(out, analysis.Narrative)
		fmt.Fprintln(out)

		if opts.ai && components.Narrator.Enabled() {
			fmt.Fprintln(out, "AI Insights:")
			fmt.Fprintln(out, components.Narrator.Narrate(ctx, dataprocessing.Summarize(view.Records)))
			fmt.Fprintln(out)
		}
	}

	paths := make([]string, len(opts.formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range opts.formats {
		g.Go(func() error {
			path, err := components.Exporter.SaveReport(gctx, opts.outDir, opts.prefix, view.Records, view.Insights, format)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Fprintf(out, "Report saved: %s\n", path)
	}

	removed, err := files.NewCatalog(opts.outDir, opts.prefix).Prune(opts.retain)
	if err != nil {
		return err
	}
	if removed > 0 {
		fmt.Fprintf(out, "Old reports removed: %d\n", removed)
	}
	return nil
}
