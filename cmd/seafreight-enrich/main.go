// Command seafreight-enrich runs the dataset pipeline once from the command
// line: load the four collections, enrich them, compute the KPI strip and
// write the enriched shipments CSV. It is the batch counterpart of the
// server's upload endpoint, useful for inspecting what a dataset will look
// like on the dashboard before serving it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"seafreight/internal/config"
	"seafreight/internal/exporter"
	"seafreight/internal/files"
	"seafreight/internal/infrastructure"
	"seafreight/internal/ingest"
	"seafreight/internal/pipeline"
	"seafreight/internal/validation"
	"seafreight/pkg/contracts/domain"
)

// enrichOptions collects the command line knobs after defaults are applied.
type enrichOptions struct {
	outPath  string
	seed     int64
	onTime   float64
	maxDelay int
}

// enrichSummary is what one run reports when it finishes.
type enrichSummary struct {
	Counts      domain.DatasetCounts
	ContentHash string
	KPIs        domain.KpiSnapshot
	OutPath     string
	Elapsed     time.Duration
}

func main() {
	inDir := flag.String("in", "", "directory holding the four dataset files, CSV or XLSX (defaults to the data directory next to the executable)")
	outPath := flag.String("out", "", "output path for the enriched shipments CSV (defaults to a stamped file in the exports directory)")
	seed := flag.Int64("seed", 0, "delivery simulation seed (0 uses the configured value)")
	onTime := flag.Float64("ontime", 0, "probability a delivered shipment arrived on its ETA (0 uses the configured value)")
	maxDelay := flag.Int("maxdelay", 0, "cap in days for simulated delays (0 uses the configured value)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not read .env file", slog.String("error", err.Error()))
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", slog.String("error", err.Error()))
		cfg = &config.Config{
			Logging: config.LoggingConfig{
				Level:    "info",
				Format:   "json",
				Output:   "both",
				FilePath: paths.GetLogPath("enrich.log"),
			},
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	opts := enrichOptions{
		outPath:  *outPath,
		seed:     *seed,
		onTime:   *onTime,
		maxDelay: *maxDelay,
	}
	if opts.seed == 0 {
		opts.seed = cfg.Pipeline.Seed
	}
	if opts.onTime == 0 {
		opts.onTime = cfg.Pipeline.OnTimeProbability
	}
	if opts.maxDelay == 0 {
		opts.maxDelay = cfg.Pipeline.MaxDelayDays
	}
	if opts.outPath == "" {
		opts.outPath = paths.GetStampedExportPath("enriched_shipments", "csv", time.Now())
	}

	inputs, err := datasetFiles(*inDir, paths)
	if err != nil {
		logger.Error("Could not locate dataset files", slog.Any("error", err))
		os.Exit(1)
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateDatasetFiles(inputs); err != nil {
		logger.Error("Dataset files failed validation", slog.Any("error", err))
		os.Exit(1)
	}
	if err := validator.ValidateOutputPath(opts.outPath); err != nil {
		logger.Error("Output path is not writable", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Starting enrichment run",
		slog.String("input_dir", filepath.Dir(inputs[config.CollectionShipments])),
		slog.String("output", opts.outPath),
		slog.Int64("seed", opts.seed))

	summary, err := runEnrichment(context.Background(), logger, paths, inputs, opts)
	if err != nil {
		logger.Error("Enrichment run failed", slog.Any("error", err))
		os.Exit(1)
	}

	if _, err := files.NewManager(paths, logger).PruneExports(config.DefaultMaxStoredExports); err != nil {
		logger.Warn("Could not prune old exports", slog.Any("error", err))
	}

	printSummary(os.Stdout, summary)
}

// datasetFiles maps collection names to input paths: the bundled defaults
// when inDir is empty, otherwise whatever CSV or XLSX files carry the
// canonical collection names under inDir.
func datasetFiles(inDir string, paths *config.Paths) (map[string]string, error) {
	if inDir == "" {
		return paths.DatasetFiles(), nil
	}
	return files.NewDiscovery(inDir).FindDatasetFiles("")
}

// runEnrichment loads the four collections, runs the enrichment pass,
// computes the KPI strip and streams the enriched shipments to the output
// path.
func runEnrichment(ctx context.Context, logger *slog.Logger, paths *config.Paths, files map[string]string, opts enrichOptions) (*enrichSummary, error) {
	start := time.Now()

	loader := ingest.NewLoader(logger)
	result, err := loader.LoadFromFiles(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	enricher := pipeline.NewEnricher(logger, pipeline.EnricherConfig{
		Seed:              opts.seed,
		OnTimeProbability: opts.onTime,
		MaxDelayDays:      opts.maxDelay,
	})
	enriched := enricher.Enrich(ctx, result.Dataset)

	engine := pipeline.NewEngine(logger, pipeline.DefaultEngineConfig())
	kpis := engine.KPIs(enriched.Shipments, enriched.Invoices, enriched.Warehouse)

	shipmentExporter := exporter.NewShipmentExporter(paths)
	if err := shipmentExporter.ExportShipmentsStreaming(enriched.Shipments, opts.outPath); err != nil {
		return nil, fmt.Errorf("write enriched shipments: %w", err)
	}

	return &enrichSummary{
		Counts:      enriched.Counts(),
		ContentHash: result.ContentHash,
		KPIs:        kpis,
		OutPath:     opts.outPath,
		Elapsed:     time.Since(start),
	}, nil
}

// printSummary writes the human-readable run report.
func printSummary(w io.Writer, s *enrichSummary) {
	fmt.Fprintf(w, "Enrichment finished in %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Content hash:  %s\n", s.ContentHash[:12])
	fmt.Fprintf(w, "  Rows:          %d shipments, %d invoices, %d warehouse, %d clients\n",
		s.Counts.Shipments, s.Counts.Invoices, s.Counts.Warehouse, s.Counts.Clients)
	fmt.Fprintf(w, "  Delayed:       %.2f%% of shipments\n", s.KPIs.DelayedPct)
	fmt.Fprintf(w, "  Cost variance: %s (%.2f%% over plan)\n",
		s.KPIs.CostVariance.StringFixed(2), s.KPIs.VariancePct)
	fmt.Fprintf(w, "  Paid rate:     %.2f%%, outstanding %s\n",
		s.KPIs.PaidRate, s.KPIs.OutstandingAmount.StringFixed(2))
	fmt.Fprintf(w, "  On hand:       %d units, SLA %.2f%%\n", s.KPIs.OnHand, s.KPIs.SLAPct)
	fmt.Fprintf(w, "  Output:        %s\n", s.OutPath)
}
