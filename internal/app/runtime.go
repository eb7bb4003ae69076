package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"oddscli/internal/collector"
	"oddscli/internal/config"
	"oddscli/internal/infrastructure"
	"oddscli/internal/ingestion"
	"oddscli/internal/timeseries"
	"oddscli/internal/validation"
)

// Options configures Bootstrap
type Options struct {
	Component string
	// Console receives console log output; nil means stdout.
	Console io.Writer
	// SeriesName overrides the configured series when not empty.
	SeriesName string
}

// Runtime holds the process-wide dependencies of a command
type Runtime struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	OTel    *infrastructure.OTelProviders
	Metrics *infrastructure.Metrics
}

// Bootstrap loads the configuration and builds a Runtime from it
func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewRuntime(cfg, opts)
}

// NewRuntime builds a Runtime from an already loaded configuration
func NewRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	if opts.SeriesName != "" {
		cfg.Paths.SeriesName = opts.SeriesName
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	logger, err := infrastructure.InitializeLoggerWithConsole(cfg.Logging, paths.LogFile, console)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if opts.Component != "" {
		logger = logger.With(slog.String("command", opts.Component))
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, paths.TraceFile), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	metrics, err := infrastructure.NewMetrics(providers.Meter)
	if err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	logger.Info("Starting",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("series", paths.SeriesName))
	paths.LogPathResolution(logger)

	return &Runtime{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		OTel:    providers,
		Metrics: metrics,
	}, nil
}

// Store opens the configured series
func (rt *Runtime) Store() *timeseries.Store {
	return timeseries.NewStore(rt.Paths.SeriesFile,
		timeseries.WithLogger(infrastructure.WithSeries(rt.Logger, rt.Paths.SeriesName)))
}

// Orchestrator builds the ingest transaction over store
func (rt *Runtime) Orchestrator(store ingestion.SeriesStore) *ingestion.Orchestrator {
	return ingestion.NewOrchestrator(
		validation.NewRecordValidator(rt.Logger, rt.Config.Ingest.SumTolerance),
		store,
		ingestion.WithLogger(rt.Logger),
		ingestion.WithTracer(rt.OTel.Tracer),
		ingestion.WithMetrics(rt.Metrics),
	)
}

// Close writes the metrics textfile, flushes telemetry and closes the log file.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if err := rt.OTel.WriteMetricsTextfile(rt.Paths.MetricsTextfile); err != nil {
		errs = append(errs, err)
	}
	if err := rt.OTel.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// UseSeries switches the runtime to another series in the data directory
func (rt *Runtime) UseSeries(name string) {
	rt.Paths.SeriesName = name
	rt.Paths.SeriesFile = rt.Paths.SeriesPath(name)
	rt.Logger.Info("Series selected", slog.String("series", name), slog.String("path", rt.Paths.SeriesFile))
}

// Collector starts a browser and builds the market and indicator collector.
// The returned function stops the browser.
func (rt *Runtime) Collector() (*collector.Collector, func(), error) {
	cfg := rt.Config.Collector
	fetcher, err := collector.NewBrowserFetcher(cfg, rt.Logger)
	if err != nil {
		return nil, nil, err
	}

	markets := collector.NewPolymarketScraper(fetcher, cfg.NationalURL, cfg.StateURLs, cfg.Concurrency, rt.Metrics, rt.Logger)
	indicators := collector.NewYahooIndicators(collector.ChartCloses, cfg.Lookback, rt.Metrics, rt.Logger)
	return collector.NewCollector(markets, indicators, rt.Logger), fetcher.Close, nil
}
