package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "oddscli"
	AppVersion = "1.2.0"

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultExportDir  = "data/export"
	DefaultSeriesName = "election_2024"
	LogFileName       = "oddscli.log"
	MetricsFileName   = "oddscli.prom"
	SeriesExt         = ".parquet"

	// Ingestion
	DefaultSumTolerance  = 0.01
	DefaultSpotCheckRows = 3

	// Collector
	DefaultPageTimeout       = 90 * time.Second
	DefaultRenderWait        = 3 * time.Second
	DefaultIndicatorLookback = 7 * 24 * time.Hour

	// API Endpoints
	APIBasePath     = "/api"
	HealthEndpoint  = "/api/health"
	SeriesEndpoint  = "/api/series"
	VersionEndpoint = "/api/version"
	MetricsPath     = "/metrics"
)

// Market pages
const (
	DefaultNationalURL = "https://polymarket.com/event/presidential-election-winner-2024"
	stateURLPattern    = "https://polymarket.com/event/%s-presidential-election-winner"
)
