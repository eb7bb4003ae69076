// Package services is the read-side business layer behind the HTTP view.
//
// SeriesService resolves series names to their parquet files in the data directory and
// answers listing, tail, single-day and export queries through the timeseries store's read
// path. It never writes: the ingestion orchestrator is the only writer.
//
// HealthService reports liveness, readiness (the data directory and default series are
// readable) and version information.
package services
