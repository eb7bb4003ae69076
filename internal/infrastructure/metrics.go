package infrastructure

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application instruments. A nil *Metrics records nothing.
type Metrics struct {
	IngestRuns          metric.Int64Counter
	IngestRejections    metric.Int64Counter
	IngestStageDuration metric.Float64Histogram
	SeriesRows          metric.Int64Gauge

	CollectorFetches       metric.Int64Counter
	CollectorFetchDuration metric.Float64Histogram

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// NewMetrics creates the application instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.IngestRuns, err = meter.Int64Counter(
		"ingest_runs_total",
		metric.WithDescription("Ingestion runs by outcome"),
	); err != nil {
		return nil, err
	}

	if m.IngestRejections, err = meter.Int64Counter(
		"ingest_rejections_total",
		metric.WithDescription("Rejected candidate records by rule"),
	); err != nil {
		return nil, err
	}

	if m.IngestStageDuration, err = meter.Float64Histogram(
		"ingest_stage_duration_seconds",
		metric.WithDescription("Duration of each ingestion stage"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.SeriesRows, err = meter.Int64Gauge(
		"series_rows",
		metric.WithDescription("Rows in the stored series after the last ingestion"),
	); err != nil {
		return nil, err
	}

	if m.CollectorFetches, err = meter.Int64Counter(
		"collector_fetches_total",
		metric.WithDescription("Market page and indicator fetches by source and status"),
	); err != nil {
		return nil, err
	}

	if m.CollectorFetchDuration, err = meter.Float64Histogram(
		"collector_fetch_duration_seconds",
		metric.WithDescription("Duration of market page and indicator fetches"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func statusAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failure")
	}
	return attribute.String("status", "success")
}

// RecordIngestRun counts one finished ingestion
func (m *Metrics) RecordIngestRun(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.IngestRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRejection counts a rejected candidate by the rule it failed
func (m *Metrics) RecordRejection(ctx context.Context, rule string) {
	if m == nil {
		return
	}
	m.IngestRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}

// RecordStage records how long an ingestion stage took
func (m *Metrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.IngestStageDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage), statusAttr(err)))
}

// SetSeriesRows records the row count of the stored series
func (m *Metrics) SetSeriesRows(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.SeriesRows.Record(ctx, int64(rows))
}

// RecordFetch records one collector fetch
func (m *Metrics) RecordFetch(ctx context.Context, source string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source), statusAttr(err))
	m.CollectorFetches.Add(ctx, 1, attrs)
	m.CollectorFetchDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("code", strconv.Itoa(status)),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
