package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"oddscli/internal/config"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	series    *SeriesService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual dependency health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths *config.Paths, series *SeriesService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		series:    series,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck reports whether the data directory and the default series can be read.
// A series that has not been created yet is ready: the first ingestion creates it.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"data_dir": hs.checkDataDir(),
			"series":   hs.checkSeries(ctx),
		},
	}

	for name, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("dependency", name),
				slog.String("message", sh.Message))
		}
	}
	return status
}

// Ready reports whether ReadinessCheck passes
func (s HealthStatus) Ready() bool {
	return s.Status == "ready"
}

func (hs *HealthService) checkDataDir() ServiceHealth {
	info, err := os.Stat(hs.paths.DataDir)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: "data path is not a directory"}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkSeries(ctx context.Context) ServiceHealth {
	if _, err := os.Stat(hs.paths.SeriesFile); os.IsNotExist(err) {
		return ServiceHealth{Status: "ready", Message: "series not created yet"}
	}
	summary, err := hs.series.Summary(ctx, hs.paths.SeriesName)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready", Message: summary.LastDate}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}

// LivenessCheck reports that the process is serving requests
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}
