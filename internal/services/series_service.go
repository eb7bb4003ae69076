package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"oddscli/internal/config"
	apperrors "oddscli/internal/errors"
	"oddscli/internal/exporter"
	"oddscli/internal/timeseries"
	"oddscli/internal/validation"
	"oddscli/pkg/contracts/domain"
)

// SeriesService answers read-only queries about stored series
type SeriesService struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewSeriesService creates a series service over the resolved paths
func NewSeriesService(paths *config.Paths, logger *slog.Logger) *SeriesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesService{
		paths:  paths,
		logger: logger.With(slog.String("service", "series")),
	}
}

// DefaultSeries returns the configured series name
func (s *SeriesService) DefaultSeries() string {
	return s.paths.SeriesName
}

// store opens the named series, refusing names that escape the data directory or do not exist.
func (s *SeriesService) store(name string) (*timeseries.Store, error) {
	if name == "" {
		name = s.paths.SeriesName
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("invalid series name %q", name))
	}

	path := s.paths.SeriesPath(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("series " + name)
		}
		return nil, apperrors.NewStorageError("failed to stat series", err)
	}
	return timeseries.NewStore(path, timeseries.WithLogger(s.logger)), nil
}

// List returns a summary of every series in the data directory
func (s *SeriesService) List(ctx context.Context) ([]domain.SeriesSummary, error) {
	names, err := s.paths.ListSeries()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list series", err)
	}

	summaries := make([]domain.SeriesSummary, 0, len(names))
	for _, name := range names {
		summary, err := s.Summary(ctx, name)
		if err != nil {
			// one unreadable file should not hide the others
			s.logger.WarnContext(ctx, "Skipping unreadable series",
				slog.String("series", name),
				slog.String("error", err.Error()))
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Summary describes one series
func (s *SeriesService) Summary(ctx context.Context, name string) (domain.SeriesSummary, error) {
	st, err := s.store(name)
	if err != nil {
		return domain.SeriesSummary{}, err
	}
	return st.Summary()
}

// Latest returns up to n of the most recent snapshots of the series, oldest first
func (s *SeriesService) Latest(ctx context.Context, name string, n int) (domain.TimeSeries, error) {
	if n <= 0 {
		return nil, apperrors.NewAppValidationError("n must be a positive integer")
	}
	st, err := s.store(name)
	if err != nil {
		return nil, err
	}
	return st.Tail(n)
}

// All returns the whole series
func (s *SeriesService) All(ctx context.Context, name string) (domain.TimeSeries, error) {
	st, err := s.store(name)
	if err != nil {
		return nil, err
	}
	return st.ReadAll()
}

// ByDate returns the snapshot stored for a YYYY-MM-DD date
func (s *SeriesService) ByDate(ctx context.Context, name, date string) (domain.DailySnapshot, error) {
	day, err := validation.ParseDate(date)
	if err != nil {
		return domain.DailySnapshot{}, apperrors.NewAppValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}

	series, err := s.All(ctx, name)
	if err != nil {
		return domain.DailySnapshot{}, err
	}
	snap, ok := timeseries.FindDuplicate(day, series)
	if !ok {
		return domain.DailySnapshot{}, apperrors.NewNotFoundError("snapshot for " + date)
	}
	return snap, nil
}

// WriteCSV streams the series as CSV to w and returns the row count
func (s *SeriesService) WriteCSV(ctx context.Context, name string, w io.Writer) (int, error) {
	st, err := s.store(name)
	if err != nil {
		return 0, err
	}
	rows, err := exporter.NewSeriesExporter(st, nil, s.logger).WriteCSV(w)
	if err != nil {
		return rows, err
	}
	s.logger.InfoContext(ctx, "Series streamed as CSV",
		slog.String("series", name),
		slog.Int("rows", rows))
	return rows, nil
}
