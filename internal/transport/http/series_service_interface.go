package http

import (
	"context"
	"io"

	"oddscli/pkg/contracts/domain"
)

// SeriesServiceInterface is the read side of the series store used by SeriesHandler
type SeriesServiceInterface interface {
	DefaultSeries() string
	List(ctx context.Context) ([]domain.SeriesSummary, error)
	Summary(ctx context.Context, name string) (domain.SeriesSummary, error)
	Latest(ctx context.Context, name string, n int) (domain.TimeSeries, error)
	ByDate(ctx context.Context, name, date string) (domain.DailySnapshot, error)
	WriteCSV(ctx context.Context, name string, w io.Writer) (int, error)
}
