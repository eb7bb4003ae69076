package exporter

import (
	"fmt"
	"io"
	"log/slog"

	apperrors "oddscli/internal/errors"
	"oddscli/internal/schema"
	"oddscli/pkg/contracts/domain"
)

// SeriesReader is the read path of the columnar store
type SeriesReader interface {
	ReadAll() (domain.TimeSeries, error)
}

// SeriesExporter writes a stored series as a table
type SeriesExporter struct {
	reader SeriesReader
	csv    *CSVWriter
	logger *slog.Logger
}

// NewSeriesExporter creates an exporter reading from reader
func NewSeriesExporter(reader SeriesReader, csv *CSVWriter, logger *slog.Logger) *SeriesExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesExporter{
		reader: reader,
		csv:    csv,
		logger: logger.With(slog.String("component", "series_exporter")),
	}
}

// Header returns the column names in storage order
func Header() []string {
	return schema.FieldNames()
}

// Records renders every snapshot as one text row in Header order.
func Records(series domain.TimeSeries) [][]string {
	fields := schema.Fields()
	records := make([][]string, 0, len(series))
	for _, snap := range series {
		row := make([]string, len(fields))
		for i, f := range fields {
			if f.Type == schema.TypeDate {
				row[i] = formatDate(snap.Date)
				continue
			}
			if v, ok := schema.Value(snap, f); ok {
				row[i] = formatFloat(v)
			}
		}
		records = append(records, row)
	}
	return records
}

// ExportCSV writes the whole series to filePath and returns the resolved path and row count.
func (e *SeriesExporter) ExportCSV(filePath string) (string, int, error) {
	series, err := e.reader.ReadAll()
	if err != nil {
		return "", 0, fmt.Errorf("failed to read series: %w", err)
	}

	sw, err := e.csv.CreateStreamWriter(filePath, Header())
	if err != nil {
		return "", 0, err
	}
	for _, record := range Records(series) {
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return "", 0, fmt.Errorf("failed to write record: %w", err)
		}
	}
	if err := sw.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close csv: %w", err)
	}

	e.logger.Info("Series exported",
		slog.String("format", "csv"),
		slog.String("path", sw.Path()),
		slog.Int("rows", len(series)))
	return sw.Path(), len(series), nil
}

// ExportTailCSV writes the n most recent snapshots to filePath in one pass.
func (e *SeriesExporter) ExportTailCSV(filePath string, n int) (string, int, error) {
	if n <= 0 {
		return "", 0, apperrors.NewAppValidationError(fmt.Sprintf("tail must be positive, got %d", n))
	}
	series, err := e.reader.ReadAll()
	if err != nil {
		return "", 0, fmt.Errorf("failed to read series: %w", err)
	}
	tail := series.Tail(n)

	path, err := e.csv.WriteCSV(filePath, WriteOptions{
		Headers:   Header(),
		Records:   Records(tail),
		BOMPrefix: true,
	})
	if err != nil {
		return "", 0, err
	}

	e.logger.Info("Series tail exported",
		slog.String("format", "csv"),
		slog.String("path", path),
		slog.Int("rows", len(tail)))
	return path, len(tail), nil
}

// WriteCSV streams the series as CSV to out without a BOM
func (e *SeriesExporter) WriteCSV(out io.Writer) (int, error) {
	series, err := e.reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read series: %w", err)
	}
	if err := WriteTo(out, WriteOptions{Headers: Header(), Records: Records(series)}); err != nil {
		return 0, err
	}
	return len(series), nil
}
