package timeseries

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/parquet-go/parquet-go"

	"oddscli/internal/dataprocessing"
	apperrors "oddscli/internal/errors"
	"oddscli/internal/schema"
	"oddscli/pkg/contracts/domain"
)

// Store persists a TimeSeries as a single parquet file, one row per calendar day.
// Every mutation rewrites the whole file through a temp file and an atomic rename.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex

	// beforeRename runs after the temp file is synced and closed. Tests use it to inject failures.
	beforeRename func(tmpPath string) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store backed by the parquet file at path. The file need not exist yet.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "timeseries_store"), slog.String("path", path))
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// ReadAll returns every committed snapshot ordered by date. A missing file is an empty series.
func (s *Store) ReadAll() (domain.TimeSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Tail returns up to n of the most recent snapshots, oldest first.
func (s *Store) Tail(n int) (domain.TimeSeries, error) {
	series, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	return series.Tail(n), nil
}

// Append adds snap to the series. It refuses a date that is already stored and any row that
// breaks the schema, leaving the file untouched in both cases.
func (s *Store) Append(snap domain.DailySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.readAll()
	if err != nil {
		return err
	}

	if existing, dup := FindDuplicate(snap.Date, series); dup {
		s.logger.Warn("Append refused, date already stored", slog.String("date", existing.DateKey()))
		return apperrors.NewDuplicateDateError(existing.DateKey())
	}

	if err := CheckRecord(snap); err != nil {
		return err
	}

	next := make(domain.TimeSeries, 0, len(series)+1)
	next = append(next, series...)
	next = append(next, snap.Clone())
	sortByDate(next)

	if err := s.replace(next); err != nil {
		return err
	}
	s.logger.Info("Snapshot appended",
		slog.String("date", snap.DateKey()),
		slog.Int("rows", len(next)))
	return nil
}

// RemoveLast drops the most recent snapshot and returns it.
func (s *Store) RemoveLast() (domain.DailySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.readAll()
	if err != nil {
		return domain.DailySnapshot{}, err
	}
	last, ok := series.Last()
	if !ok {
		return domain.DailySnapshot{}, apperrors.NewStorageError("nothing to remove", apperrors.ErrEmptySeries)
	}

	if err := s.replace(series[:len(series)-1]); err != nil {
		return domain.DailySnapshot{}, err
	}
	s.logger.Info("Last snapshot removed",
		slog.String("date", last.DateKey()),
		slog.Int("rows", len(series)-1))
	return last, nil
}

// Columns returns the column names of the stored file in file order.
func (s *Store) Columns() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("series file " + s.path)
		}
		return nil, apperrors.NewStorageError("failed to open series file", err)
	}
	defer f.Close()

	pf, _, err := openParquet(f)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, field := range pf.Schema().Fields() {
		names = append(names, field.Name())
	}
	return names, nil
}

// Summary describes the stored series for listings.
func (s *Store) Summary() (domain.SeriesSummary, error) {
	series, err := s.ReadAll()
	if err != nil {
		return domain.SeriesSummary{}, err
	}

	sum := domain.SeriesSummary{
		Name: strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path)),
		Path: s.path,
		Rows: len(series),
	}
	if len(series) > 0 {
		sum.FirstDate = series[0].DateKey()
		sum.LastDate = series[len(series)-1].DateKey()
	}
	if info, err := os.Stat(s.path); err == nil {
		sum.UpdatedAt = info.ModTime().UTC()
	}
	return sum, nil
}

func (s *Store) readAll() (domain.TimeSeries, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.TimeSeries{}, nil
		}
		return nil, apperrors.NewStorageError("failed to open series file", err)
	}
	defer f.Close()

	pf, size, err := openParquet(f)
	if err != nil {
		return nil, err
	}
	if err := checkFileSchema(pf.Schema()); err != nil {
		return nil, err
	}

	rows, err := parquet.Read[schema.Row](f, size)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read series rows", err)
	}

	series := make(domain.TimeSeries, 0, len(rows))
	for _, row := range rows {
		series = append(series, row.Snapshot())
	}
	sortByDate(series)

	for i := 1; i < len(series); i++ {
		if domain.SameDay(series[i-1].Date, series[i].Date) {
			return nil, apperrors.NewStorageError("stored series holds the same date twice", apperrors.ErrInconsistentRecord).
				WithContext("date", series[i].DateKey())
		}
	}

	s.logger.Debug("Series read", slog.Int("rows", len(series)))
	return series, nil
}

// replace is the only path that writes the series file.
func (s *Store) replace(series domain.TimeSeries) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create series directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperrors.NewStorageError("failed to create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	rows := make([]schema.Row, len(series))
	for i, snap := range series {
		rows[i] = schema.FromSnapshot(snap)
	}
	if err := parquet.Write(tmp, rows); err != nil {
		return apperrors.NewStorageError("failed to write series rows", err)
	}
	if err := tmp.Sync(); err != nil {
		return apperrors.NewStorageError("failed to sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("failed to close temp file", err)
	}

	if s.beforeRename != nil {
		if err := s.beforeRename(tmpPath); err != nil {
			return apperrors.NewStorageError("write aborted before commit", err)
		}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return apperrors.NewStorageError("failed to replace series file", err)
	}
	committed = true
	return nil
}

func openParquet(f *os.File) (*parquet.File, int64, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, 0, apperrors.NewStorageError("failed to stat series file", err)
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, 0, apperrors.NewStorageError("series file is not valid parquet", err)
	}
	return pf, info.Size(), nil
}

// checkFileSchema compares the stored columns with the declared schema.
func checkFileSchema(fileSchema *parquet.Schema) error {
	stored := fileSchema.Fields()
	if len(stored) != len(schema.FieldNames()) {
		return apperrors.NewStorageError(
			fmt.Sprintf("series file has %d columns, expected %d", len(stored), len(schema.FieldNames())),
			apperrors.ErrSchemaMismatch)
	}

	for _, field := range stored {
		want, ok := schema.ExpectedType(field.Name())
		if !ok {
			return apperrors.NewStorageError("unexpected column "+field.Name(), apperrors.ErrSchemaMismatch).
				WithContext("column", field.Name())
		}
		kind := field.Type().Kind()
		if (want == schema.TypeDate && kind != parquet.Int32) || (want == schema.TypeFloat64 && kind != parquet.Double) {
			return apperrors.NewStorageError(
				fmt.Sprintf("column %s is stored as %s, expected %s", field.Name(), kind, want),
				apperrors.ErrSchemaMismatch).
				WithContext("column", field.Name())
		}
	}
	return nil
}

// CheckRecord verifies a fully derived snapshot against the schema: every state and indicator
// present, every value in range, every market share equal to its derived value.
func CheckRecord(snap domain.DailySnapshot) error {
	for _, f := range schema.Fields() {
		if f.Type != schema.TypeFloat64 {
			continue
		}
		v, ok := schema.Value(snap, f)
		if !ok {
			return inconsistent(snap, f.Name, "value missing")
		}
		if !f.Range.Contains(v) {
			return inconsistent(snap, f.Name, fmt.Sprintf("%v outside %s", v, f.Range))
		}
	}

	for _, state := range schema.States {
		entry := snap.States[state]
		want, err := dataprocessing.PercentOfMarket(entry.TotalAmount, snap.USTotalAmount)
		if err != nil {
			return inconsistent(snap, schema.StateColumn(state, schema.AttrPctOfUSMarket), err.Error())
		}
		if entry.PctOfUSMarket != want {
			return inconsistent(snap, schema.StateColumn(state, schema.AttrPctOfUSMarket),
				fmt.Sprintf("stored %.2f, derived %.2f", entry.PctOfUSMarket, want))
		}
	}

	if len(snap.States) != len(schema.States) || len(snap.Indicators) != len(schema.Indicators) {
		return inconsistent(snap, "states", "unexpected state or indicator keys")
	}
	return nil
}

func inconsistent(snap domain.DailySnapshot, field, detail string) error {
	return apperrors.NewStorageError(fmt.Sprintf("%s: %s", field, detail), apperrors.ErrInconsistentRecord).
		WithContext("date", snap.DateKey()).
		WithContext("field", field)
}

func sortByDate(series domain.TimeSeries) {
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
}
