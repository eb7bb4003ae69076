package timeseries

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oddscli/internal/dataprocessing"
	apperrors "oddscli/internal/errors"
	"oddscli/internal/schema"
	"oddscli/pkg/contracts/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// snapshotFor builds a fully derived snapshot. Pennsylvania carries paAmount of a 1,000,000 market.
func snapshotFor(t *testing.T, date string, paAmount float64) domain.DailySnapshot {
	t.Helper()
	s := domain.DailySnapshot{
		Date:             day(date),
		USRepublicanOdds: 52.5,
		USTotalAmount:    1_000_000,
		States:           make(map[string]domain.StateEntry),
		Indicators:       map[string]float64{"SPX": 5648.4, "IWM": 220.12, "BTCUSDT": 59123.5},
	}
	for _, state := range schema.States {
		s.States[state] = domain.StateEntry{RepublicanOdds: 48, TotalAmount: 50_000}
	}
	s.States["Pennsylvania"] = domain.StateEntry{RepublicanOdds: 51, TotalAmount: paAmount}

	derived, err := dataprocessing.Derive(s)
	require.NoError(t, err)
	return derived
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "election.parquet")
	return NewStore(path, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestStore_ReadAllMissingFile(t *testing.T) {
	s := newTestStore(t)

	series, err := s.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, series)
	assert.NotNil(t, series)
}

func TestStore_AppendAndRead(t *testing.T) {
	s := newTestStore(t)

	// out of order on purpose
	require.NoError(t, s.Append(snapshotFor(t, "2024-09-02", 200_000)))
	require.NoError(t, s.Append(snapshotFor(t, "2024-09-01", 150_000)))

	series, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "2024-09-01", series[0].DateKey())
	assert.Equal(t, "2024-09-02", series[1].DateKey())
	assert.Equal(t, 15.0, series[0].States["Pennsylvania"].PctOfUSMarket)
	assert.Equal(t, 20.0, series[1].States["Pennsylvania"].PctOfUSMarket)
	assert.Equal(t, 59123.5, series[1].Indicators["BTCUSDT"])
	assert.Equal(t, snapshotFor(t, "2024-09-02", 200_000), series[1])
}

func TestStore_DistantDatesKeepTheirDay(t *testing.T) {
	s := newTestStore(t)

	for _, date := range []string{"2300-01-01", "2301-01-01", "2024-09-01"} {
		require.NoError(t, s.Append(snapshotFor(t, date, 100_000)), date)
	}

	series, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, "2024-09-01", series[0].DateKey())
	assert.Equal(t, "2300-01-01", series[1].DateKey())
	assert.Equal(t, "2301-01-01", series[2].DateKey())
}

func TestStore_ReadIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(snapshotFor(t, "2024-09-01", 150_000)))

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	first, err := s.ReadAll()
	require.NoError(t, err)
	second, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_DuplicateLeavesFileUnchanged(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(snapshotFor(t, "2024-09-01", 150_000)))

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	dup := snapshotFor(t, "2024-09-01", 100_000)
	dup.Date = dup.Date.Add(15 * time.Hour)
	err = s.Append(dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateDate)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDuplicateDate))

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_AppendAtomicOnFailure(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(snapshotFor(t, "2024-09-01", 150_000)))

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	injected := errors.New("disk full")
	var sawTemp string
	s.beforeRename = func(tmpPath string) error {
		sawTemp = tmpPath
		_, statErr := os.Stat(tmpPath)
		require.NoError(t, statErr)
		return injected
	}

	err = s.Append(snapshotFor(t, "2024-09-02", 200_000))
	require.Error(t, err)
	assert.ErrorIs(t, err, injected)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = os.Stat(sawTemp)
	assert.True(t, os.IsNotExist(err), "temp file should be removed")

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	s.beforeRename = nil
	series, err := s.ReadAll()
	require.NoError(t, err)
	assert.Len(t, series, 1)
}

func TestStore_AppendRejectsInconsistentRecord(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *domain.DailySnapshot)
		field  string
	}{
		{
			name: "stale percentage",
			mutate: func(s *domain.DailySnapshot) {
				e := s.States["Georgia"]
				e.PctOfUSMarket = 7
				s.States["Georgia"] = e
			},
			field: "georgia_pct_of_us_market",
		},
		{
			name:   "odds out of range",
			mutate: func(s *domain.DailySnapshot) { s.USRepublicanOdds = 101 },
			field:  "us_republican_odds",
		},
		{
			name:   "missing indicator",
			mutate: func(s *domain.DailySnapshot) { delete(s.Indicators, "IWM") },
			field:  "iwm_price",
		},
		{
			name:   "missing state",
			mutate: func(s *domain.DailySnapshot) { delete(s.States, "Nevada") },
			field:  "nevada_republican_odds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			snap := snapshotFor(t, "2024-09-01", 150_000)
			tt.mutate(&snap)

			err := s.Append(snap)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInconsistentRecord)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Context["field"])

			_, statErr := os.Stat(s.Path())
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestStore_RemoveLast(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RemoveLast()
	assert.ErrorIs(t, err, apperrors.ErrEmptySeries)

	require.NoError(t, s.Append(snapshotFor(t, "2024-09-01", 150_000)))
	require.NoError(t, s.Append(snapshotFor(t, "2024-09-02", 200_000)))

	removed, err := s.RemoveLast()
	require.NoError(t, err)
	assert.Equal(t, "2024-09-02", removed.DateKey())

	series, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "2024-09-01", series[0].DateKey())

	// the removed day can be ingested again
	require.NoError(t, s.Append(snapshotFor(t, "2024-09-02", 210_000)))

	_, err = s.RemoveLast()
	require.NoError(t, err)
	_, err = s.RemoveLast()
	require.NoError(t, err)

	series, err = s.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestStore_Tail(t *testing.T) {
	s := newTestStore(t)
	for _, d := range []string{"2024-09-01", "2024-09-02", "2024-09-03", "2024-09-04"} {
		require.NoError(t, s.Append(snapshotFor(t, d, 100_000)))
	}

	tail, err := s.Tail(3)
	require.NoError(t, err)
	require.Len(t, tail, 3)
	assert.Equal(t, "2024-09-02", tail[0].DateKey())
	assert.Equal(t, "2024-09-04", tail[2].DateKey())

	tail, err = s.Tail(10)
	require.NoError(t, err)
	assert.Len(t, tail, 4)
}

func TestStore_ColumnsAndSummary(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Columns()
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	require.NoError(t, s.Append(snapshotFor(t, "2024-09-01", 150_000)))
	require.NoError(t, s.Append(snapshotFor(t, "2024-09-03", 150_000)))

	cols, err := s.Columns()
	require.NoError(t, err)
	assert.ElementsMatch(t, schema.FieldNames(), cols)

	sum, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, "election", sum.Name)
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, "2024-09-01", sum.FirstDate)
	assert.Equal(t, "2024-09-03", sum.LastDate)
	assert.False(t, sum.UpdatedAt.IsZero())
}

func TestStore_SchemaMismatch(t *testing.T) {
	t.Run("column type changed", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))

		group := parquet.Group{}
		for _, name := range schema.FieldNames() {
			switch name {
			case "date":
				group[name] = parquet.Date()
			case "us_total_amount":
				group[name] = parquet.String()
			default:
				group[name] = parquet.Leaf(parquet.DoubleType)
			}
		}

		f, err := os.Create(s.Path())
		require.NoError(t, err)
		w := parquet.NewWriter(f, parquet.NewSchema("snapshot", group))
		require.NoError(t, w.Close())
		require.NoError(t, f.Close())

		_, err = s.ReadAll()
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "us_total_amount", appErr.Context["column"])

		err = s.Append(snapshotFor(t, "2024-09-01", 150_000))
		assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
	})

	t.Run("columns missing", func(t *testing.T) {
		type partialRow struct {
			Date int32 `parquet:"date,date"`
		}
		s := newTestStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
		require.NoError(t, parquet.WriteFile(s.Path(), []partialRow{{Date: 19967}}))

		_, err := s.ReadAll()
		assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
	})

	t.Run("not parquet", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
		require.NoError(t, os.WriteFile(s.Path(), []byte("date,us_total_amount\n"), 0644))

		_, err := s.ReadAll()
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})
}
