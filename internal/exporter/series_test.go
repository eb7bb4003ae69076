package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "oddscli/internal/errors"
	"oddscli/internal/schema"
	"oddscli/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeReader struct {
	series domain.TimeSeries
	err    error
}

func (f fakeReader) ReadAll() (domain.TimeSeries, error) {
	return f.series, f.err
}

func testSeries() domain.TimeSeries {
	var series domain.TimeSeries
	for i, day := range []int{1, 2} {
		s := domain.DailySnapshot{
			Date:             time.Date(2024, 9, day, 0, 0, 0, 0, time.UTC),
			USRepublicanOdds: 52.5 + float64(i),
			USTotalAmount:    1_000_000,
			States:           make(map[string]domain.StateEntry),
			Indicators:       map[string]float64{"SPX": 5648.4, "IWM": 220.12, "BTCUSDT": 59123.5},
		}
		for _, state := range schema.States {
			s.States[state] = domain.StateEntry{RepublicanOdds: 48, TotalAmount: 50_000, PctOfUSMarket: 5}
		}
		s.States["Pennsylvania"] = domain.StateEntry{RepublicanOdds: 51, TotalAmount: 200_000, PctOfUSMarket: 20}
		series = append(series, s)
	}
	return series
}

func column(t *testing.T, header []string, name string) int {
	t.Helper()
	for i, h := range header {
		if h == name {
			return i
		}
	}
	t.Fatalf("column %s missing", name)
	return -1
}

func TestRecords(t *testing.T) {
	records := Records(testSeries())
	header := Header()
	require.Len(t, records, 2)
	assert.Len(t, records[0], len(header))

	assert.Equal(t, "date", header[0])
	assert.Equal(t, "2024-09-01", records[0][0])
	assert.Equal(t, "53.5", records[1][column(t, header, "us_republican_odds")])
	assert.Equal(t, "1000000", records[0][column(t, header, "us_total_amount")])
	assert.Equal(t, "20", records[1][column(t, header, "pennsylvania_pct_of_us_market")])
	assert.Equal(t, "59123.5", records[1][column(t, header, "btcusdt_price")])
}

func TestSeriesExporter_ExportCSV(t *testing.T) {
	w, exportDir := newTestWriter(t)
	exp := NewSeriesExporter(fakeReader{series: testSeries()}, w, quietLogger())

	path, rows, err := exp.ExportCSV("election_2024.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, filepath.Join(exportDir, "election_2024.csv"), path)

	_, records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, Header(), records[0])
	assert.Equal(t, Records(testSeries()), records[1:])
}

func TestSeriesExporter_EmptySeries(t *testing.T) {
	w, _ := newTestWriter(t)
	exp := NewSeriesExporter(fakeReader{}, w, quietLogger())

	path, rows, err := exp.ExportCSV("empty.csv")
	require.NoError(t, err)
	assert.Zero(t, rows)

	_, records := readCSV(t, path)
	assert.Equal(t, [][]string{Header()}, records)
}

func TestSeriesExporter_ReadFailure(t *testing.T) {
	w, _ := newTestWriter(t)
	exp := NewSeriesExporter(fakeReader{err: errors.New("corrupt")}, w, quietLogger())

	_, _, err := exp.ExportCSV("x.csv")
	assert.Error(t, err)
	_, _, err = exp.ExportXLSX("x.xlsx")
	assert.Error(t, err)
	_, err = exp.WriteCSV(io.Discard)
	assert.Error(t, err)
}

func TestSeriesExporter_ExportTailCSV(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		wantRows  int
		wantDates []string
	}{
		{name: "latest day only", n: 1, wantRows: 1, wantDates: []string{"2024-09-02"}},
		{name: "more than stored", n: 5, wantRows: 2, wantDates: []string{"2024-09-01", "2024-09-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, exportDir := newTestWriter(t)
			exp := NewSeriesExporter(fakeReader{series: testSeries()}, w, quietLogger())

			path, rows, err := exp.ExportTailCSV("recent.csv", tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, rows)
			assert.Equal(t, filepath.Join(exportDir, "recent.csv"), path)

			hasBOM, records := readCSV(t, path)
			assert.True(t, hasBOM)
			require.Len(t, records, tt.wantRows+1)
			assert.Equal(t, Header(), records[0])
			var dates []string
			for _, r := range records[1:] {
				dates = append(dates, r[0])
			}
			assert.Equal(t, tt.wantDates, dates)
		})
	}

	t.Run("non-positive count", func(t *testing.T) {
		w, _ := newTestWriter(t)
		exp := NewSeriesExporter(fakeReader{series: testSeries()}, w, quietLogger())
		_, _, err := exp.ExportTailCSV("recent.csv", 0)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestSeriesExporter_WriteCSV(t *testing.T) {
	w, _ := newTestWriter(t)
	exp := NewSeriesExporter(fakeReader{series: testSeries()}, w, quietLogger())

	var buf bytes.Buffer
	rows, err := exp.WriteCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, Header(), records[0])
}

func TestSeriesExporter_ExportXLSX(t *testing.T) {
	w, exportDir := newTestWriter(t)
	exp := NewSeriesExporter(fakeReader{series: testSeries()}, w, quietLogger())

	path, rows, err := exp.ExportXLSX("election_2024.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, filepath.Join(exportDir, "election_2024.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Header(), got[0])
	assert.Equal(t, "2024-09-02", got[2][0])

	cell, err := excelize.CoordinatesToCellName(column(t, Header(), "pennsylvania_pct_of_us_market")+1, 3)
	require.NoError(t, err)
	value, err := f.GetCellValue(SheetName, cell)
	require.NoError(t, err)
	assert.Equal(t, "20", value)
}
