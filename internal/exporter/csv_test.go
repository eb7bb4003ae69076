package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oddscli/internal/config"
)

func newTestWriter(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	exportDir := filepath.Join(dir, "export")
	return NewCSVWriter(&config.Paths{ExportDir: exportDir}, quietLogger()), exportDir
}

func readCSV(t *testing.T, path string) (bool, [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	hasBOM := bytes.HasPrefix(data, utf8BOM)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return hasBOM, records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		path    func(dir string) string
		options WriteOptions
		wantBOM bool
	}{
		{
			name: "relative path goes to export dir",
			path: func(string) string { return "report.csv" },
			options: WriteOptions{
				Headers: []string{"date", "value"},
				Records: [][]string{{"2024-09-01", "1"}, {"2024-09-02", "2"}},
			},
		},
		{
			name: "absolute path with bom",
			path: func(dir string) string { return filepath.Join(dir, "nested", "abs.csv") },
			options: WriteOptions{
				Headers:   []string{"a"},
				Records:   [][]string{{"x,y"}},
				BOMPrefix: true,
			},
			wantBOM: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, exportDir := newTestWriter(t)
			target := tt.path(t.TempDir())

			full, err := w.WriteCSV(target, tt.options)
			require.NoError(t, err)
			if !filepath.IsAbs(target) {
				assert.Equal(t, filepath.Join(exportDir, target), full)
			} else {
				assert.Equal(t, target, full)
			}

			hasBOM, records := readCSV(t, full)
			assert.Equal(t, tt.wantBOM, hasBOM)
			assert.Equal(t, tt.options.Headers, records[0])
			assert.Equal(t, tt.options.Records, records[1:])
		})
	}
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	w, exportDir := newTestWriter(t)

	sw, err := w.CreateStreamWriter("stream.csv", []string{"date", "odds"})
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"2024-09-01", "52.5"}))
	require.NoError(t, sw.WriteRecord([]string{"2024-09-02", "53"}))
	require.NoError(t, sw.Close())

	assert.Equal(t, filepath.Join(exportDir, "stream.csv"), sw.Path())
	hasBOM, records := readCSV(t, sw.Path())
	assert.True(t, hasBOM)
	assert.Equal(t, [][]string{{"date", "odds"}, {"2024-09-01", "52.5"}, {"2024-09-02", "53"}}, records)
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}},
	}))
	assert.Equal(t, "a,b\n1,2\n", buf.String())
}
