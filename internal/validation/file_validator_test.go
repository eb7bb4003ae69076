package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	validator := NewFileValidator(nil)

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "exports", "nested")
		require.NoError(t, validator.ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "write test file must be removed")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "taken")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		assert.Error(t, validator.ValidateOutputDirectory(file))
	})
}

func TestFileValidator_ValidateExportTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.csv"), 0755))

	tests := []struct {
		name          string
		path          string
		wantExt       string
		errorContains string
	}{
		{name: "csv", path: filepath.Join(dir, "out", "series.csv"), wantExt: ".csv"},
		{name: "xlsx any case", path: filepath.Join(dir, "series.XLSX"), wantExt: ".xlsx"},
		{name: "no format requested", path: filepath.Join(dir, "series.csv")},
		{name: "unsupported", path: filepath.Join(dir, "series.json"), errorContains: "unsupported export format"},
		{name: "format mismatch", path: filepath.Join(dir, "series.csv"), wantExt: ".xlsx", errorContains: "does not match"},
		{name: "directory", path: filepath.Join(dir, "folder.csv"), wantExt: ".csv", errorContains: "is a directory"},
	}

	validator := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateExportTarget(tt.path, tt.wantExt)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
