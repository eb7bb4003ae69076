package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Export formats accepted by ValidateExportTarget.
var exportExtensions = map[string]bool{".csv": true, ".xlsx": true}

// FileValidator checks filesystem targets before a command writes to them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputDirectory ensures dir exists or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateExportTarget checks that path names a .csv or .xlsx file matching the wanted
// extension, that it is not a directory, and that its directory is writable.
func (v *FileValidator) ValidateExportTarget(path, wantExt string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !exportExtensions[ext] {
		return fmt.Errorf("unsupported export format %q: use .csv or .xlsx", ext)
	}
	if wantExt != "" && ext != strings.ToLower(wantExt) {
		return fmt.Errorf("export file %s does not match format %s", path, wantExt)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}
