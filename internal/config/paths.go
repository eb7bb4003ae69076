package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Paths contains every resolved file system location used by the tools.
// It is the single place file paths are derived from configuration.
type Paths struct {
	BaseDir   string
	DataDir   string
	LogsDir   string
	ExportDir string

	SeriesName      string
	SeriesFile      string
	LogFile         string
	MetricsTextfile string
	TraceFile       string
}

// ExecutableDir returns the directory holding the running binary, with symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// ResolvePaths turns the configured directories into absolute paths.
func ResolvePaths(cfg *Config) (*Paths, error) {
	base := cfg.Paths.BaseDir
	if base == "" {
		exeDir, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	p := &Paths{
		BaseDir:    base,
		DataDir:    resolve(cfg.Paths.DataDir),
		LogsDir:    resolve(cfg.Paths.LogsDir),
		ExportDir:  resolve(cfg.Paths.ExportDir),
		SeriesName: cfg.Paths.SeriesName,
	}
	p.SeriesFile = p.SeriesPath(cfg.Paths.SeriesName)

	p.LogFile = resolve(cfg.Logging.FilePath)
	if p.LogFile == "" {
		p.LogFile = filepath.Join(p.LogsDir, LogFileName)
	}
	p.MetricsTextfile = resolve(cfg.Telemetry.MetricsTextfile)
	if p.MetricsTextfile == "" {
		p.MetricsTextfile = filepath.Join(p.LogsDir, MetricsFileName)
	}
	p.TraceFile = resolve(cfg.Telemetry.TraceFile)

	return p, nil
}

// SeriesPath returns the parquet file backing the named series.
func (p *Paths) SeriesPath(name string) string {
	if !strings.HasSuffix(name, SeriesExt) {
		name += SeriesExt
	}
	return filepath.Join(p.DataDir, name)
}

// ExportPath returns the export file for the named series with the given extension (".csv", ".xlsx").
func (p *Paths) ExportPath(name, ext string) string {
	return filepath.Join(p.ExportDir, strings.TrimSuffix(name, SeriesExt)+ext)
}

// ListSeries returns the names of the parquet series stored in the data directory, sorted.
func (p *Paths) ListSeries() ([]string, error) {
	entries, err := os.ReadDir(p.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data directory %s: %w", p.DataDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), SeriesExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir, p.ExportDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
			slog.String("export", p.ExportDir),
		),
		slog.Group("files",
			slog.String("series", p.SeriesFile),
			slog.String("log", p.LogFile),
			slog.String("metrics", p.MetricsTextfile),
			slog.String("trace", p.TraceFile),
		))
}
