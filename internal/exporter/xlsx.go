package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"oddscli/internal/schema"
)

// SheetName is the worksheet holding the exported series
const SheetName = "series"

// ExportXLSX writes the series to an Excel workbook. Numeric columns stay numeric and the
// header row is frozen.
func (e *SeriesExporter) ExportXLSX(filePath string) (string, int, error) {
	series, err := e.reader.ReadAll()
	if err != nil {
		return "", 0, fmt.Errorf("failed to read series: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return "", 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, 0, len(Header()))
	for _, name := range Header() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return "", 0, fmt.Errorf("failed to write header: %w", err)
	}

	fields := schema.Fields()
	for i, snap := range series {
		row := make([]interface{}, len(fields))
		for j, field := range fields {
			if field.Type == schema.TypeDate {
				row[j] = formatDate(snap.Date)
				continue
			}
			if v, ok := schema.Value(snap, field); ok {
				row[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", 0, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return "", 0, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return "", 0, fmt.Errorf("failed to freeze header: %w", err)
	}

	fullPath := e.csv.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return "", 0, fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("Series exported",
		slog.String("format", "xlsx"),
		slog.String("path", fullPath),
		slog.Int("rows", len(series)))
	return fullPath, len(series), nil
}
