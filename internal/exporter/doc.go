// Package exporter converts a stored time series into tabular files.
//
// CSVWriter is the low-level writer (headers, streaming, UTF-8 BOM for Excel). SeriesExporter
// reads a series through the store's read path and emits one row per snapshot with the
// schema's column names as the header, either as CSV or as an XLSX workbook.
//
// Example usage:
//
//	exp := exporter.NewSeriesExporter(store, exporter.NewCSVWriter(paths, logger), logger)
//	path, rows, err := exp.ExportCSV("election_2024.csv")
package exporter
