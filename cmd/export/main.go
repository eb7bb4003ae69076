// Command export converts the stored series to CSV, or to an XLSX workbook with -xlsx.
// -tail N limits a CSV export to the N most recent days.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"oddscli/internal/app"
	"oddscli/internal/exporter"
	"oddscli/internal/validation"
)

func main() {
	os.Exit(run())
}

func run() int {
	series := flag.String("series", "", "series name (defaults to paths.series_name)")
	out := flag.String("out", "", "output file (defaults to <export_dir>/<series>.csv or .xlsx)")
	xlsx := flag.Bool("xlsx", false, "write an Excel workbook instead of CSV")
	tail := flag.Int("tail", 0, "export only the N most recent days (CSV only)")
	flag.Parse()

	if *tail < 0 || (*tail > 0 && *xlsx) {
		fmt.Fprintln(os.Stderr, "Error: -tail takes a positive day count and cannot be combined with -xlsx")
		return 2
	}

	rt, err := app.Bootstrap(app.Options{Component: "export", Console: os.Stderr, SeriesName: *series})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer rt.Close(context.Background())

	ext := ".csv"
	if *xlsx {
		ext = ".xlsx"
	}
	target := *out
	if target == "" {
		target = rt.Paths.ExportPath(rt.Paths.SeriesName, ext)
	}

	if err := validation.NewFileValidator(rt.Logger).ValidateExportTarget(target, ext); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	exp := exporter.NewSeriesExporter(rt.Store(), exporter.NewCSVWriter(rt.Paths, rt.Logger), rt.Logger)

	var path string
	var rows int
	switch {
	case *xlsx:
		path, rows, err = exp.ExportXLSX(target)
	case *tail > 0:
		path, rows, err = exp.ExportTailCSV(target, *tail)
	default:
		path, rows, err = exp.ExportCSV(target)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Exported %d rows of %s to %s\n", rows, rt.Paths.SeriesName, path)
	return 0
}
