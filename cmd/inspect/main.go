// Command inspect prints the columns, the row count and the last record of a series.
// With -profile it also prints min, max and latest value for every numeric column.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"oddscli/internal/app"
	apperrors "oddscli/internal/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	series := flag.String("series", "", "series name (defaults to paths.series_name)")
	rows := flag.Int("rows", 1, "number of latest rows to print")
	profile := flag.Bool("profile", false, "print min, max and last value per column")
	flag.Parse()

	rt, err := app.Bootstrap(app.Options{Component: "inspect", Console: os.Stderr, SeriesName: *series})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer rt.Close(context.Background())

	store := rt.Store()
	columns, err := store.Columns()
	if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
		fmt.Printf("Series %s not created yet (%s)\n", rt.Paths.SeriesName, store.Path())
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	summary, err := store.Summary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Series:  %s\n", summary.Name)
	fmt.Printf("File:    %s\n", summary.Path)
	fmt.Printf("Rows:    %d\n", summary.Rows)
	if summary.Rows > 0 {
		fmt.Printf("Range:   %s to %s\n", summary.FirstDate, summary.LastDate)
	}
	fmt.Printf("Columns (%d):\n", len(columns))
	for _, c := range columns {
		fmt.Printf("  %s\n", c)
	}

	if summary.Rows == 0 {
		return 0
	}
	if *profile {
		series, err := store.ReadAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println("Profile:")
		app.PrintProfile(os.Stdout, app.Profile(series))
	}
	tail, err := store.Tail(*rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(tail) == 1 {
		fmt.Println("Last record:")
		app.PrintSnapshot(os.Stdout, tail[0])
		return 0
	}
	fmt.Printf("Last %d records:\n", len(tail))
	app.PrintSeries(os.Stdout, tail)
	return 0
}
