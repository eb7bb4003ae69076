// Command removelast deletes the most recent record of a series, after confirmation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"oddscli/internal/app"
	"oddscli/internal/collector"
)

func main() {
	os.Exit(run())
}

func run() int {
	series := flag.String("series", "", "series name (defaults to paths.series_name)")
	yes := flag.Bool("yes", false, "remove without asking for confirmation")
	flag.Parse()

	rt, err := app.Bootstrap(app.Options{Component: "removelast", Console: os.Stderr, SeriesName: *series})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer rt.Close(context.Background())

	store := rt.Store()
	tail, err := store.Tail(1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(tail) == 0 {
		fmt.Printf("%s is empty, nothing to remove.\n", rt.Paths.SeriesName)
		return 0
	}

	fmt.Println("Last record:")
	app.PrintSnapshot(os.Stdout, tail[0])

	if !*yes {
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Error: stdin is not a terminal; pass -yes to remove without confirmation")
			return 2
		}
		ok, err := collector.NewPrompter(os.Stdin, os.Stdout).Confirm("Remove this record?")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Println("Nothing removed.")
			return 0
		}
	}

	removed, err := store.RemoveLast()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	rt.Logger.Info("Last record removed", slog.String("date", removed.DateKey()))
	fmt.Printf("Removed the record for %s.\n", removed.DateKey())
	return 0
}
