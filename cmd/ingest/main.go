// Command ingest records today's market snapshot in the series.
//
// By default the national and state market pages are scraped and the indicator closes are
// fetched; -manual prompts for every value instead. With -schedule (or schedule.cron in the
// configuration) it keeps running and ingests on the cron schedule; a day that is already
// recorded is skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"oddscli/internal/app"
	"oddscli/internal/collector"
	"oddscli/internal/scheduler"
)

func main() {
	os.Exit(run())
}

func run() int {
	manual := flag.Bool("manual", false, "enter every value by hand instead of scraping")
	list := flag.Bool("list", false, "choose the series from the files in the data directory")
	series := flag.String("series", "", "series name (defaults to paths.series_name)")
	schedule := flag.String("schedule", "", "cron spec for unattended runs, e.g. \"30 21 * * *\"")
	yes := flag.Bool("yes", false, "append without asking for confirmation")
	spotCheck := flag.Bool("spot-check", true, "print the last stored record first")
	flag.Parse()

	rt, err := app.Bootstrap(app.Options{Component: "ingest", Console: os.Stderr, SeriesName: *series})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cron := *schedule
	if cron == "" {
		cron = rt.Config.Schedule.Cron
	}
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	prompter := collector.NewPrompter(os.Stdin, os.Stdout)

	if cron != "" && *manual {
		fmt.Fprintln(os.Stderr, "Error: -manual cannot be combined with a schedule")
		return 2
	}
	if !interactive && (*manual || *list || (!*yes && cron == "")) {
		fmt.Fprintln(os.Stderr, "Error: stdin is not a terminal; pass -yes (and drop -manual and -list) to run unattended")
		return 2
	}

	if *list {
		name, err := chooseSeries(rt, prompter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		rt.UseSeries(name)
	}

	store := rt.Store()
	workflow := &app.IngestWorkflow{
		Reader:     store,
		Ingester:   rt.Orchestrator(store),
		Out:        os.Stdout,
		SpotCheck:  *spotCheck && cron == "",
		ReportRows: reportRows(rt),
		Logger:     rt.Logger,
	}
	if !*yes && cron == "" {
		workflow.Confirm = prompter
	}

	if *manual {
		workflow.Source = app.ManualSource{Prompter: prompter}
	} else {
		c, closeBrowser, err := rt.Collector()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer closeBrowser()
		workflow.Source = app.CollectorSource{Collector: c, Out: os.Stdout}
	}

	if cron != "" {
		return runScheduled(ctx, rt, workflow, cron)
	}

	if _, err := workflow.Run(ctx); err != nil {
		if errors.Is(err, app.ErrAlreadyRecorded) {
			return 0
		}
		if !errors.Is(err, app.ErrDeclined) {
			rt.Logger.Error("Ingestion did not commit", slog.String("error", err.Error()))
		}
		return 1
	}
	return 0
}

func runScheduled(ctx context.Context, rt *app.Runtime, workflow *app.IngestWorkflow, spec string) int {
	job := func(ctx context.Context) error {
		defer func() {
			if err := rt.OTel.WriteMetricsTextfile(rt.Paths.MetricsTextfile); err != nil {
				rt.Logger.Warn("Failed to write metrics textfile", slog.String("error", err.Error()))
			}
		}()
		_, err := workflow.Run(ctx)
		if errors.Is(err, app.ErrAlreadyRecorded) {
			return nil
		}
		return err
	}

	s, err := scheduler.New(spec, job, rt.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	fmt.Fprintf(os.Stdout, "Ingesting on schedule %q, press Ctrl+C to stop.\n", spec)
	if err := s.Run(ctx, rt.Config.Schedule.RunOnStart); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func chooseSeries(rt *app.Runtime, prompter *collector.Prompter) (string, error) {
	names, err := rt.Paths.ListSeries()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no series found in %s", rt.Paths.DataDir)
	}
	i, err := prompter.Choose("Series in "+rt.Paths.DataDir, names)
	if err != nil {
		return "", err
	}
	return names[i], nil
}

func reportRows(rt *app.Runtime) int {
	if !rt.Config.Ingest.ShowLast {
		return 0
	}
	return rt.Config.Ingest.SpotCheckRows
}
