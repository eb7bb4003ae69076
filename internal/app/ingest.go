package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"oddscli/internal/collector"
	"oddscli/internal/ingestion"
	"oddscli/internal/timeseries"
	"oddscli/pkg/contracts/domain"
)

var (
	// ErrAlreadyRecorded means today's row exists; nothing was collected.
	ErrAlreadyRecorded = errors.New("today is already recorded")
	// ErrDeclined means the operator refused the candidate record.
	ErrDeclined = errors.New("record not confirmed")
)

// SnapshotSource produces today's candidate record
type SnapshotSource interface {
	Snapshot(ctx context.Context, date time.Time) (domain.RawSnapshot, error)
}

// SeriesReader is the read side of the store used for the spot check and the report
type SeriesReader interface {
	ReadAll() (domain.TimeSeries, error)
}

// Ingester commits one candidate record
type Ingester interface {
	Ingest(ctx context.Context, raw domain.RawSnapshot) ingestion.Result
}

// Confirmer asks the operator a yes/no question
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// CollectorSource adapts a Collector. Failed sources are reported and left out of the
// candidate, so validation names the first missing field.
type CollectorSource struct {
	Collector *collector.Collector
	Out       io.Writer
}

// Snapshot runs one collection
func (s CollectorSource) Snapshot(ctx context.Context, date time.Time) (domain.RawSnapshot, error) {
	c, err := s.Collector.Collect(ctx)
	if err != nil {
		return domain.RawSnapshot{}, err
	}
	if !c.Complete() {
		fmt.Fprintf(s.Out, "Could not collect: %s\n", strings.Join(c.FailedSources(), ", "))
	}
	return c.Raw, nil
}

// ManualSource prompts the operator for every field
type ManualSource struct {
	Prompter *collector.Prompter
}

// Snapshot reads the record from the prompter
func (s ManualSource) Snapshot(ctx context.Context, date time.Time) (domain.RawSnapshot, error) {
	return s.Prompter.Snapshot(date)
}

// IngestWorkflow is the operator flow around one ingestion
type IngestWorkflow struct {
	Reader   SeriesReader
	Ingester Ingester
	Source   SnapshotSource
	// Confirm is asked before committing; nil commits without asking.
	Confirm Confirmer
	Out     io.Writer
	// SpotCheck prints the last stored record before collecting.
	SpotCheck bool
	// ReportRows is how many of the latest rows are printed after a commit or rejection.
	ReportRows int
	Logger     *slog.Logger

	now func() time.Time
}

// Run performs one ingestion. Rejections and failures are printed and returned as errors.
func (w *IngestWorkflow) Run(ctx context.Context) (ingestion.Result, error) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if w.now != nil {
		now = w.now
	}
	today := domain.NormalizeDate(now())

	series, err := w.Reader.ReadAll()
	if err != nil {
		return ingestion.Result{}, fmt.Errorf("failed to read series: %w", err)
	}

	if w.SpotCheck {
		if last, ok := series.Last(); ok {
			fmt.Fprintln(w.Out, "Last stored record:")
			PrintSnapshot(w.Out, last)
		} else {
			fmt.Fprintln(w.Out, "The series is empty.")
		}
	}

	if existing, ok := timeseries.FindDuplicate(today, series); ok {
		fmt.Fprintf(w.Out, "A record for %s already exists, nothing to do.\n", existing.DateKey())
		logger.InfoContext(ctx, "Ingestion skipped, date already recorded", slog.String("date", existing.DateKey()))
		return ingestion.Result{}, ErrAlreadyRecorded
	}

	raw, err := w.Source.Snapshot(ctx, today)
	if err != nil {
		return ingestion.Result{}, fmt.Errorf("failed to obtain snapshot: %w", err)
	}

	fmt.Fprintln(w.Out, "Candidate record:")
	PrintRaw(w.Out, raw)

	if w.Confirm != nil {
		ok, err := w.Confirm.Confirm("Append this record?")
		if err != nil {
			return ingestion.Result{}, err
		}
		if !ok {
			fmt.Fprintln(w.Out, "Nothing appended.")
			return ingestion.Result{}, ErrDeclined
		}
	}

	result := w.Ingester.Ingest(ctx, raw)
	switch result.Outcome {
	case ingestion.OutcomeCommitted:
		fmt.Fprintf(w.Out, "Appended the record for %s.\n", result.Record.DateKey())
	case ingestion.OutcomeRejected:
		fmt.Fprintf(w.Out, "Rejected: %v\n", result.Err)
		if result.Conflict != nil {
			fmt.Fprintln(w.Out, "Conflicting stored record:")
			PrintSnapshot(w.Out, *result.Conflict)
		}
	default:
		fmt.Fprintf(w.Out, "Failed: %v\n", result.Err)
		return result, result.Err
	}

	w.report()
	if !result.Committed() {
		return result, result.Err
	}
	return result, nil
}

func (w *IngestWorkflow) report() {
	if w.ReportRows <= 0 {
		return
	}
	series, err := w.Reader.ReadAll()
	if err != nil {
		fmt.Fprintf(w.Out, "Could not read the series back: %v\n", err)
		return
	}
	fmt.Fprintf(w.Out, "Latest %d rows:\n", w.ReportRows)
	PrintSeries(w.Out, series.Tail(w.ReportRows))
}
