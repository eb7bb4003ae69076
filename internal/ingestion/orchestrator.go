package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"oddscli/internal/dataprocessing"
	apperrors "oddscli/internal/errors"
	"oddscli/internal/infrastructure"
	"oddscli/internal/timeseries"
	"oddscli/internal/validation"
	"oddscli/pkg/contracts/domain"
)

// Outcome is the final state of one ingestion.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Stage names, used for spans and metrics
const (
	stageValidate = "validate"
	stageRead     = "read"
	stageGuard    = "guard"
	stageDerive   = "derive"
	stageAppend   = "append"
)

// Result reports how an ingestion ended.
//
// Committed carries the stored Record. Rejected carries either Validation or, for a duplicate
// date, the Conflict row already in storage. Failed carries the derivation or storage error.
type Result struct {
	Outcome    Outcome
	Record     *domain.DailySnapshot
	Conflict   *domain.DailySnapshot
	Validation *validation.ValidationError
	Err        error
}

// Committed reports whether the record was stored
func (r Result) Committed() bool {
	return r.Outcome == OutcomeCommitted
}

// Validator checks a raw candidate
type Validator interface {
	Validate(raw domain.RawSnapshot) (*domain.DailySnapshot, *validation.ValidationError)
}

// SeriesStore is the columnar store the orchestrator commits to
type SeriesStore interface {
	ReadAll() (domain.TimeSeries, error)
	Append(snap domain.DailySnapshot) error
}

// Orchestrator runs the ingest transaction.
type Orchestrator struct {
	validator Validator
	store     SeriesStore
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer sets the tracer used for per-stage spans
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithMetrics sets the instruments updated after each run
func WithMetrics(metrics *infrastructure.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = metrics
	}
}

// NewOrchestrator creates an orchestrator over validator and store.
func NewOrchestrator(validator Validator, store SeriesStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		validator: validator,
		store:     store,
		logger:    infrastructure.GetLogger(),
		tracer:    otel.Tracer(infrastructure.InstrumentationName),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = infrastructure.WithComponent(o.logger, "ingestion")
	return o
}

// Ingest validates raw, refuses a date that is already stored, derives the market shares
// and appends the record. The store is untouched unless the result is committed.
func (o *Orchestrator) Ingest(ctx context.Context, raw domain.RawSnapshot) Result {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := o.tracer.Start(ctx, "ingestion.ingest",
		trace.WithAttributes(attribute.String("snapshot.date", raw.Date)))
	defer span.End()

	result := o.run(ctx, raw)

	span.SetAttributes(attribute.String("ingest.outcome", string(result.Outcome)))
	if result.Err != nil {
		infrastructure.RecordError(ctx, result.Err)
	}
	o.metrics.RecordIngestRun(ctx, string(result.Outcome))

	switch result.Outcome {
	case OutcomeCommitted:
		o.logger.InfoContext(ctx, "Snapshot committed", slog.String("date", result.Record.DateKey()))
	case OutcomeRejected:
		o.logger.WarnContext(ctx, "Snapshot rejected",
			slog.String("date", raw.Date),
			slog.String("reason", result.Err.Error()))
	default:
		o.logger.ErrorContext(ctx, "Snapshot ingestion failed",
			slog.String("date", raw.Date),
			slog.String("error", result.Err.Error()))
	}
	return result
}

func (o *Orchestrator) run(ctx context.Context, raw domain.RawSnapshot) Result {
	// 1. validate
	var (
		candidate *domain.DailySnapshot
		verr      *validation.ValidationError
	)
	o.stage(ctx, stageValidate, func(context.Context) error {
		candidate, verr = o.validator.Validate(raw)
		if verr != nil {
			return verr
		}
		return nil
	})
	if verr != nil {
		o.metrics.RecordRejection(ctx, string(verr.Rule))
		return Result{
			Outcome:    OutcomeRejected,
			Validation: verr,
			Err:        apperrors.NewAppError(apperrors.ErrTypeValidation, "candidate record rejected", verr).WithContext("field", verr.Field),
		}
	}

	// 2. read
	var series domain.TimeSeries
	if err := o.stage(ctx, stageRead, func(context.Context) error {
		var err error
		series, err = o.store.ReadAll()
		return err
	}); err != nil {
		return failed(err)
	}

	// 3. guard
	if conflict, dup := o.guard(ctx, candidate.Date, series); dup {
		return o.rejectDuplicate(ctx, conflict)
	}

	// 4. derive
	var record domain.DailySnapshot
	if err := o.stage(ctx, stageDerive, func(context.Context) error {
		var err error
		record, err = dataprocessing.Derive(*candidate)
		return err
	}); err != nil {
		return failed(err)
	}

	// 5. append
	if err := o.stage(ctx, stageAppend, func(context.Context) error {
		return o.store.Append(record)
	}); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateDate) {
			// another writer got there between the read and the append
			if latest, rerr := o.store.ReadAll(); rerr == nil {
				if conflict, dup := timeseries.FindDuplicate(record.Date, latest); dup {
					return o.rejectDuplicate(ctx, conflict)
				}
			}
		}
		return failed(err)
	}
	o.metrics.SetSeriesRows(ctx, len(series)+1)

	// 6. committed
	return Result{Outcome: OutcomeCommitted, Record: &record}
}

func (o *Orchestrator) guard(ctx context.Context, date time.Time, series domain.TimeSeries) (domain.DailySnapshot, bool) {
	var (
		conflict domain.DailySnapshot
		dup      bool
	)
	o.stage(ctx, stageGuard, func(ctx context.Context) error {
		conflict, dup = timeseries.FindDuplicate(date, series)
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("guard.duplicate", dup))
		return nil
	})
	return conflict, dup
}

func (o *Orchestrator) rejectDuplicate(ctx context.Context, conflict domain.DailySnapshot) Result {
	o.metrics.RecordRejection(ctx, string(apperrors.ErrTypeDuplicateDate))
	return Result{
		Outcome:  OutcomeRejected,
		Conflict: &conflict,
		Err:      apperrors.NewDuplicateDateError(conflict.DateKey()),
	}
}

// stage runs fn inside its own span and records its duration.
func (o *Orchestrator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "ingestion."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	o.metrics.RecordStage(ctx, name, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		o.logger.DebugContext(ctx, "Stage did not pass",
			slog.String("stage", name),
			slog.String("error", err.Error()))
	}
	return err
}

func failed(err error) Result {
	if apperrors.TypeOf(err) == "" {
		err = apperrors.NewStorageError(fmt.Sprintf("ingestion failed: %v", err), err)
	}
	return Result{Outcome: OutcomeFailed, Err: err}
}
