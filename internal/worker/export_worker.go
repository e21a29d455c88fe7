// Package worker keeps external copies of the ledger up to date.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
)

// DefaultSchedule runs a full export at the top of every hour.
const DefaultSchedule = "@hourly"

// RecordSource supplies the ledger to export.
type RecordSource interface {
	List(ctx context.Context) ([]core.Expense, error)
}

// Sink receives a full rendering of the ledger.
type Sink interface {
	Name() string
	Write(ctx context.Context, records []core.Expense, now time.Time) error
}

// ExportWorker writes the full ledger to every sink, on demand, on each
// change event and on a cron schedule.
type ExportWorker struct {
	source   RecordSource
	sinks    []Sink
	clock    core.Clock
	schedule string

	// Serializes exports triggered by events and the scheduler.
	exportMu sync.Mutex

	mu      sync.Mutex
	running bool
}

func NewExportWorker(source RecordSource, sinks []Sink, clock core.Clock, schedule string) *ExportWorker {
	if clock == nil {
		clock = core.SystemClock
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &ExportWorker{
		source:   source,
		sinks:    sinks,
		clock:    clock,
		schedule: schedule,
	}
}

// ValidateSchedule reports whether spec is a cron expression the worker accepts.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid export schedule %q: %w", spec, err)
	}
	return nil
}

// Export renders the current ledger to every sink. A failing sink does not
// stop the others; all failures are returned together.
func (w *ExportWorker) Export(ctx context.Context) error {
	w.exportMu.Lock()
	defer w.exportMu.Unlock()

	records, err := w.source.List(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	now := w.clock.Now()

	var errs []error
	for _, s := range w.sinks {
		start := time.Now()
		if err := s.Write(ctx, records, now); err != nil {
			slog.ErrorContext(ctx, "Export sink failed", "sink", s.Name(), "error", err)
			errs = append(errs, fmt.Errorf("sink %s: %w", s.Name(), err))
			continue
		}
		slog.InfoContext(ctx, "Exported expenses",
			"sink", s.Name(),
			"count", len(records),
			"duration", time.Since(start))
	}
	return errors.Join(errs...)
}

// HandleEvent re-exports after any change. Returning an error requeues the
// event.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	slog.InfoContext(ctx, "Processing expense event",
		"type", ev.Type,
		"id", ev.ID,
		"timestamp", ev.Timestamp)
	return w.Export(ctx)
}

// Run exports once, then on every scheduled tick until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("export worker is already running")
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	sched := cron.New(cron.WithLocation(w.clock.Now().Location()))
	if _, err := sched.AddFunc(w.schedule, func() {
		if err := w.Export(ctx); err != nil {
			slog.ErrorContext(ctx, "Scheduled export failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule export %q: %w", w.schedule, err)
	}

	if err := w.Export(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export failed", "error", err)
	}

	sched.Start()
	slog.InfoContext(ctx, "Export worker started", "schedule", w.schedule, "sinks", len(w.sinks))

	<-ctx.Done()
	stopped := sched.Stop()
	<-stopped.Done()
	slog.InfoContext(ctx, "Export worker stopped")
	return ctx.Err()
}

// IsRunning reports whether Run is active.
func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
