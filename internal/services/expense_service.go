// Package services orchestrates expense mutations across the record store
// and the change-event publisher.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

// EventPublisher delivers change notifications. *amqp.Client implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// IDGenerator returns a fresh record id.
type IDGenerator func() (string, error)

// NewUUIDv7 returns a time-ordered UUID string.
func NewUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

type Option func(*ExpenseService)

func WithPublisher(p EventPublisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

func WithClock(c core.Clock) Option {
	return func(s *ExpenseService) { s.clock = c }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(s *ExpenseService) { s.newID = g }
}

// WithDailyWindow sets the trailing window of the dashboard daily series.
func WithDailyWindow(days int) Option {
	return func(s *ExpenseService) {
		if days > 0 {
			s.dailyWindow = days
		}
	}
}

// ExpenseService orchestrates expense operations across the store and AMQP.
type ExpenseService struct {
	storage     store.ExpenseStore
	publisher   EventPublisher
	clock       core.Clock
	newID       IDGenerator
	dailyWindow int

	// Used when the store does not count its own mutations.
	revision atomic.Uint64
}

func NewExpenseService(storage store.ExpenseStore, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		storage:     storage,
		clock:       core.SystemClock,
		newID:       NewUUIDv7,
		dailyWindow: core.DefaultDailyWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now reads the service clock.
func (s *ExpenseService) Now() time.Time { return s.clock.Now() }

// DailyWindow is the configured daily series window in days.
func (s *ExpenseService) DailyWindow() int { return s.dailyWindow }

// Revision changes whenever the stored collection changes.
func (s *ExpenseService) Revision() uint64 {
	if r, ok := s.storage.(store.Revisioner); ok {
		return r.Revision()
	}
	return s.revision.Load()
}

func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	records, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return records, nil
}

// Query filters then sorts the stored records.
func (s *ExpenseService) Query(ctx context.Context, spec core.FilterSpec, field core.SortField, order core.SortOrder) ([]core.Expense, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.Sort(core.Filter(records, spec), field, order), nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	e, err := s.storage.Get(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return e, nil
}

// Create validates in and prepends a new record.
func (s *ExpenseService) Create(ctx context.Context, in core.FormInput) (core.Expense, error) {
	e, err := core.FromInput(in)
	if err != nil {
		return core.Expense{}, err
	}
	id, err := s.newID()
	if err != nil {
		return core.Expense{}, err
	}
	now := s.clock.Now()
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.storage.Insert(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.revision.Add(1)

	s.publish(ctx, amqp.EventCreated, e.ID)
	return e, nil
}

// Update replaces the editable fields of id. The id and creation time are kept.
func (s *ExpenseService) Update(ctx context.Context, id string, in core.FormInput) (core.Expense, error) {
	body, err := core.FromInput(in)
	if err != nil {
		return core.Expense{}, err
	}
	existing, err := s.storage.Get(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}

	body.ID = existing.ID
	body.CreatedAt = existing.CreatedAt
	body.UpdatedAt = s.clock.Now()

	if err := s.storage.Update(ctx, body); err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", id, err)
	}
	s.revision.Add(1)

	s.publish(ctx, amqp.EventUpdated, id)
	return body, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.storage.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	s.revision.Add(1)

	s.publish(ctx, amqp.EventDeleted, id)
	return nil
}

// ClearAll removes every record.
func (s *ExpenseService) ClearAll(ctx context.Context) error {
	if err := s.storage.Clear(ctx); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	s.revision.Add(1)

	s.publish(ctx, amqp.EventCleared, "")
	return nil
}

// Dashboard bundles the headline analytics of the whole ledger.
type Dashboard struct {
	Stats      core.SummaryStats           `json:"stats"`
	Categories []core.CategorySummaryEntry `json:"categories"`
	Daily      []core.DailyAmount          `json:"daily"`
	Recent     []core.Expense              `json:"recent"`
	Revision   uint64                      `json:"revision"`
}

// RecentCount is the number of records shown in the dashboard's recent list.
const RecentCount = 5

func (s *ExpenseService) Dashboard(ctx context.Context) (Dashboard, error) {
	rev := s.Revision()
	records, err := s.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := s.clock.Now()
	return Dashboard{
		Stats:      core.Summarize(records, now),
		Categories: core.SummarizeCategories(records),
		Daily:      core.DailySpending(records, now, s.dailyWindow),
		Recent:     core.Recent(records, RecentCount),
		Revision:   rev,
	}, nil
}

// publish is best effort: the mutation already succeeded locally.
func (s *ExpenseService) publish(ctx context.Context, typ amqp.EventType, id string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping event", "type", typ)
		return
	}
	ev := amqp.NewExpenseEvent(typ, id, s.clock.Now())
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"type", typ,
			"id", id,
			"error", err)
	}
}

// Close closes the store and publisher when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error
	if c, ok := s.storage.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}
