package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/store"
	"expensetracker/internal/store/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.ExpenseEvent
	err    error
	closed bool
}

func (p *recordingPublisher) PublishEvent(_ context.Context, ev *amqp.ExpenseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	}
}

var testNow = time.Date(2024, 2, 20, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, pub EventPublisher) (*ExpenseService, *memory.Store) {
	t.Helper()
	st := memory.New(nil)
	opts := []Option{
		WithClock(core.FixedClock(testNow)),
		WithIDGenerator(sequentialIDs()),
	}
	if pub != nil {
		opts = append(opts, WithPublisher(pub))
	}
	return NewExpenseService(st, opts...), st
}

func lunch() core.FormInput {
	return core.FormInput{Date: "2024-02-19", Amount: "10.50", Category: "Food", Description: " lunch "}
}

func TestNewExpenseService(t *testing.T) {
	service := NewExpenseService(nil)
	if service == nil {
		t.Fatal("NewExpenseService should return a non-nil service")
	}
	if service.storage != nil {
		t.Error("NewExpenseService should keep a nil store as nil")
	}
	if service.DailyWindow() != core.DefaultDailyWindow {
		t.Errorf("default window = %d", service.DailyWindow())
	}
	if got := NewExpenseService(nil, WithDailyWindow(-3)).DailyWindow(); got != core.DefaultDailyWindow {
		t.Errorf("non-positive window should be ignored, got %d", got)
	}
}

func TestExpenseService_Create(t *testing.T) {
	pub := &recordingPublisher{}
	svc, st := newTestService(t, pub)
	ctx := context.Background()

	e, err := svc.Create(ctx, lunch())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID != "id-1" || e.Amount.Cents != 1050 || e.Description != "lunch" {
		t.Fatalf("unexpected record %+v", e)
	}
	if !e.CreatedAt.Equal(testNow) || !e.UpdatedAt.Equal(e.CreatedAt) {
		t.Errorf("timestamps = %v / %v", e.CreatedAt, e.UpdatedAt)
	}

	second, _ := svc.Create(ctx, lunch())
	list, _ := st.List(ctx)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("new records should be prepended, got %+v", list)
	}

	if got := pub.types(); len(got) != 2 || got[0] != amqp.EventCreated {
		t.Errorf("events = %v", got)
	}
	if pub.events[0].ID != "id-1" {
		t.Errorf("event id = %q", pub.events[0].ID)
	}
}

func TestExpenseService_CreateRejectsInvalidInput(t *testing.T) {
	pub := &recordingPublisher{}
	svc, st := newTestService(t, pub)
	ctx := context.Background()

	tests := []struct {
		name   string
		in     core.FormInput
		fields []string
	}{
		{"all blank", core.FormInput{Amount: "-5", Description: "  "},
			[]string{core.FieldDate, core.FieldAmount, core.FieldCategory, core.FieldDescription}},
		{"unknown category", core.FormInput{Date: "2024-01-01", Amount: "3", Category: "Travel", Description: "x"},
			[]string{core.FieldCategory}},
		{"zero amount", core.FormInput{Date: "2024-01-01", Amount: "0", Category: "Food", Description: "x"},
			[]string{core.FieldAmount}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			for _, f := range tt.fields {
				if _, ok := verr.Fields[f]; !ok {
					t.Errorf("missing error for %s in %v", f, verr.Fields)
				}
			}
			if len(verr.Fields) != len(tt.fields) {
				t.Errorf("fields = %v, want %v", verr.Fields, tt.fields)
			}
		})
	}

	if list, _ := st.List(ctx); len(list) != 0 {
		t.Errorf("invalid input must not be stored: %+v", list)
	}
	if len(pub.types()) != 0 {
		t.Errorf("no events expected, got %v", pub.types())
	}
}

func TestExpenseService_Update(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(t, pub)
	ctx := context.Background()

	created, _ := svc.Create(ctx, lunch())

	later := testNow.Add(time.Hour)
	svc.clock = core.FixedClock(later)

	in := lunch()
	in.Amount = "12"
	in.Category = "Other"
	updated, err := svc.Update(ctx, created.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("id/createdAt must be preserved: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Errorf("updatedAt = %v, want %v", updated.UpdatedAt, later)
	}
	got, _ := svc.Get(ctx, created.ID)
	if got.Amount.Cents != 1200 || got.Category != core.Other {
		t.Errorf("stored = %+v", got)
	}

	if _, err := svc.Update(ctx, "missing", lunch()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}

	types := pub.types()
	if len(types) != 2 || types[1] != amqp.EventUpdated {
		t.Errorf("events = %v", types)
	}
}

func TestExpenseService_DeleteAndClear(t *testing.T) {
	pub := &recordingPublisher{}
	svc, st := newTestService(t, pub)
	ctx := context.Background()

	a, _ := svc.Create(ctx, lunch())
	svc.Create(ctx, lunch())

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if list, _ := st.List(ctx); len(list) != 0 {
		t.Errorf("expected empty store, got %+v", list)
	}

	want := []amqp.EventType{amqp.EventCreated, amqp.EventCreated, amqp.EventDeleted, amqp.EventCleared}
	got := pub.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestExpenseService_PublishFailureDoesNotFail(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("connection refused")}
	svc, _ := newTestService(t, pub)

	if _, err := svc.Create(context.Background(), lunch()); err != nil {
		t.Fatalf("publish failures must not fail the mutation: %v", err)
	}
}

func TestExpenseService_QueryAndDashboard(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	inputs := []core.FormInput{
		{Date: "2024-02-01", Amount: "20", Category: "Bills", Description: "phone"},
		{Date: "2024-02-10", Amount: "5.25", Category: "Food", Description: "coffee beans"},
		{Date: "2024-01-15", Amount: "7", Category: "Food", Description: "coffee"},
	}
	for _, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.Query(ctx, core.FilterSpec{Category: "Food", SearchQuery: "COFFEE"}, core.SortByAmount, core.Asc)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 || got[0].Amount.Cents != 525 || got[1].Amount.Cents != 700 {
		t.Fatalf("query result = %+v", got)
	}

	rev := svc.Revision()
	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Stats.Count != 3 || d.Stats.Total.Cents != 3225 || d.Stats.Monthly.Cents != 2525 {
		t.Errorf("stats = %+v", d.Stats)
	}
	if d.Stats.TopCategory == nil || d.Stats.TopCategory.Category != core.Bills {
		t.Errorf("top category = %+v", d.Stats.TopCategory)
	}
	// The January record falls outside the 30-day window.
	if len(d.Categories) != 2 || len(d.Daily) != 2 || len(d.Recent) != 3 {
		t.Errorf("dashboard sizes: categories=%d daily=%d recent=%d", len(d.Categories), len(d.Daily), len(d.Recent))
	}
	if d.Recent[0].Date != "2024-02-10" {
		t.Errorf("recent should be newest first, got %s", d.Recent[0].Date)
	}
	if d.Revision != rev {
		t.Errorf("revision = %d, want %d", d.Revision, rev)
	}

	svc.ClearAll(ctx)
	if svc.Revision() == rev {
		t.Errorf("revision should change after a mutation")
	}
}

func TestExpenseService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := &ExpenseService{}
		if err := service.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})

	t.Run("closes publisher", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc, _ := newTestService(t, pub)
		if err := svc.Close(); err != nil {
			t.Fatal(err)
		}
		if !pub.closed {
			t.Error("publisher was not closed")
		}
	})
}

func TestNewUUIDv7(t *testing.T) {
	a, err := NewUUIDv7()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewUUIDv7()
	if a == b || len(a) != 36 {
		t.Errorf("ids %q %q", a, b)
	}
	if a[14] != '7' {
		t.Errorf("expected version 7 id, got %q", a)
	}
}
