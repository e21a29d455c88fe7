package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

func exp(id string, cents int64) core.Expense {
	return core.Expense{
		ID:          id,
		Date:        "2024-01-01",
		Amount:      core.Money{Cents: cents},
		Category:    core.Food,
		Description: "item " + id,
	}
}

func ids(t *testing.T, s *Store) []string {
	t.Helper()
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStore_InsertPrepends(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Insert(ctx, exp(id, 100)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	if got := ids(t, s); !equal(got, []string{"c", "b", "a"}) {
		t.Fatalf("order = %v", got)
	}
	if err := s.Insert(ctx, exp("a", 1)); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestStore_UpdateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Expense{exp("c", 1), exp("b", 2), exp("a", 3)})

	upd := exp("b", 999)
	if err := s.Update(ctx, upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Get(ctx, "b")
	if err != nil || got.Amount.Cents != 999 {
		t.Fatalf("get after update = %+v, %v", got, err)
	}
	if order := ids(t, s); !equal(order, []string{"c", "b", "a"}) {
		t.Fatalf("order = %v", order)
	}
	if err := s.Update(ctx, exp("zz", 1)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
}

func TestStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Expense{exp("c", 1), exp("b", 2), exp("a", 3)})

	if err := s.Remove(ctx, "b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if order := ids(t, s); !equal(order, []string{"c", "a"}) {
		t.Fatalf("order = %v", order)
	}
	if err := s.Remove(ctx, "b"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second remove err = %v", err)
	}
	if _, err := s.Get(ctx, "b"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get removed err = %v", err)
	}

	before := s.Revision()
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := ids(t, s); len(got) != 0 {
		t.Fatalf("expected empty store, got %v", got)
	}
	if s.Revision() <= before {
		t.Fatalf("revision did not advance")
	}
}

func TestStore_Replace(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Expense{exp("x", 1)})
	if err := s.Replace(ctx, []core.Expense{exp("a", 1), exp("b", 2)}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := ids(t, s); !equal(got, []string{"a", "b"}) {
		t.Fatalf("order = %v", got)
	}
	if err := s.Replace(ctx, []core.Expense{exp("a", 1), exp("a", 2)}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	// A rejected replace leaves the previous collection intact.
	if got := ids(t, s); !equal(got, []string{"a", "b"}) {
		t.Fatalf("order after failed replace = %v", got)
	}
}

func TestStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Expense{exp("a", 1)})
	list, _ := s.List(ctx)
	list[0].Description = "mutated"
	got, _ := s.Get(ctx, "a")
	if got.Description != "item a" {
		t.Fatalf("store was mutated through List result")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("missing seed file should not fail: %v", err)
	}
	if got := ids(t, s); len(got) != 0 {
		t.Fatalf("expected empty store, got %v", got)
	}

	seed := `- id: one
  date: "2024-03-01"
  amount: "12.50"
  category: Food
  description: Lunch
- id: two
  date: "2024-03-02"
  amount: 40
  category: Bills
  description: Phone
`
	if err := os.WriteFile(filepath.Join(dir, "expense-tracker-data.yaml"), []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	list, _ := s.List(context.Background())
	if len(list) != 2 || list[0].ID != "one" || list[1].ID != "two" {
		t.Fatalf("unexpected seed result: %+v", list)
	}
	if list[0].Amount.Cents != 1250 || list[1].Amount.Cents != 4000 {
		t.Fatalf("amounts = %d, %d", list[0].Amount.Cents, list[1].Amount.Cents)
	}

	if err := os.WriteFile(filepath.Join(dir, "expense-tracker-data.yaml"), []byte("{not: [valid"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFiles(dir); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewFromFilesRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name    string
		seed    string
		wantErr error
	}{
		{
			name:    "empty date",
			seed:    "- id: bad\n  date: \"\"\n  amount: \"-5\"\n  category: Groceries\n  description: \"   \"\n",
			wantErr: core.ErrEmptyDate,
		},
		{
			name:    "negative amount",
			seed:    "- id: bad\n  date: \"2024-03-01\"\n  amount: \"-5\"\n  category: Food\n  description: Refund\n",
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "unknown category",
			seed:    "- id: bad\n  date: \"2024-03-01\"\n  amount: \"5\"\n  category: Groceries\n  description: Bread\n",
			wantErr: core.ErrUnknownCategory,
		},
		{
			name:    "blank description",
			seed:    "- id: bad\n  date: \"2024-03-01\"\n  amount: \"5\"\n  category: Food\n  description: \"   \"\n",
			wantErr: core.ErrEmptyDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "expense-tracker-data.yaml"), []byte(tt.seed), 0o600); err != nil {
				t.Fatal(err)
			}
			s, err := NewFromFiles(dir)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewFromFiles() error = %v, want %v", err, tt.wantErr)
			}
			if s != nil {
				t.Errorf("NewFromFiles() returned a store alongside the error")
			}
			if !strings.Contains(err.Error(), `"bad"`) {
				t.Errorf("error %q does not name the record id", err)
			}
		})
	}
}

func TestNewFromFilesRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	seed := "- {id: a, date: \"2024-03-01\", amount: \"1\", category: Food, description: x}\n" +
		"- {id: a, date: \"2024-03-02\", amount: \"2\", category: Food, description: y}\n"
	if err := os.WriteFile(filepath.Join(dir, "expense-tracker-data.yaml"), []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFiles(dir); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestStore_MutationsRejectInvalidRecords(t *testing.T) {
	ctx := context.Background()
	s := New([]core.Expense{exp("a", 100)})

	negative := exp("b", -500)
	if err := s.Insert(ctx, negative); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Insert() error = %v, want ErrInvalidAmount", err)
	}

	badCategory := exp("a", 100)
	badCategory.Category = "Groceries"
	if err := s.Update(ctx, badCategory); !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("Update() error = %v, want ErrUnknownCategory", err)
	}

	blank := exp("c", 100)
	blank.Description = "  "
	if err := s.Replace(ctx, []core.Expense{exp("d", 1), blank}); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("Replace() error = %v, want ErrEmptyDescription", err)
	}

	if got := ids(t, s); !equal(got, []string{"a"}) {
		t.Errorf("store changed after rejected mutations: %v", got)
	}
	if got, _ := s.Get(ctx, "a"); got.Category != core.Food {
		t.Errorf("rejected update was applied: %+v", got)
	}
	if s.Revision() != 0 {
		t.Errorf("Revision() = %d, want 0", s.Revision())
	}
}

func TestNewSkipsInvalidSeedRecords(t *testing.T) {
	bad := exp("bad", 0)
	s := New([]core.Expense{exp("a", 1), bad, exp("", 2)})
	if got := ids(t, s); !equal(got, []string{"a"}) {
		t.Errorf("ids = %v, want [a]", got)
	}
}
