package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

// Store keeps records in an id-indexed arena plus a newest-first order.
type Store struct {
	mu       sync.Mutex
	byID     map[string]core.Expense
	order    []string
	revision uint64
}

var _ store.ExpenseStore = (*Store)(nil)

// New seeds a store with records. Records without an id, with a duplicate
// id or failing core.Expense.Validate are skipped.
func New(seed []core.Expense) *Store {
	s := &Store{byID: map[string]core.Expense{}}
	for _, e := range seed {
		if _, dup := s.byID[e.ID]; dup || e.ID == "" || e.Validate() != nil {
			continue
		}
		s.byID[e.ID] = e
		s.order = append(s.order, e.ID)
	}
	return s
}

// NewFromFiles seeds the store from <base>/expense-tracker-data.yaml when
// present. A missing file yields an empty store; an invalid record fails
// the whole load.
func NewFromFiles(base string) (*Store, error) {
	path := filepath.Join(base, store.StorageKey+".yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed []core.Expense
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	ids := make(map[string]bool, len(seed))
	for _, e := range seed {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("seed file %s: %w", path, err)
		}
		if ids[e.ID] {
			return nil, fmt.Errorf("seed file %s: duplicate expense id %q", path, e.ID)
		}
		ids[e.ID] = true
	}
	return New(seed), nil
}

func (s *Store) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *Store) Replace(_ context.Context, records []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := make(map[string]core.Expense, len(records))
	order := make([]string, 0, len(records))
	for _, e := range records {
		if err := validate(e); err != nil {
			return err
		}
		if _, dup := byID[e.ID]; dup {
			return fmt.Errorf("duplicate expense id %q", e.ID)
		}
		byID[e.ID] = e
		order = append(order, e.ID)
	}
	s.byID, s.order = byID, order
	s.revision++
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return core.Expense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) Insert(_ context.Context, e core.Expense) error {
	if err := validate(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[e.ID]; dup {
		return fmt.Errorf("duplicate expense id %q", e.ID)
	}
	s.byID[e.ID] = e
	s.order = append([]string{e.ID}, s.order...)
	s.revision++
	return nil
}

func (s *Store) Update(_ context.Context, e core.Expense) error {
	if err := validate(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[e.ID]; !ok {
		return store.ErrNotFound
	}
	s.byID[e.ID] = e
	s.revision++
	return nil
}

func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	s.revision++
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = map[string]core.Expense{}
	s.order = nil
	s.revision++
	return nil
}

// Revision counts successful mutations.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// validate checks the stored-record invariants and names the offending id.
func validate(e core.Expense) error {
	if e.ID == "" {
		return errors.New("expense without id")
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("expense %q: %w", e.ID, err)
	}
	return nil
}
