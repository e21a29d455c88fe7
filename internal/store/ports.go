// Package store defines the record store consumed by the expense service.
package store

import (
	"context"
	"errors"

	"expensetracker/internal/core"
)

// StorageKey identifies the persisted expense collection.
const StorageKey = "expense-tracker-data"

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("expense not found")

// Ports for record persistence.
type (
	// RecordStore reads and replaces the whole ordered collection.
	RecordStore interface {
		// List returns every record, newest first. Empty when nothing is stored.
		List(ctx context.Context) ([]core.Expense, error)
		// Replace swaps the whole collection atomically.
		Replace(ctx context.Context, records []core.Expense) error
	}

	// KeyedStore addresses single records by id.
	KeyedStore interface {
		Get(ctx context.Context, id string) (core.Expense, error)
		// Insert places e at the front of the collection.
		Insert(ctx context.Context, e core.Expense) error
		// Update replaces the record with e.ID, keeping its position.
		Update(ctx context.Context, e core.Expense) error
		Remove(ctx context.Context, id string) error
		Clear(ctx context.Context) error
	}

	// ExpenseStore is the full persistence contract.
	ExpenseStore interface {
		RecordStore
		KeyedStore
	}

	// Revisioner is implemented by stores that count their mutations.
	Revisioner interface {
		Revision() uint64
	}
)
