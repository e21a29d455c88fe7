package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"expensetracker/internal/core"
)

// FileSink writes the ledger as a dated CSV file in Dir.
type FileSink struct {
	Dir string
}

func (s FileSink) Name() string { return "csv-file" }

// Write replaces <Dir>/expenses_YYYY-MM-DD.csv atomically.
func (s FileSink) Write(_ context.Context, records []core.Expense, now time.Time) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".expenses-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := core.WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	path := filepath.Join(s.Dir, core.ExportFilename(now))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename export file: %w", err)
	}
	return nil
}
