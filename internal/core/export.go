package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportHeader is the first row of every export.
var ExportHeader = []string{"Date", "Category", "Amount", "Description"}

// Rows renders records as export rows (without header), in input order.
// Commas in descriptions become semicolons so spreadsheet tools that split
// naively on commas still see four columns.
func Rows(records []Expense) [][]string {
	rows := make([][]string, 0, len(records))
	for _, e := range records {
		rows = append(rows, []string{
			FormatDate(e.Date, DisplayDateLayout),
			string(e.Category),
			e.Amount.String(),
			strings.ReplaceAll(e.Description, ",", ";"),
		})
	}
	return rows
}

// WriteCSV writes the header and one RFC 4180 encoded row per record.
func WriteCSV(w io.Writer, records []Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(records)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// ExportCSV returns the CSV encoding of records.
func ExportCSV(records []Expense) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExportFilename names an export produced at now ("expenses_2024-01-31.csv").
func ExportFilename(now time.Time) string {
	return "expenses_" + now.Format(DateLayout) + ".csv"
}
