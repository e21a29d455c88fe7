package core

import "strings"

// FilterSpec selects a subset of records. Empty fields are inactive.
type FilterSpec struct {
	Category    string `json:"category"` // AllCategories or "" matches every record
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	SearchQuery string `json:"searchQuery,omitempty"`
}

// DefaultFilter matches every record.
func DefaultFilter() FilterSpec {
	return FilterSpec{Category: AllCategories}
}

// Filter returns the records matching spec in their original order. All
// active predicates must hold; the text query narrows the category and date
// bounds instead of replacing them.
func Filter(records []Expense, spec FilterSpec) []Expense {
	query := strings.ToLower(spec.SearchQuery)
	out := make([]Expense, 0, len(records))
	for _, e := range records {
		if spec.matches(e, query) {
			out = append(out, e)
		}
	}
	return out
}

func (f FilterSpec) matches(e Expense, lowerQuery string) bool {
	if f.Category != "" && f.Category != AllCategories && string(e.Category) != f.Category {
		return false
	}
	if f.StartDate != "" && e.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && e.Date > f.EndDate {
		return false
	}
	if lowerQuery != "" {
		return strings.Contains(strings.ToLower(e.Description), lowerQuery) ||
			strings.Contains(strings.ToLower(string(e.Category)), lowerQuery) ||
			strings.Contains(e.Amount.Plain(), lowerQuery)
	}
	return true
}
