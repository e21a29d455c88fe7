package core

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByCategory SortField = "category"

	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

type (
	SortField string
	SortOrder string
)

var (
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// ParseSortField accepts date, amount or category (case-insensitive).
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByDate, SortByAmount, SortByCategory:
		return f, nil
	}
	return "", ErrInvalidSortField
}

// ParseSortOrder accepts asc or desc (case-insensitive).
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case Asc, Desc:
		return o, nil
	}
	return "", ErrInvalidSortOrder
}

// Sort returns a stably sorted copy of records. Desc negates the ascending
// comparison, so records with equal keys keep their input order either way.
func Sort(records []Expense, field SortField, order SortOrder) []Expense {
	out := append([]Expense(nil), records...)
	cmp := comparator(field)
	sign := 1
	if order == Desc {
		sign = -1
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sign*cmp(out[i], out[j]) < 0
	})
	return out
}

// Recent returns the n most recent records by date.
func Recent(records []Expense, n int) []Expense {
	sorted := Sort(records, SortByDate, Desc)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func comparator(field SortField) func(a, b Expense) int {
	switch field {
	case SortByAmount:
		return func(a, b Expense) int {
			switch {
			case a.Amount.Cents < b.Amount.Cents:
				return -1
			case a.Amount.Cents > b.Amount.Cents:
				return 1
			}
			return 0
		}
	case SortByCategory:
		c := collate.New(language.English)
		return func(a, b Expense) int {
			return c.CompareString(string(a.Category), string(b.Category))
		}
	default:
		c := collate.New(language.English)
		return func(a, b Expense) int {
			return c.CompareString(a.Date, b.Date)
		}
	}
}
