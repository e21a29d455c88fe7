package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Food           Category = "Food"
	Transportation Category = "Transportation"
	Entertainment  Category = "Entertainment"
	Shopping       Category = "Shopping"
	Bills          Category = "Bills"
	Other          Category = "Other"
)

// AllCategories is the wildcard accepted by filters.
const AllCategories = "All"

type (
	Category string

	// CategoryInfo carries display metadata for a category.
	CategoryInfo struct {
		Name  Category `json:"name"`
		Color string   `json:"color"`
		Icon  string   `json:"icon"`
	}

	Expense struct {
		ID          string    `json:"id" yaml:"id"`
		Date        string    `json:"date" yaml:"date"` // ISO 8601 date or date-time
		Amount      Money     `json:"amount" yaml:"amount"`
		Category    Category  `json:"category" yaml:"category"`
		Description string    `json:"description" yaml:"description"`
		CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
	}

	// FormInput is the raw, unparsed user submission for an expense.
	FormInput struct {
		Date        string `json:"date"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyDate        = errors.New("empty date")

	// ErrAmountBelowCent marks a positive amount that rounds to zero cents.
	ErrAmountBelowCent = fmt.Errorf("%w: below one cent", ErrInvalidAmount)
)

var categories = []CategoryInfo{
	{Name: Food, Color: "#f59e0b", Icon: "🍔"},
	{Name: Transportation, Color: "#3b82f6", Icon: "🚗"},
	{Name: Entertainment, Color: "#ec4899", Icon: "🎬"},
	{Name: Shopping, Color: "#8b5cf6", Icon: "🛍️"},
	{Name: Bills, Color: "#ef4444", Icon: "💳"},
	{Name: Other, Color: "#6b7280", Icon: "📦"},
}

// Categories returns the closed category set in display order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categories...)
}

// ParseCategory resolves s to a member of the closed set. Matching is exact.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if string(c.Name) == s {
			return c.Name, nil
		}
	}
	return "", ErrUnknownCategory
}

// Info returns display metadata; unknown categories fall back to Other's styling.
func (c Category) Info() CategoryInfo {
	for _, ci := range categories {
		if ci.Name == c {
			return ci
		}
	}
	return CategoryInfo{Name: c, Color: "#6b7280", Icon: "📦"}
}

func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Validate checks the structural invariants of a stored record.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Date) == "" {
		return ErrEmptyDate
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// FromInput builds a record body from validated form input. ID and
// timestamps are left for the caller.
func FromInput(in FormInput) (Expense, error) {
	if v := Validate(in); !v.Valid {
		return Expense{}, &ValidationError{Fields: v.Errors}
	}
	cents, err := ParseDecimalToCents(in.Amount)
	if err != nil {
		return Expense{}, &ValidationError{Fields: FieldErrors{FieldAmount: amountMessage(err)}}
	}
	cat, err := ParseCategory(in.Category)
	if err != nil {
		return Expense{}, &ValidationError{Fields: FieldErrors{FieldCategory: MsgCategoryUnknown}}
	}
	return Expense{
		Date:        strings.TrimSpace(in.Date),
		Amount:      Money{Cents: cents},
		Category:    cat,
		Description: strings.TrimSpace(in.Description),
	}, nil
}
