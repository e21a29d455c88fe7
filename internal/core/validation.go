package core

import (
	"errors"
	"sort"
	"strings"
)

// Form field names used as keys in FieldErrors.
const (
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
)

const (
	MsgDateRequired        = "Date is required"
	MsgAmountPositive      = "Amount must be greater than 0"
	MsgAmountTooSmall      = "Amount must be at least 0.01"
	MsgCategoryRequired    = "Category is required"
	MsgCategoryUnknown     = "Category is not supported"
	MsgDescriptionRequired = "Description is required"
)

// FieldErrors maps a form field to its error message.
type FieldErrors map[string]string

// Validation is the outcome of checking a FormInput.
type Validation struct {
	Valid  bool        `json:"valid"`
	Errors FieldErrors `json:"errors"`
}

// ValidationError carries every field error of a rejected input.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid expense: " + strings.Join(parts, "; ")
}

// Validate checks all four fields independently and reports every failure.
// Category membership is not checked here, only presence.
func Validate(in FormInput) Validation {
	errs := FieldErrors{}

	if in.Date == "" {
		errs[FieldDate] = MsgDateRequired
	}
	if _, err := ParseDecimalToCents(in.Amount); err != nil {
		errs[FieldAmount] = amountMessage(err)
	}
	if in.Category == "" {
		errs[FieldCategory] = MsgCategoryRequired
	}
	if strings.TrimSpace(in.Description) == "" {
		errs[FieldDescription] = MsgDescriptionRequired
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}

func amountMessage(err error) string {
	if errors.Is(err, ErrAmountBelowCent) {
		return MsgAmountTooSmall
	}
	return MsgAmountPositive
}
