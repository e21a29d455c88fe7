package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		in         FormInput
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "valid input",
			in:        FormInput{Date: "2024-01-01", Amount: "10.50", Category: "Food", Description: "lunch"},
			wantValid: true,
		},
		{
			name:       "every field bad",
			in:         FormInput{Date: "", Amount: "-5", Category: "", Description: "  "},
			wantFields: []string{FieldDate, FieldAmount, FieldCategory, FieldDescription},
		},
		{
			name:       "zero amount",
			in:         FormInput{Date: "2024-01-01", Amount: "0", Category: "Food", Description: "x"},
			wantFields: []string{FieldAmount},
		},
		{
			name:       "non numeric amount",
			in:         FormInput{Date: "2024-01-01", Amount: "ten", Category: "Food", Description: "x"},
			wantFields: []string{FieldAmount},
		},
		{
			name:       "whitespace description",
			in:         FormInput{Date: "2024-01-01", Amount: "1", Category: "Food", Description: "\t\n"},
			wantFields: []string{FieldDescription},
		},
		{
			name:      "category outside the set still passes presence check",
			in:        FormInput{Date: "2024-01-01", Amount: "1", Category: "Rent", Description: "x"},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.in)
			if got.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors=%v)", got.Valid, tt.wantValid, got.Errors)
			}
			if len(got.Errors) != len(tt.wantFields) {
				t.Fatalf("errors = %v, want fields %v", got.Errors, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if got.Errors[f] == "" {
					t.Errorf("missing error for %s", f)
				}
			}
		})
	}
}

func TestValidateAmountMessage(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{amount: "-5", want: "Amount must be greater than 0"},
		{amount: "0", want: "Amount must be greater than 0"},
		{amount: "ten", want: "Amount must be greater than 0"},
		{amount: "0.004", want: "Amount must be at least 0.01"},
		{amount: "0.005", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := Validate(FormInput{Date: "2024-01-01", Amount: tt.amount, Category: "Food", Description: "x"})
			if got.Errors[FieldAmount] != tt.want {
				t.Fatalf("amount message = %q, want %q", got.Errors[FieldAmount], tt.want)
			}
		})
	}
}

func TestFromInputBelowCent(t *testing.T) {
	_, err := FromInput(FormInput{Date: "2024-01-01", Amount: "0.004", Category: "Food", Description: "x"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields[FieldAmount] != MsgAmountTooSmall {
		t.Fatalf("FromInput() error = %v, want %q on amount", err, MsgAmountTooSmall)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: FieldErrors{FieldDescription: MsgDescriptionRequired, FieldAmount: MsgAmountPositive}}
	msg := err.Error()
	if !strings.HasPrefix(msg, "invalid expense: amount:") || !strings.Contains(msg, "description: Description is required") {
		t.Fatalf("unexpected message: %q", msg)
	}
}
