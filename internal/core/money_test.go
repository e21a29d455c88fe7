package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"10.50", 1050, true},
		{"-1", 0, false},
		{"-5", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyRendering(t *testing.T) {
	cases := []struct {
		cents        int64
		fixed, plain string
	}{
		{1250, "12.50", "12.5"},
		{300, "3.00", "3"},
		{1, "0.01", "0.01"},
		{123456, "1234.56", "1234.56"},
	}
	for _, tc := range cases {
		m := Money{Cents: tc.cents}
		if got := m.String(); got != tc.fixed {
			t.Errorf("String(%d) = %q, want %q", tc.cents, got, tc.fixed)
		}
		if got := m.Plain(); got != tc.plain {
			t.Errorf("Plain(%d) = %q, want %q", tc.cents, got, tc.plain)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := Money{Cents: 1250}.MarshalJSON()
	if err != nil || string(b) != "12.50" {
		t.Fatalf("marshal: %s %v", b, err)
	}
	var m Money
	if err := m.UnmarshalJSON([]byte("7.25")); err != nil || m.Cents != 725 {
		t.Fatalf("unmarshal number: %+v %v", m, err)
	}
	if err := m.UnmarshalJSON([]byte(`"3.1"`)); err != nil || m.Cents != 310 {
		t.Fatalf("unmarshal string: %+v %v", m, err)
	}
	if err := m.UnmarshalJSON([]byte(`"x"`)); err == nil {
		t.Fatalf("expected error for garbage")
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := map[int64]string{
		0:         "$0.00",
		5:         "$0.05",
		1250:      "$12.50",
		123456:    "$1,234.56",
		100000000: "$1,000,000.00",
		-999:      "-$9.99",
	}
	for cents, want := range cases {
		if got := FormatCurrency(Money{Cents: cents}); got != want {
			t.Errorf("FormatCurrency(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestParseDecimalToCentsBelowCent(t *testing.T) {
	tests := []struct {
		in        string
		want      int64
		belowCent bool
		wantErr   bool
	}{
		{in: "0.004", belowCent: true, wantErr: true},
		{in: "0,001", belowCent: true, wantErr: true},
		{in: "0.005", want: 1},
		{in: "0.000", wantErr: true},
		{in: "0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("cents = %d, want %d", got, tt.want)
			}
			if errors.Is(err, ErrAmountBelowCent) != tt.belowCent {
				t.Fatalf("ErrAmountBelowCent = %v, want %v (err=%v)", !tt.belowCent, tt.belowCent, err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("expected ErrInvalidAmount, got %v", err)
			}
		})
	}
}
