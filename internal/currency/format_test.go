package currency

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind     Kind
		amount   string
		expected string
	}{
		{USD, "0", "$0.00"},
		{USD, "12.5", "$12.50"},
		{USD, "1200.25", "$1,200.25"},
		{USD, "1234567.891", "$1,234,567.89"},
		{KHR, "25000", "៛25,000"},
		{KHR, "25000.00", "៛25,000"},
		{KHR, "1500.5", "៛1,500.5"},
		{KHR, "0", "៛0"},
	}

	for _, tt := range tests {
		got := Format(tt.kind, decimal.RequireFromString(tt.amount))
		if got != tt.expected {
			t.Errorf("Format(%v, %s) = %q, want %q", tt.kind, tt.amount, got, tt.expected)
		}
	}
}

func TestPlaces(t *testing.T) {
	t.Parallel()

	tests := map[string]int32{
		"15000":    0,
		"15000.00": 0,
		"12.50":    1,
		"0.125":    3,
	}
	for in, expected := range tests {
		if got := Places(decimal.RequireFromString(in)); got != expected {
			t.Errorf("Places(%s) = %d, want %d", in, got, expected)
		}
	}
}
