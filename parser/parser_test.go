package parser

import (
	"errors"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "with currency symbol", input: "£45.99", expected: 45.99},
		{name: "mis-encoded symbol artifact", input: "Â£51.77", expected: 51.77},
		{name: "plain number", input: "12.50", expected: 12.5},
		{name: "integer", input: "7", expected: 7},
		{name: "thousands separator", input: "45,00", expected: 4500},
		{name: "currency code", input: "GBP 19.99", expected: 19.99},
		{name: "surrounding whitespace", input: "  £10.00  ", expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if err != nil {
				t.Fatalf("ParsePrice(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Fatalf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParsePriceNoDigits(t *testing.T) {
	for _, input := range []string{"", "free", "£", "n/a"} {
		_, err := ParsePrice(input)
		if err == nil {
			t.Fatalf("ParsePrice(%q) expected error", input)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("ParsePrice(%q) error = %T, want *ParseError", input, err)
		}
	}
}

func TestStockFromText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *int
	}{
		{name: "with count", input: "In stock (12 available)", expected: intPtr(12)},
		{name: "no digits", input: "In stock", expected: nil},
		{name: "empty", input: "", expected: nil},
		{name: "leading digits", input: "3 left", expected: intPtr(3)},
		{name: "first run wins", input: "2 of 10 remaining", expected: intPtr(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StockFromText(tt.input)
			switch {
			case tt.expected == nil && got != nil:
				t.Fatalf("StockFromText(%q) = %d, want nil", tt.input, *got)
			case tt.expected != nil && got == nil:
				t.Fatalf("StockFromText(%q) = nil, want %d", tt.input, *tt.expected)
			case tt.expected != nil && *got != *tt.expected:
				t.Fatalf("StockFromText(%q) = %d, want %d", tt.input, *got, *tt.expected)
			}
		})
	}
}

func TestRatingFromLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected int
	}{
		{label: "One", expected: 1},
		{label: "Two", expected: 2},
		{label: "Three", expected: 3},
		{label: "Four", expected: 4},
		{label: "Five", expected: 5},
		{label: "", expected: 0},
		{label: "Six", expected: 0},
		{label: "five", expected: 0},
		{label: " Three ", expected: 3},
	}

	for _, tt := range tests {
		if got := RatingFromLabel(tt.label); got != tt.expected {
			t.Errorf("RatingFromLabel(%q) = %d, want %d", tt.label, got, tt.expected)
		}
	}
}

func intPtr(n int) *int {
	return &n
}
