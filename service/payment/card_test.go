package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCardNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard 16 digit", "4242424242424242", "4242 4242 4242 4242"},
		{"already spaced", "4242 4242 4242 4242", "4242 4242 4242 4242"},
		{"with dashes", "4242-4242-4242-4242", "4242 4242 4242 4242"},
		{"15 digit amex", "378282246310005", "3782 8224 6310 005"},
		{"short input", "42", "42"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCardNumber(tt.input))
		})
	}
}

func TestFormatExpiry(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"four digit", "1225", "12/25"},
		{"already formatted", "12/25", "12/25"},
		{"too short", "12", "12"},
		{"three digit", "125", "12/5"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatExpiry(tt.input))
		})
	}
}
