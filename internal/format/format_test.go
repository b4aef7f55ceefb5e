package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₩0"},
		{"500", "₩500"},
		{"500000", "₩500,000"},
		{"1234567", "₩1,234,567"},
		{"102500.75", "₩102,500.75"},
		{"0.5", "₩0.50"},
		{"-12345", "-₩12,345"},
	}
	for _, tt := range tests {
		got := Amount(decimal.RequireFromString(tt.in))
		assert.Equal(t, tt.want, got, "Amount(%s)", tt.in)
	}
}

func TestShortDate(t *testing.T) {
	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "1/5", ShortDate(d))

	d = time.Date(2024, 11, 23, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "11/23", ShortDate(d))
}

func TestISODate(t *testing.T) {
	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-05", ISODate(d))
}
