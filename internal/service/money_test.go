package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToUSD(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		rate     string
		expected string
	}{
		{"normal rate", "100", "2", "50"},
		{"rate of one", "100", "1", "100"},
		{"zero rate falls back to one", "100", "0", "100"},
		{"negative rate falls back to one", "100", "-3", "100"},
		{"fractional rate", "250", "2.5", "100"},
		{"zero amount", "0", "4", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			rate := decimal.RequireFromString(tt.rate)
			got := ToUSD(amount, rate)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"ToUSD(%s, %s) = %s, want %s", tt.amount, tt.rate, got, tt.expected)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "10.46", Round2(decimal.RequireFromString("10.455")).String())
	assert.Equal(t, "10.45", Round2(decimal.RequireFromString("10.454")).String())
	assert.Equal(t, "10", Round2(decimal.RequireFromString("10")).String())
}

func TestPercentageOf(t *testing.T) {
	assert.True(t, PercentageOf(decimal.NewFromInt(50), decimal.NewFromInt(200)).Equal(decimal.NewFromInt(25)))
	assert.True(t, PercentageOf(decimal.NewFromInt(300), decimal.NewFromInt(200)).Equal(decimal.NewFromInt(150)))
	assert.True(t, PercentageOf(decimal.NewFromInt(50), decimal.Zero).IsZero(), "zero whole must yield zero, not panic")
}
