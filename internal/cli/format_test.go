package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	tests := map[string]string{
		"435":       "435.00",
		"12345.6":   "12,345.60",
		"1234567.8": "1,234,567.80",
		"-1234":     "-1,234.00",
		"0.005":     "0.01",
	}
	for in, want := range tests {
		assert.Equal(t, want, money(decimal.RequireFromString(in)), in)
	}
}

func TestRate(t *testing.T) {
	assert.Equal(t, "43500.00", rate(43500))
	assert.Equal(t, "0.00002300", rate(0.000023))
}
