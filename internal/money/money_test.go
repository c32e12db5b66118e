package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
	}{
		{"nil", nil, 0},
		{"float dollars", 154.05, 154.05},
		{"float32", float32(12.5), 12.5},
		{"int cents", 15405, 154.05},
		{"int64 cents", int64(100), 1.00},
		{"plain string", "150.00", 150.00},
		{"dollar prefixed string", "$277.10", 277.10},
		{"string with commas", "$1,234.56", 1234.56},
		{"currency prefixed string", "AUD 80", 80},
		{"number decimal map", map[string]any{"$numberDecimal": "270.05"}, 270.05},
		{"garbage string", "not money", 0},
		{"empty string", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Value(tt.input), 0.0001)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 154.05, Round(154.0549))
	assert.Equal(t, 154.06, Round(154.056))
	assert.Equal(t, 270.05, Round(270.04878))
	assert.Equal(t, 0.0, Round(0))
	assert.Equal(t, -1.23, Round(-1.234))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 3.75, Percentage(150, 0.025))
	assert.Equal(t, 4.95, Percentage(150, 0.033))
}
