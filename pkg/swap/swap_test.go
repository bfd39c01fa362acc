package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int32
		want     string
	}{
		{"whole", "12", 6, "12000000"},
		{"fractional", "0.5", 9, "500000000"},
		{"mixed", "1.25", 18, "1250000000000000000"},
		{"truncates excess precision", "0.1234567891", 9, "123456789"},
		{"no leading integer digit", ".5", 6, "500000"},
		{"trims leading zeros", "007", 2, "700"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BaseUnits(tt.amount, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBaseUnitsRejectsInvalid(t *testing.T) {
	for _, amount := range []string{"", "-1", "abc", "1.2.3", "1,5", "0", "0.0"} {
		t.Run(amount, func(t *testing.T) {
			_, err := BaseUnits(amount, 9)
			assert.Error(t, err)
		})
	}
}

func TestSwapErrorRefunded(t *testing.T) {
	refunded := &SwapError{Status: "REFUNDED", Reason: "Swap refunded"}
	assert.True(t, refunded.Refunded())
	assert.Equal(t, "swap REFUNDED: Swap refunded", refunded.Error())

	failed := &SwapError{Status: "FAILED", Reason: "Swap failed"}
	assert.False(t, failed.Refunded())
}
