package account

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetToBaseUnits(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"1.5", 1_500_000_000},
		{"0.000000001", 1},
		{"1", 1_000_000_000},
		{"0", 0},
		{".5", 500_000_000},
		{"2.", 2_000_000_000},
		{"0.1234567891234", 123_456_789}, // excess digits truncated, not rounded
		{"0.9999999999", 999_999_999},
	}

	for _, tc := range tests {
		got, err := AssetToBaseUnits(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestAssetToBaseUnitsInvalid(t *testing.T) {
	for _, in := range []string{"-1", "abc", "", ".", "1.2.3", "1,5", "-0.5"} {
		_, err := AssetToBaseUnits(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, ErrInvalidAmount), "input %q: got %v", in, err)
	}
}

func TestBaseUnitsToAsset(t *testing.T) {
	assert.Equal(t, "1.5", BaseUnitsToAsset(1_500_000_000))
	assert.Equal(t, "2", BaseUnitsToAsset(2_000_000_000))
	assert.Equal(t, "0.000000001", BaseUnitsToAsset(1))
	assert.Equal(t, "0", BaseUnitsToAsset(0))
}

func TestParseBaseUnits(t *testing.T) {
	v, err := parseBaseUnits("1500000000")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), v)

	for _, in := range []string{"0", "-1", "1.5", "abc", ""} {
		_, err := parseBaseUnits(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, ErrInvalidAmount), "input %q", in)
	}
}
