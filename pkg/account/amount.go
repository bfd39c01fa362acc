package account

import (
	"fmt"
	"strconv"
	"strings"
)

// Decimals is the fractional precision of the native asset (1 SOL = 1e9 lamports).
const Decimals = 9

// lamportsPerUnit is 10^Decimals.
const lamportsPerUnit = uint64(1_000_000_000)

// AssetToBaseUnits parses a decimal amount string into base units (lamports)
// without going through floating point, so "1.5" is exactly 1500000000.
// Fractional digits beyond the asset's precision are truncated, not rounded.
// Negative or non-numeric input fails with ErrInvalidAmount.
func AssetToBaseUnits(amount string) (uint64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: negative amount %q", ErrInvalidAmount, amount)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
		}
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	// Truncate excess fractional digits, pad short ones with zeros.
	if len(fracPart) > Decimals {
		fracPart = fracPart[:Decimals]
	}
	frac := uint64(0)
	if fracPart != "" {
		frac, err = strconv.ParseUint(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
		}
		for i := len(fracPart); i < Decimals; i++ {
			frac *= 10
		}
	}

	if whole > (^uint64(0)-frac)/lamportsPerUnit {
		return 0, fmt.Errorf("%w: %q overflows base units", ErrInvalidAmount, amount)
	}
	return whole*lamportsPerUnit + frac, nil
}

// BaseUnitsToAsset formats lamports as a decimal asset amount, trimming
// trailing fractional zeros.
func BaseUnitsToAsset(lamports uint64) string {
	whole := lamports / lamportsPerUnit
	frac := lamports % lamportsPerUnit
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	s := fmt.Sprintf("%d.%09d", whole, frac)
	return strings.TrimRight(s, "0")
}

// parseBaseUnits parses a base-unit amount string and enforces it is a
// positive integer. Used by SendDeposit before any network call.
func parseBaseUnits(amount string) (uint64, error) {
	s := strings.TrimSpace(amount)
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: negative amount %q", ErrInvalidAmount, amount)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if v == 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	return v, nil
}
