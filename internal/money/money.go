// Package money converts between decimal amount strings and integer cents.
//
// Amounts are stored as cents everywhere inside the application; the decimal
// string form only exists at the boundary (HTML forms and JSON responses).
package money

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	apperrors "spendwise/internal/errors"
)

// ParseToCents converts a decimal amount string to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Returns an error for invalid formats and for
// zero or negative values.
func ParseToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperrors.ErrInvalidAmount
	}

	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only plain positive values allowed
		return 0, apperrors.ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, apperrors.ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, apperrors.ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, apperrors.ErrInvalidAmount
	}
	// Prevent overflow when converting to cents
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, apperrors.ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			// Half-up rounding on the third decimal digit
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, apperrors.ErrInvalidAmount
	}
	return cents, nil
}

// Format renders cents as a decimal string with exactly two fraction digits,
// e.g. 1250 -> "12.50".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
