package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Money amounts are stored as int64 minor units (kopecks). The gateway speaks
// decimal strings, so parsing happens exactly once at the boundary.

// ParseAmount converts a decimal amount string like "1500.50" into minor
// units. At most two fraction digits are accepted; negative and zero amounts
// are rejected.
func ParseAmount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, NewMissingRequiredFieldError("amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, &DomainError{Code: ErrCodeInvalidAmount, Message: fmt.Sprintf("negative amount %q", raw), Err: ErrInvalidAmount}
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, &DomainError{Code: ErrCodeInvalidAmount, Message: fmt.Sprintf("malformed amount %q", raw), Err: ErrInvalidAmount}
	}
	if len(fracPart) > 2 {
		return 0, &DomainError{Code: ErrCodeInvalidAmount, Message: fmt.Sprintf("amount %q has more than two fraction digits", raw), Err: ErrInvalidAmount}
	}
	var frac int64
	if fracPart != "" {
		for len(fracPart) < 2 {
			fracPart += "0"
		}
		frac, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil || frac < 0 {
			return 0, &DomainError{Code: ErrCodeInvalidAmount, Message: fmt.Sprintf("malformed amount %q", raw), Err: ErrInvalidAmount}
		}
	}
	cents := whole*100 + frac
	if whole < 0 || cents <= 0 {
		return 0, NewInvalidAmountError(cents)
	}
	return cents, nil
}

// FormatAmount renders minor units as the decimal string the gateway expects.
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
