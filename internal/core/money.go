// Package core holds the value records exchanged with the backend and the
// small amount of presentation logic this front-end owns: decimal-string
// money handling and week normalization.
//
// Money never becomes a binary float on this side. Amounts arrive and leave
// as decimal strings; parsing goes through integer cents only for display
// formatting.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalCents converts a decimal string to cents. It accepts both dot
// (12.34) and comma (12,34) separators, an optional leading minus, and
// performs half-up rounding on the third decimal place.
//
// Examples:
//
//	ParseDecimalCents("12.34")  -> 1234, nil
//	ParseDecimalCents("12,34")  -> 1234, nil
//	ParseDecimalCents("12.346") -> 1235, nil (rounds up)
//	ParseDecimalCents("-3")     -> -300, nil
func ParseDecimalCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}

	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// FormatBRL renders a decimal-string amount as Brazilian currency, e.g.
// "1234.5" -> "R$ 1.234,50". Non-numeric input passes through unchanged so
// the view never hides what the backend sent.
func FormatBRL(amount string) string {
	cents, err := ParseDecimalCents(amount)
	if err != nil {
		return amount
	}
	return FormatCentsBRL(cents)
}

// FormatCentsBRL renders integer cents as "R$ 1.234,56" with pt-BR
// separators.
func FormatCentsBRL(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	reais := cents / 100
	rem := cents % 100

	digits := strconv.FormatInt(reais, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	out := fmt.Sprintf("R$ %s,%02d", b.String(), rem)
	if neg {
		return "-" + out
	}
	return out
}
