// Package core implements the monthly billing calculation engine: per-task
// time rounding, per-project minimum/maximum hour limits with carryover of
// excess hours, and the roll-up to company and monthly totals.
//
// This file contains money parsing and arithmetic. All monetary values are
// held as integer cents so that revenue roll-ups are exact sums; the only
// rounding happens when a rate is multiplied by an hour figure.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in integer cents. Hourly rates are Money per hour.
type Money struct {
	Cents int64 `json:"cents"`
}

// MulHours multiplies a rate by an hour figure, rounding half-up to the cent.
// The hour figure is expected to already be 2-decimal normalized (Round2).
func (m Money) MulHours(hours float64) Money {
	return Money{Cents: int64(math.Floor(float64(m.Cents)*hours + 0.5))}
}

// Add returns the exact sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Float64 returns the amount in currency units for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals, e.g. "2000.00".
func (m Money) String() string {
	neg := m.Cents < 0
	c := m.Cents
	if neg {
		c = -c
	}
	s := fmt.Sprintf("%d.%02d", c/100, c%100)
	if neg {
		return "-" + s
	}
	return s
}

// Round2 normalizes a non-negative hour figure to 2 decimal places using
// half-up rounding. Applied after every arithmetic op that can introduce
// binary-float error, so repeated summation stays drift-free.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (85.50) and
// comma (85,50) separators. Zero is a valid amount (a zero hourly rate is a
// well-defined configuration); negative values are rejected.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
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
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracCents++
				}
			}
		}
	}
	return iv*100 + fracCents, nil
}
