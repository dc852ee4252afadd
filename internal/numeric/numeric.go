// Package numeric provides guarded arithmetic used by the nesting and cost
// engines. Every computed dimension, count, and rate is routed through these
// helpers so NaN and Inf never leak into a result.
package numeric

import "math"

// IsValidNumber reports whether v is a finite, non-NaN number.
func IsValidNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SafeDivide returns numerator/denominator, or fallback when the denominator
// is zero, either operand is not finite, or the quotient itself is not finite.
func SafeDivide(numerator, denominator, fallback float64) float64 {
	if denominator == 0 || !IsValidNumber(numerator) || !IsValidNumber(denominator) {
		return fallback
	}
	q := numerator / denominator
	if !IsValidNumber(q) {
		return fallback
	}
	return q
}

// Clamp limits v to the closed range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SafeCeil returns ceil(v), or fallback when v is not a valid number.
func SafeCeil(v, fallback float64) float64 {
	if !IsValidNumber(v) {
		return fallback
	}
	return math.Ceil(v)
}

// Predicate decides whether a configuration value is acceptable.
type Predicate func(float64) bool

// Positive accepts finite values strictly greater than zero.
func Positive(v float64) bool {
	return IsValidNumber(v) && v > 0
}

// NonNegative accepts finite values greater than or equal to zero.
func NonNegative(v float64) bool {
	return IsValidNumber(v) && v >= 0
}

// ValidOrDefault returns v when ok(v) holds, otherwise def.
func ValidOrDefault(v float64, ok Predicate, def float64) float64 {
	if ok(v) {
		return v
	}
	return def
}

// PositiveIntOrDefault returns n when it is greater than zero, otherwise def.
func PositiveIntOrDefault(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}
