// Package utils provides small helpers for parsing request parameters.
package utils

import "strconv"

// AtoiDefault converts s with strconv.Atoi, returning def when s is empty or
// not an integer. Surrounding spaces are not trimmed.
//
//	utils.AtoiDefault("42", 0) // 42
//	utils.AtoiDefault("", 10)  // 10
//	utils.AtoiDefault("x", 5)  // 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// IntParam parses s like AtoiDefault and clamps the result to [lo, hi].
// Used for query parameters such as page, page_size and limit.
func IntParam(s string, def, lo, hi int) int {
	return Clamp(AtoiDefault(s, def), lo, hi)
}
