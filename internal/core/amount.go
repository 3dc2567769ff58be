// Package core provides the projection data model, seed generator,
// derivation engine and edit rules for the monthly plan.
//
// This file contains the boundary coercion helpers: values arriving
// from form fields or loosely typed payloads are parsed here so that
// everything past the boundary is strictly numeric.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts user input to a whole-yen amount. Malformed or
// empty input coerces to 0 rather than erroring: a garbled cell must
// never break derivation. Decimal input is rounded half away from
// zero. Thousands separators (comma) are tolerated.
//
// Examples:
//
//	ParseAmount("1200000")   -> 1200000
//	ParseAmount("1,200,000") -> 1200000
//	ParseAmount("120.5")     -> 121
//	ParseAmount("abc")       -> 0
func ParseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(math.Round(f))
	}
	return 0
}

// Round1 rounds a percentage to one decimal place. Display-only:
// internal accumulation always uses unrounded values.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
