// Package core provides the ledger's domain types and amount handling.
//
// Amounts are plain float64 values in a single implicit currency. Parsing
// happens here, at the input boundary; the aggregation packages only ever
// add and subtract.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts user input to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading currency symbol. Signs, zero, and anything that is not a
// plain decimal number are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("¥ 8")    -> 8, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "¥$€£")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidAmount
			}
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if err := ValidAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// SafeAmount is the value an amount contributes to a sum. Malformed values
// (NaN, infinities, negatives) contribute nothing.
func SafeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Round1 rounds to one decimal place for percentage display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places for amount display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
