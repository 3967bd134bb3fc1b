// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed by the user
// or read back from reports.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the precision amounts are rounded to on input and display.
const AmountPlaces = 2

// ParseAmount converts a decimal string to an amount with two decimal places.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign, and rounds half away from zero on the third decimal
// place. Negative values are valid: a starting amount may represent debt.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("-3.5")   -> -3.50
//	ParseAmount("12.345") -> 12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(digits, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range digits {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if digits == "." {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(AmountPlaces), nil
}

// FormatAmount renders an amount with exactly two decimals, e.g. "-12.50".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}
