// Package utils provides common utility functions for FundLens.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// NA is the placeholder rendered for missing values. A genuine zero
// formats as "0", never as NA.
const NA = "N/A"

// CrorePerUnit is the number of base currency units in one crore.
const CrorePerUnit = 1e7

// ToCrores converts a raw currency magnitude to crores.
func ToCrores(amount float64) float64 {
	return amount / CrorePerUnit
}

// FromCrores converts crores to a raw currency magnitude.
func FromCrores(crores float64) float64 {
	return crores * CrorePerUnit
}

// FormatCurrency renders a currency magnitude as a signed, Indian-grouped
// integer string (e.g. -1234567.8 → "-12,34,568"). Nil or NaN renders NA.
func FormatCurrency(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NA
	}
	n := int64(math.Round(math.Abs(*v)))
	s := formatIndianNumber(n)
	if *v < 0 && n != 0 {
		return "-" + s
	}
	return s
}

// FormatPercent renders a percentage as a rounded integer with a "%"
// suffix (e.g. 18.6 → "19%"). Nil or NaN renders NA.
func FormatPercent(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NA
	}
	return fmt.Sprintf("%d%%", int64(math.Round(*v)))
}

// FormatNumber renders a plain number with two decimals. Nil or NaN
// renders NA.
func FormatNumber(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NA
	}
	return fmt.Sprintf("%.2f", *v)
}

// FormatINRCompact formats a raw magnitude in compact Indian notation.
// e.g. 1927345 → "₹19.27 L", 192734500000 → "₹19273.45 Cr"
func FormatINRCompact(amount float64) string {
	prefix := "₹"
	if amount < 0 {
		prefix = "-₹"
		amount = -amount
	}

	switch {
	case amount >= 1e7:
		return fmt.Sprintf("%s%s Cr", prefix, formatWithDecimals(amount/1e7))
	case amount >= 1e5:
		return fmt.Sprintf("%s%s L", prefix, formatWithDecimals(amount/1e5))
	case amount >= 1e3:
		return fmt.Sprintf("%s%s K", prefix, formatWithDecimals(amount/1e3))
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// formatIndianNumber formats an integer with Indian grouping (last 3, then 2s).
func formatIndianNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	length := len(s)

	result := s[length-3:]
	remaining := s[:length-3]

	for len(remaining) > 0 {
		if len(remaining) > 2 {
			result = remaining[len(remaining)-2:] + "," + result
			remaining = remaining[:len(remaining)-2]
		} else {
			result = remaining + "," + result
			remaining = ""
		}
	}

	return result
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
