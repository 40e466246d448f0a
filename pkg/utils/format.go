// Package utils provides common utility functions for Nivesh.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/niveshlab/nivesh/pkg/models"
)

// NotAvailable is the display string for absent or non-numeric metrics.
const NotAvailable = "N/A"

// Scaling thresholds for the Indian large-number convention.
const (
	crore = 1e7
	lakh  = 1e5
)

// FormatPlain renders a metric value with Indian digit grouping and a
// fixed decimal count. Absent or non-numeric values render as "N/A".
// Zero decimals renders a grouped integer.
func FormatPlain(v models.Value, present bool, decimals int) string {
	if !present || !v.IsNumber() {
		return NotAvailable
	}
	return groupNumber(v.Num, decimals)
}

// FormatScaled renders a metric value using the Indian large-number
// convention: values of at least one crore (1,00,00,000) are divided by
// 1e7 and suffixed "Cr"; values of at least one lakh (1,00,000) are
// divided by 1e5 and suffixed "L"; smaller values render as a grouped
// integer. The two-tier ladder is fixed. Absent or non-numeric values
// render as "N/A".
func FormatScaled(v models.Value, present bool) string {
	if !present || !v.IsNumber() {
		return NotAvailable
	}

	n := v.Num
	mag := math.Abs(n)
	switch {
	case mag >= crore:
		return trimDecimals(n/crore) + " Cr"
	case mag >= lakh:
		return trimDecimals(n/lakh) + " L"
	default:
		return groupNumber(n, 0)
	}
}

// groupNumber formats n with Indian grouping (last 3 digits, then pairs)
// and the requested fixed decimal count.
func groupNumber(n float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}

	s := fmt.Sprintf("%.*f", decimals, math.Abs(n))
	intPart := s
	decPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, decPart = s[:i], s[i:]
	}

	out := groupIndianDigits(intPart) + decPart
	if n < 0 && strings.Trim(out, "0.,") != "" {
		return "-" + out
	}
	return out
}

// groupIndianDigits inserts commas into a digit string using the Indian
// system: the last 3 digits form one group, the rest group in pairs.
func groupIndianDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	result := digits[len(digits)-3:]
	remaining := digits[:len(digits)-3]
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

// trimDecimals formats with up to 2 decimal places, dropping trailing
// zeros ("1.50" → "1.5", "1.00" → "1").
func trimDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
