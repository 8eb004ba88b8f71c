package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxLabelLength bounds period labels; they end up in SVG text and sheet cells.
const maxLabelLength = 128

// ValidateLabel validates a period label.
//
// Labels must be non-empty, at most 128 characters and free of control
// characters. The reserved label "Total" is rejected because it is appended
// automatically for the trailing segment.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}

	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label %q contains control characters", label)
		}
	}

	if label == "Total" {
		return New(ErrCodeInvalidInput, "label %q is reserved for the total segment", label)
	}

	return nil
}

// ValidateDelta rejects values that cannot be plotted: NaN and ±Inf.
func ValidateDelta(v float64) error {
	if math.IsNaN(v) {
		return New(ErrCodeInvalidInput, "delta is NaN")
	}
	if math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "delta is infinite")
	}
	return nil
}

// ValidateDeltas runs [ValidateDelta] over every value and reports the first
// offending index.
func ValidateDeltas(deltas []float64) error {
	for i, d := range deltas {
		if err := ValidateDelta(d); err != nil {
			return Wrap(ErrCodeInvalidInput, err, "delta at index %d", i)
		}
	}
	return nil
}

// ValidateRunningTotal checks that the running sum of deltas stays finite.
// Each delta may be finite while the sum still overflows float64.
func ValidateRunningTotal(deltas []float64) error {
	var total float64
	for i, d := range deltas {
		total += d
		if math.IsInf(total, 0) || math.IsNaN(total) {
			return New(ErrCodeInvalidInput, "running total overflows at index %d", i)
		}
	}
	return nil
}
