// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/proformatools/proforma/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// IsNegative checks if a value is negative (less than negative tolerance)
func IsNegative(val float64) bool {
	return val < -constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Clamp restricts a value to the inclusive range [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// AnnualToMonthlyRate converts an annual compound rate to its monthly
// equivalent, i.e. the rate m such that (1+m)^12 = 1+annual.
func AnnualToMonthlyRate(annual float64) float64 {
	return math.Pow(1.0+annual, 1.0/constants.MonthsPerYear) - 1.0
}

// MonthlyToAnnualRate converts a monthly compound rate to its annual
// equivalent.
func MonthlyToAnnualRate(monthly float64) float64 {
	return math.Pow(1.0+monthly, constants.MonthsPerYear) - 1.0
}
