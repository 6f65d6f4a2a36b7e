// Package constants provides shared constants for the proforma feasibility engine.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Discount-rate bounds. The hard bounds are validation failures; the typical
// band only produces warnings.
const (
	MinDiscountRate = 0.01
	MaxDiscountRate = 0.30

	TypicalDiscountRateLow  = 0.05
	TypicalDiscountRateHigh = 0.25
)

// Cap-rate bounds. CapRateFloor is also the clamp applied to sampled cap
// rates during Monte Carlo simulation so terminal value stays finite.
const (
	CapRateFloor = 0.01

	TypicalCapRateLow  = 0.03
	TypicalCapRateHigh = 0.08
)

// Assumption defaults, applied when neither the scenario nor the defaults
// block of the configuration supplies a value.
const (
	DefaultDiscountRate  = 0.12
	DefaultCapRate       = 0.055
	DefaultVacancyRate   = 0.05
	DefaultTaxRate       = 0.0
	DefaultRentGrowth    = 0.02
	DefaultExpenseGrowth = 0.025
	DefaultCostFactor    = 1.0
)

// IRR solver parameters
const (
	// IRRBracketLow and IRRBracketHigh bound the per-period rate search range.
	IRRBracketLow  = -0.99
	IRRBracketHigh = 10.0

	// IRRInitialGuess seeds the Newton-Raphson stage.
	IRRInitialGuess = 0.10

	// IRRMaxIterations caps the solver; exceeding it yields an undefined IRR.
	IRRMaxIterations = 100

	// IRRNPVTolerance is the absolute NPV value treated as zero.
	IRRNPVTolerance = 1e-6
)

// Monte Carlo simulation parameters
const (
	DefaultIterations = 10000
	MinIterations     = 1000
	MaxIterations     = 100000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default scenario configuration file name
	DefaultConfigFile = "scenario.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size for
	// scenario payloads (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
