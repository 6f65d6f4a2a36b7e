// Package finance defines the economic assumptions and scenario types for a
// feasibility analysis and includes the single-scenario valuation pipeline.
package finance

import (
	"fmt"

	"github.com/proformatools/proforma/pkg/constants"
)

// EconomicAssumptions holds the macroeconomic and market parameters for one
// analysis run. Values are fractions, not percentages. Assumptions are
// resolved by the calling layer before reaching the engine; every field is
// expected to be populated and the engine never applies fallbacks.
type EconomicAssumptions struct {
	DiscountRate  float64 `json:"discountRate"`
	CapRate       float64 `json:"capRate"`
	VacancyRate   float64 `json:"vacancyRate"`
	TaxRate       float64 `json:"taxRate"`
	RentGrowth    float64 `json:"rentGrowth"`
	ExpenseGrowth float64 `json:"expenseGrowth"`

	// CostFactor is the combined location/quality multiplier applied to the
	// total capital cost. 1.0 means no adjustment.
	CostFactor float64 `json:"costFactor"`
}

// Validate enforces the hard bounds on assumptions. Values in atypical but
// legal ranges are warnings, handled by the configuration layer, not here.
func (a EconomicAssumptions) Validate() error {
	if a.DiscountRate < constants.MinDiscountRate || a.DiscountRate > constants.MaxDiscountRate {
		return fmt.Errorf("discount rate %.4f outside allowed range [%.2f, %.2f]",
			a.DiscountRate, constants.MinDiscountRate, constants.MaxDiscountRate)
	}
	if a.CapRate <= 0 {
		return fmt.Errorf("cap rate must be positive, got %.4f", a.CapRate)
	}
	if a.VacancyRate < 0 || a.VacancyRate >= 1 {
		return fmt.Errorf("vacancy rate must be in [0, 1), got %.4f", a.VacancyRate)
	}
	if a.TaxRate < 0 || a.TaxRate >= 1 {
		return fmt.Errorf("tax rate must be in [0, 1), got %.4f", a.TaxRate)
	}
	if a.CostFactor <= 0 {
		return fmt.Errorf("cost factor must be positive, got %.4f", a.CostFactor)
	}
	return nil
}
