// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/proformatools/proforma/pkg/finance"
	"github.com/proformatools/proforma/pkg/timeline"
)

// BaselineScenario returns the reference development scenario used across
// package tests: a 10-unit project with a $4.5M construction budget,
// $400K stabilized NOI, and a 10-year operating horizon.
func BaselineScenario() finance.Scenario {
	return finance.Scenario{
		Name: "baseline",
		Timeline: timeline.Inputs{
			PredevelopmentMonths: 12,
			ConstructionMonths:   18,
			LeaseUpMonths:        6,
			OperatingYears:       10,
		},
		Cost: timeline.CostSchedule{
			TotalCost: 4500000,
		},
		Revenue: timeline.RevenueSchedule{
			AnnualGrossIncome:       500000,
			AnnualOperatingExpenses: 75000,
		},
		Assumptions: finance.EconomicAssumptions{
			DiscountRate:  0.12,
			CapRate:       0.05,
			VacancyRate:   0.05,
			TaxRate:       0.0,
			RentGrowth:    0.02,
			ExpenseGrowth: 0.025,
			CostFactor:    1.0,
		},
	}
}
