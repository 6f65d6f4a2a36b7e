package config

import (
	"fmt"

	"github.com/proformatools/proforma/internal/engine"
	"github.com/proformatools/proforma/pkg/constants"
	"github.com/proformatools/proforma/pkg/finance"
	"github.com/proformatools/proforma/pkg/timeline"
)

// Resolve turns the configuration into a fully-populated scenario. Each
// assumption resolves through an explicit precedence chain: the scenario's
// own value wins, then the configuration's defaults block, then the package
// defaults. The engine never sees a partial assumptions value and never
// applies fallbacks itself.
func (c *Configuration) Resolve() (finance.Scenario, error) {
	s := finance.Scenario{
		Name: c.Scenario.Name,
		Timeline: timeline.Inputs{
			PredevelopmentMonths: c.Scenario.Timeline.PredevelopmentMonths,
			ConstructionMonths:   c.Scenario.Timeline.ConstructionMonths,
			LeaseUpMonths:        c.Scenario.Timeline.LeaseUpMonths,
			OperatingYears:       c.Scenario.Timeline.OperatingYears,
		},
		Cost: timeline.CostSchedule{
			TotalCost:     c.Scenario.Cost.TotalCost,
			Disbursements: c.Scenario.Cost.Disbursements,
		},
		Revenue: timeline.RevenueSchedule{
			AnnualGrossIncome:       c.Scenario.Revenue.AnnualGrossIncome,
			AnnualOperatingExpenses: c.Scenario.Revenue.AnnualOperatingExpenses,
		},
		Assumptions: finance.EconomicAssumptions{
			DiscountRate:  resolve(c.Scenario.Assumptions.DiscountRate, c.Defaults.DiscountRate, constants.DefaultDiscountRate),
			CapRate:       resolve(c.Scenario.Assumptions.CapRate, c.Defaults.CapRate, constants.DefaultCapRate),
			VacancyRate:   resolve(c.Scenario.Assumptions.VacancyRate, c.Defaults.VacancyRate, constants.DefaultVacancyRate),
			TaxRate:       resolve(c.Scenario.Assumptions.TaxRate, c.Defaults.TaxRate, constants.DefaultTaxRate),
			RentGrowth:    resolve(c.Scenario.Assumptions.RentGrowth, c.Defaults.RentGrowth, constants.DefaultRentGrowth),
			ExpenseGrowth: resolve(c.Scenario.Assumptions.ExpenseGrowth, c.Defaults.ExpenseGrowth, constants.DefaultExpenseGrowth),
			CostFactor:    resolve(c.Scenario.Assumptions.CostFactor, c.Defaults.CostFactor, constants.DefaultCostFactor),
		},
	}

	if err := s.Validate(); err != nil {
		return finance.Scenario{}, fmt.Errorf("scenario %q: %w", c.Scenario.Name, err)
	}
	return s, nil
}

// resolve applies the precedence chain: scenario value, defaults block,
// package default.
func resolve(scenario, defaults *float64, packageDefault float64) float64 {
	if scenario != nil {
		return *scenario
	}
	if defaults != nil {
		return *defaults
	}
	return packageDefault
}

// EngineOptions translates the analysis block into engine options.
func (c *Configuration) EngineOptions() engine.Options {
	opts := engine.Options{
		Sensitivity:   c.Analysis.Sensitivity,
		Perturbations: c.Analysis.Perturbations,
		MonteCarlo:    c.Analysis.MonteCarlo,
	}
	opts.MonteCarloConfig.Iterations = c.Analysis.Iterations
	opts.MonteCarloConfig.Seed = c.Analysis.Seed
	opts.MonteCarloConfig.Distributions = c.Analysis.Distributions
	return opts
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings for values that are legal but outside typical market
// ranges. Hard validation failures surface from Resolve, not here.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	s, err := c.Resolve()
	if err != nil {
		// Resolution itself will fail loudly; nothing to warn about.
		return warnings
	}

	a := s.Assumptions
	if a.DiscountRate < constants.TypicalDiscountRateLow || a.DiscountRate > constants.TypicalDiscountRateHigh {
		warnings = append(warnings, fmt.Sprintf(
			"Discount rate %.2f%% is outside the typical %.0f%%-%.0f%% underwriting band",
			a.DiscountRate*100, constants.TypicalDiscountRateLow*100, constants.TypicalDiscountRateHigh*100))
	}
	if a.CapRate < constants.TypicalCapRateLow || a.CapRate > constants.TypicalCapRateHigh {
		warnings = append(warnings, fmt.Sprintf(
			"Cap rate %.2f%% is outside the typical %.0f%%-%.0f%% market band",
			a.CapRate*100, constants.TypicalCapRateLow*100, constants.TypicalCapRateHigh*100))
	}
	if s.Timeline.LeaseUpMonths == 0 {
		warnings = append(warnings, "Zero lease-up: revenue jumps straight to the stabilized level at the first operating period")
	}
	if s.Timeline.OperatingYears > 30 {
		warnings = append(warnings, fmt.Sprintf(
			"Operating horizon of %d years is unusually long for a disposition-based exit model",
			s.Timeline.OperatingYears))
	}
	if s.Revenue.StabilizedNOI() <= 0 {
		warnings = append(warnings, "Stabilized NOI is non-positive; the project never generates operating profit")
	}

	return warnings
}
