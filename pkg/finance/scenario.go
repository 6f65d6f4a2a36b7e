package finance

import (
	"fmt"
	"math"

	"github.com/proformatools/proforma/pkg/constants"
	"github.com/proformatools/proforma/pkg/mathutil"
	"github.com/proformatools/proforma/pkg/timeline"
)

// Scenario bundles everything the engine needs to value one development:
// phase durations, the capital outflow schedule from the cost estimator, the
// stabilized operating figures from the revenue estimator, and the resolved
// economic assumptions.
type Scenario struct {
	Name        string                   `json:"name,omitempty"`
	Timeline    timeline.Inputs          `json:"timeline"`
	Cost        timeline.CostSchedule    `json:"cost"`
	Revenue     timeline.RevenueSchedule `json:"revenue"`
	Assumptions EconomicAssumptions      `json:"assumptions"`
}

// Validate checks the scenario end to end before any computation.
func (s Scenario) Validate() error {
	if err := s.Timeline.Validate(); err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	if err := s.Cost.Validate(s.Timeline); err != nil {
		return fmt.Errorf("cost schedule: %w", err)
	}
	if err := s.Revenue.Validate(); err != nil {
		return fmt.Errorf("revenue schedule: %w", err)
	}
	if err := s.Assumptions.Validate(); err != nil {
		return fmt.Errorf("assumptions: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the scenario. Perturbation and simulation
// layers mutate clones, never the baseline.
func (s Scenario) Clone() Scenario {
	out := s
	if len(s.Cost.Disbursements) > 0 {
		out.Cost.Disbursements = make([]float64, len(s.Cost.Disbursements))
		copy(out.Cost.Disbursements, s.Cost.Disbursements)
	}
	return out
}

// GenerateCashFlows runs the timeline generator for the scenario, applying
// the cost factor to the capital schedule and the assumption vacancy and
// growth rates to the operating schedule.
func (s Scenario) GenerateCashFlows() ([]timeline.CashFlow, error) {
	cost := s.Cost
	cost.TotalCost = s.Cost.TotalCost * s.Assumptions.CostFactor

	rev := s.Revenue
	rev.VacancyRate = s.Assumptions.VacancyRate

	params := timeline.Params{
		RentGrowth:    s.Assumptions.RentGrowth,
		ExpenseGrowth: s.Assumptions.ExpenseGrowth,
		TaxRate:       s.Assumptions.TaxRate,
	}
	return timeline.Generate(s.Timeline, cost, rev, params)
}

// Variable names accepted by ApplyVariable. Sensitivity perturbations and
// Monte Carlo distributions address scenario fields through these names.
const (
	VarTotalCost          = "total_cost"
	VarCostFactor         = "cost_factor"
	VarGrossIncome        = "gross_income"
	VarOperatingExpenses  = "operating_expenses"
	VarVacancyRate        = "vacancy_rate"
	VarDiscountRate       = "discount_rate"
	VarCapRate            = "cap_rate"
	VarRentGrowth         = "rent_growth"
	VarExpenseGrowth      = "expense_growth"
	VarTaxRate            = "tax_rate"
	VarConstructionMonths = "construction_months"
	VarLeaseUpMonths      = "lease_up_months"
)

// KnownVariables lists every variable name ApplyVariable accepts.
func KnownVariables() []string {
	return []string{
		VarTotalCost, VarCostFactor, VarGrossIncome, VarOperatingExpenses,
		VarVacancyRate, VarDiscountRate, VarCapRate, VarRentGrowth,
		VarExpenseGrowth, VarTaxRate, VarConstructionMonths, VarLeaseUpMonths,
	}
}

// ApplyVariable substitutes one named scenario input with the given value.
// Duration variables round to the nearest month. Unknown names are an error
// so a misspelled perturbation spec fails before any analysis runs.
func ApplyVariable(s *Scenario, name string, value float64) error {
	switch name {
	case VarTotalCost:
		s.Cost.TotalCost = value
	case VarCostFactor:
		s.Assumptions.CostFactor = value
	case VarGrossIncome:
		s.Revenue.AnnualGrossIncome = value
	case VarOperatingExpenses:
		s.Revenue.AnnualOperatingExpenses = value
	case VarVacancyRate:
		s.Assumptions.VacancyRate = value
	case VarDiscountRate:
		s.Assumptions.DiscountRate = value
	case VarCapRate:
		s.Assumptions.CapRate = value
	case VarRentGrowth:
		s.Assumptions.RentGrowth = value
	case VarExpenseGrowth:
		s.Assumptions.ExpenseGrowth = value
	case VarTaxRate:
		s.Assumptions.TaxRate = value
	case VarConstructionMonths:
		months := int(math.Round(value))
		if months < 1 {
			months = 1
		}
		s.Timeline.ConstructionMonths = months
		// An explicit drawdown curve spans predevelopment plus construction,
		// so a duration change must resize it to keep the schedule valid.
		if len(s.Cost.Disbursements) > 0 {
			s.Cost.Disbursements = resampleWeights(s.Cost.Disbursements,
				s.Timeline.PredevelopmentMonths+months)
		}
	case VarLeaseUpMonths:
		months := int(math.Round(value))
		if months < 0 {
			months = 0
		}
		s.Timeline.LeaseUpMonths = months
	default:
		return fmt.Errorf("unknown scenario variable %q", name)
	}
	return nil
}

// resampleWeights stretches or compresses a disbursement weight curve to a
// new length with nearest-period sampling. The generator renormalizes
// weights, so preserving the curve's shape is all that matters here.
func resampleWeights(weights []float64, length int) []float64 {
	if length <= 0 {
		return nil
	}
	out := make([]float64, length)
	for i := range out {
		out[i] = weights[i*len(weights)/length]
	}
	return out
}

// BaselineValue returns the scenario's current value for a named variable.
func (s Scenario) BaselineValue(name string) (float64, error) {
	switch name {
	case VarTotalCost:
		return s.Cost.TotalCost, nil
	case VarCostFactor:
		return s.Assumptions.CostFactor, nil
	case VarGrossIncome:
		return s.Revenue.AnnualGrossIncome, nil
	case VarOperatingExpenses:
		return s.Revenue.AnnualOperatingExpenses, nil
	case VarVacancyRate:
		return s.Assumptions.VacancyRate, nil
	case VarDiscountRate:
		return s.Assumptions.DiscountRate, nil
	case VarCapRate:
		return s.Assumptions.CapRate, nil
	case VarRentGrowth:
		return s.Assumptions.RentGrowth, nil
	case VarExpenseGrowth:
		return s.Assumptions.ExpenseGrowth, nil
	case VarTaxRate:
		return s.Assumptions.TaxRate, nil
	case VarConstructionMonths:
		return float64(s.Timeline.ConstructionMonths), nil
	case VarLeaseUpMonths:
		return float64(s.Timeline.LeaseUpMonths), nil
	default:
		return 0, fmt.Errorf("unknown scenario variable %q", name)
	}
}

// ClampVariable restricts a sampled value to its physically sensible range.
// Cap rate is floored so terminal value stays finite; vacancy and tax stay
// within [0, 1); discount rate stays within its hard bounds. The second
// return reports whether clamping changed the value.
func ClampVariable(name string, value float64) (float64, bool) {
	clamped := value
	switch name {
	case VarCapRate:
		if clamped < constants.CapRateFloor {
			clamped = constants.CapRateFloor
		}
	case VarVacancyRate, VarTaxRate:
		clamped = mathutil.Clamp(clamped, 0, 0.99)
	case VarDiscountRate:
		clamped = mathutil.Clamp(clamped, constants.MinDiscountRate, constants.MaxDiscountRate)
	case VarTotalCost, VarGrossIncome, VarOperatingExpenses:
		if clamped < 0 {
			clamped = 0
		}
	case VarCostFactor:
		if clamped <= 0 {
			clamped = 0.01
		}
	}
	return clamped, clamped != value
}
