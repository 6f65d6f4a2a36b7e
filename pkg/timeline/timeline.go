// Package timeline defines the development timeline and cash-flow series for
// a project and includes functions for generating the period-by-period cash
// flows from phase durations, a capital disbursement schedule, and a
// stabilized revenue schedule.
package timeline

import (
	"fmt"

	"github.com/proformatools/proforma/pkg/constants"
)

// Phase identifies which segment of the development timeline a period falls in.
type Phase string

const (
	PhasePredevelopment Phase = "predevelopment"
	PhaseConstruction   Phase = "construction"
	PhaseLeaseUp        Phase = "lease_up"
	PhaseOperations     Phase = "operations"
)

// Inputs holds the phase durations for a development timeline. Periods are
// monthly; the analysis window spans every phase plus the operating horizon.
type Inputs struct {
	PredevelopmentMonths int
	ConstructionMonths   int
	LeaseUpMonths        int
	OperatingYears       int
}

// Validate checks the timeline durations. Predevelopment, construction, and
// the operating horizon must be positive; lease-up may be zero for projects
// that stabilize immediately.
func (in Inputs) Validate() error {
	if in.PredevelopmentMonths <= 0 {
		return fmt.Errorf("predevelopment months must be positive, got %d", in.PredevelopmentMonths)
	}
	if in.ConstructionMonths <= 0 {
		return fmt.Errorf("construction months must be positive, got %d", in.ConstructionMonths)
	}
	if in.LeaseUpMonths < 0 {
		return fmt.Errorf("lease-up months must be non-negative, got %d", in.LeaseUpMonths)
	}
	if in.OperatingYears <= 0 {
		return fmt.Errorf("operating years must be positive, got %d", in.OperatingYears)
	}
	return nil
}

// TotalPeriods returns the number of monthly periods in the analysis window.
func (in Inputs) TotalPeriods() int {
	return in.PredevelopmentMonths + in.ConstructionMonths + in.LeaseUpMonths +
		in.OperatingYears*constants.MonthsPerYear
}

// ConstructionEnd returns the first period index after construction completes.
func (in Inputs) ConstructionEnd() int {
	return in.PredevelopmentMonths + in.ConstructionMonths
}

// OperationsStart returns the first period index of stabilized operations.
func (in Inputs) OperationsStart() int {
	return in.ConstructionEnd() + in.LeaseUpMonths
}

// PhaseAt maps a period index to the phase it falls in. Indexes outside the
// analysis window map to the nearest phase boundary.
func (in Inputs) PhaseAt(period int) Phase {
	switch {
	case period < in.PredevelopmentMonths:
		return PhasePredevelopment
	case period < in.ConstructionEnd():
		return PhaseConstruction
	case period < in.OperationsStart():
		return PhaseLeaseUp
	default:
		return PhaseOperations
	}
}

// CashFlow holds the cash movements for a single monthly period. Net is
// Revenue - Expenses - Taxes - CapEx; Cumulative is the running sum of Net
// from period 0.
type CashFlow struct {
	Period     int     `json:"period"`
	Phase      Phase   `json:"phase"`
	Revenue    float64 `json:"revenue"`
	Expenses   float64 `json:"expenses"`
	Taxes      float64 `json:"taxes"`
	CapEx      float64 `json:"capex"`
	Net        float64 `json:"net"`
	Cumulative float64 `json:"cumulative"`
}

// CostSchedule describes the total capital outflow and how it is drawn down
// across the predevelopment and construction phases. When Disbursements is
// empty the drawdown is linear; otherwise it must supply one weight per
// predevelopment+construction period and the weights are normalized to sum
// to one.
type CostSchedule struct {
	TotalCost     float64
	Disbursements []float64
}

// Validate checks the cost schedule against a timeline.
func (cs CostSchedule) Validate(in Inputs) error {
	if cs.TotalCost < 0 {
		return fmt.Errorf("total cost must be non-negative, got %.2f", cs.TotalCost)
	}
	if len(cs.Disbursements) == 0 {
		return nil
	}
	if want := in.ConstructionEnd(); len(cs.Disbursements) != want {
		return fmt.Errorf("disbursement curve has %d entries, timeline has %d predevelopment+construction periods",
			len(cs.Disbursements), want)
	}
	sum := 0.0
	for i, w := range cs.Disbursements {
		if w < 0 {
			return fmt.Errorf("disbursement weight %d must be non-negative, got %f", i, w)
		}
		sum += w
	}
	if sum <= 0 {
		return fmt.Errorf("disbursement weights must sum to a positive value")
	}
	return nil
}

// RevenueSchedule describes stabilized annual operating figures. Vacancy is
// applied as a fraction of gross income; the remainder less operating
// expenses is the stabilized NOI.
type RevenueSchedule struct {
	AnnualGrossIncome       float64
	AnnualOperatingExpenses float64
	VacancyRate             float64
}

// Validate checks the revenue schedule.
func (rs RevenueSchedule) Validate() error {
	if rs.AnnualGrossIncome < 0 {
		return fmt.Errorf("annual gross income must be non-negative, got %.2f", rs.AnnualGrossIncome)
	}
	if rs.AnnualOperatingExpenses < 0 {
		return fmt.Errorf("annual operating expenses must be non-negative, got %.2f", rs.AnnualOperatingExpenses)
	}
	if rs.VacancyRate < 0 || rs.VacancyRate >= 1 {
		return fmt.Errorf("vacancy rate must be in [0, 1), got %f", rs.VacancyRate)
	}
	return nil
}

// EffectiveGrossIncome returns annual gross income net of vacancy loss.
func (rs RevenueSchedule) EffectiveGrossIncome() float64 {
	return rs.AnnualGrossIncome * (1.0 - rs.VacancyRate)
}

// StabilizedNOI returns the stabilized annual net operating income.
func (rs RevenueSchedule) StabilizedNOI() float64 {
	return rs.EffectiveGrossIncome() - rs.AnnualOperatingExpenses
}

// Params holds the operating parameters applied during generation: annual
// growth rates compounded monthly from the start of operations, and the tax
// rate applied to positive operating income.
type Params struct {
	RentGrowth    float64
	ExpenseGrowth float64
	TaxRate       float64
}
