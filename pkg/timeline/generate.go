package timeline

import (
	"math"

	"github.com/proformatools/proforma/pkg/mathutil"
)

// Generate produces the ordered cash-flow series for a timeline. Capital is
// drawn down across predevelopment and construction per the disbursement
// curve, revenue ramps linearly from zero to the stabilized level across
// lease-up, and stabilized operations escalate at the growth rates compounded
// monthly from the start of operations.
//
// All validation happens up front; once generation starts it cannot fail.
func Generate(in Inputs, cost CostSchedule, rev RevenueSchedule, p Params) ([]CashFlow, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := cost.Validate(in); err != nil {
		return nil, err
	}
	if err := rev.Validate(); err != nil {
		return nil, err
	}

	weights := disbursementWeights(in, cost)

	monthlyRevenue := rev.EffectiveGrossIncome() / 12.0
	monthlyExpenses := rev.AnnualOperatingExpenses / 12.0
	monthlyRentGrowth := mathutil.AnnualToMonthlyRate(p.RentGrowth)
	monthlyExpenseGrowth := mathutil.AnnualToMonthlyRate(p.ExpenseGrowth)

	leaseStart := in.ConstructionEnd()
	opsStart := in.OperationsStart()

	flows := make([]CashFlow, in.TotalPeriods())
	cumulative := 0.0
	for t := range flows {
		phase := in.PhaseAt(t)

		var revenue, expenses, capex float64
		switch phase {
		case PhasePredevelopment, PhaseConstruction:
			capex = cost.TotalCost * weights[t]
		case PhaseLeaseUp:
			// Linear occupancy ramp toward stabilization. Escalation only
			// begins once operations start.
			ramp := rampFraction(t-leaseStart+1, in.LeaseUpMonths)
			revenue = monthlyRevenue * ramp
			expenses = monthlyExpenses * ramp
		case PhaseOperations:
			growth := float64(t - opsStart)
			revenue = monthlyRevenue * math.Pow(1.0+monthlyRentGrowth, growth)
			expenses = monthlyExpenses * math.Pow(1.0+monthlyExpenseGrowth, growth)
		}

		taxes := p.TaxRate * math.Max(0, revenue-expenses)
		net := revenue - expenses - taxes - capex
		cumulative += net

		flows[t] = CashFlow{
			Period:     t,
			Phase:      phase,
			Revenue:    revenue,
			Expenses:   expenses,
			Taxes:      taxes,
			CapEx:      capex,
			Net:        net,
			Cumulative: cumulative,
		}
	}

	return flows, nil
}

// rampFraction returns the occupancy fraction for the given 1-based lease-up
// month. A zero-length lease-up skips the ramp entirely, so the fraction is
// defined as 1.0 rather than dividing by zero.
func rampFraction(month, leaseUpMonths int) float64 {
	if leaseUpMonths == 0 {
		return 1.0
	}
	return float64(month) / float64(leaseUpMonths)
}

// disbursementWeights expands the cost schedule into a per-period weight for
// every period in the timeline. Periods past construction carry zero weight.
func disbursementWeights(in Inputs, cost CostSchedule) []float64 {
	weights := make([]float64, in.TotalPeriods())
	capitalPeriods := in.ConstructionEnd()

	if len(cost.Disbursements) == 0 {
		w := 1.0 / float64(capitalPeriods)
		for t := 0; t < capitalPeriods; t++ {
			weights[t] = w
		}
		return weights
	}

	sum := 0.0
	for _, w := range cost.Disbursements {
		sum += w
	}
	for t := 0; t < capitalPeriods; t++ {
		weights[t] = cost.Disbursements[t] / sum
	}
	return weights
}

// Nets extracts the net cash flow per period from a series.
func Nets(flows []CashFlow) []float64 {
	nets := make([]float64, len(flows))
	for i, cf := range flows {
		nets[i] = cf.Net
	}
	return nets
}
