// Package valuation provides discounted-cash-flow primitives: net present
// value, payback period, profitability index, terminal value, and an internal
// rate of return solver over monthly cash-flow series.
package valuation

import (
	"fmt"
	"math"

	"github.com/proformatools/proforma/pkg/constants"
	"github.com/proformatools/proforma/pkg/mathutil"
	"github.com/proformatools/proforma/pkg/timeline"
)

// NPVNet computes the net present value of a series of per-period net cash
// flows at the given per-period rate. The rate must be greater than -1.
func NPVNet(nets []float64, periodRate float64) (float64, error) {
	if periodRate <= -1.0 {
		return 0, fmt.Errorf("discount rate must be greater than -100%%, got %f", periodRate)
	}
	npv := 0.0
	for t, net := range nets {
		npv += net / math.Pow(1.0+periodRate, float64(t))
	}
	return npv, nil
}

// NPV computes the net present value of a monthly cash-flow series at an
// annual discount rate, discounting each monthly period at the equivalent
// monthly rate.
func NPV(flows []timeline.CashFlow, annualRate float64) (float64, error) {
	if annualRate <= -1.0 {
		return 0, fmt.Errorf("discount rate must be greater than -100%%, got %f", annualRate)
	}
	return NPVNet(timeline.Nets(flows), mathutil.AnnualToMonthlyRate(annualRate))
}

// Payback returns the payback period in years: the fractionally interpolated
// point at which cumulative cash flow first crosses from negative to
// non-negative. The second return is false when cumulative cash flow never
// turns non-negative within the horizon.
func Payback(flows []timeline.CashFlow) (float64, bool) {
	for i, cf := range flows {
		if cf.Cumulative >= 0 {
			if i == 0 || cf.Net == 0 {
				return float64(i) / constants.MonthsPerYear, true
			}
			// Interpolate between the bracketing periods.
			frac := -flows[i-1].Cumulative / cf.Net
			return (float64(i-1) + frac) / constants.MonthsPerYear, true
		}
	}
	return 0, false
}

// DiscountedPayback is Payback over present-valued cash flows at the given
// annual discount rate.
func DiscountedPayback(flows []timeline.CashFlow, annualRate float64) (float64, bool, error) {
	if annualRate <= -1.0 {
		return 0, false, fmt.Errorf("discount rate must be greater than -100%%, got %f", annualRate)
	}
	monthly := mathutil.AnnualToMonthlyRate(annualRate)
	discounted := make([]timeline.CashFlow, len(flows))
	cumulative := 0.0
	for i, cf := range flows {
		pv := cf.Net / math.Pow(1.0+monthly, float64(i))
		cumulative += pv
		discounted[i] = timeline.CashFlow{Period: i, Net: pv, Cumulative: cumulative}
	}
	years, ok := Payback(discounted)
	return years, ok, nil
}

// ProfitabilityIndex returns the ratio of the present value of all
// positive-net periods to the absolute present value of all negative-net
// periods, discounted at the annual rate. A series with no outflows has an
// undefined index and returns an error.
func ProfitabilityIndex(flows []timeline.CashFlow, annualRate float64) (float64, error) {
	if annualRate <= -1.0 {
		return 0, fmt.Errorf("discount rate must be greater than -100%%, got %f", annualRate)
	}
	monthly := mathutil.AnnualToMonthlyRate(annualRate)
	pvIn, pvOut := 0.0, 0.0
	for t, cf := range flows {
		pv := cf.Net / math.Pow(1.0+monthly, float64(t))
		if pv > 0 {
			pvIn += pv
		} else {
			pvOut -= pv
		}
	}
	if pvOut == 0 {
		return 0, fmt.Errorf("profitability index undefined: series has no outflows")
	}
	return pvIn / pvOut, nil
}

// TerminalValue returns the disposition value at the end of the operating
// horizon: the final-period NOI annualized and capitalized at the cap rate.
func TerminalValue(flows []timeline.CashFlow, capRate float64) (float64, error) {
	if capRate <= 0 {
		return 0, fmt.Errorf("cap rate must be positive, got %f", capRate)
	}
	if len(flows) == 0 {
		return 0, fmt.Errorf("cannot compute terminal value of an empty series")
	}
	final := flows[len(flows)-1]
	annualNOI := (final.Revenue - final.Expenses) * constants.MonthsPerYear
	return annualNOI / capRate, nil
}

// WithTerminalValue returns a copy of the series with the terminal value
// added as an inflow at the final period, plus the terminal value itself.
// The input series is never mutated.
//
// Modeling the exit as a single lump-sum sale at the end of the horizon is a
// deliberate convention; a Gordon-growth perpetuity would be the main
// alternative and changes NPV materially.
func WithTerminalValue(flows []timeline.CashFlow, capRate float64) ([]timeline.CashFlow, float64, error) {
	tv, err := TerminalValue(flows, capRate)
	if err != nil {
		return nil, 0, err
	}
	out := make([]timeline.CashFlow, len(flows))
	copy(out, flows)
	last := len(out) - 1
	out[last].Net += tv
	out[last].Cumulative += tv
	return out, tv, nil
}
