package finance

import (
	"fmt"

	"github.com/proformatools/proforma/pkg/timeline"
	"github.com/proformatools/proforma/pkg/valuation"
)

// Metrics is the valuation summary for one scenario. IRR and the payback
// fields are nil when the underlying quantity is undefined: an IRR with no
// real root, or a cumulative cash flow that never turns positive within the
// horizon. A nil field is a legitimate result, not a failure; the remaining
// metrics stay valid.
type Metrics struct {
	NPV                    float64  `json:"npv"`
	IRR                    *float64 `json:"irr,omitempty"`
	PaybackYears           *float64 `json:"paybackYears,omitempty"`
	DiscountedPaybackYears *float64 `json:"discountedPaybackYears,omitempty"`
	ProfitabilityIndex     float64  `json:"profitabilityIndex"`
	TerminalValue          float64  `json:"terminalValue"`
}

// Evaluate runs the full valuation pipeline for one scenario: generate the
// cash-flow series, append the terminal value at the final period, and
// compute every metric at the scenario's discount rate. The returned series
// includes the terminal value.
func Evaluate(s Scenario) (Metrics, []timeline.CashFlow, error) {
	if err := s.Validate(); err != nil {
		return Metrics{}, nil, err
	}

	flows, err := s.GenerateCashFlows()
	if err != nil {
		return Metrics{}, nil, err
	}

	flows, tv, err := valuation.WithTerminalValue(flows, s.Assumptions.CapRate)
	if err != nil {
		return Metrics{}, nil, err
	}

	npv, err := valuation.NPV(flows, s.Assumptions.DiscountRate)
	if err != nil {
		return Metrics{}, nil, fmt.Errorf("npv: %w", err)
	}

	metrics := Metrics{
		NPV:           npv,
		TerminalValue: tv,
	}

	if irr, ok := valuation.IRR(flows); ok {
		metrics.IRR = &irr
	}
	if years, ok := valuation.Payback(flows); ok {
		metrics.PaybackYears = &years
	}
	if years, ok, err := valuation.DiscountedPayback(flows, s.Assumptions.DiscountRate); err == nil && ok {
		metrics.DiscountedPaybackYears = &years
	}
	if pi, err := valuation.ProfitabilityIndex(flows, s.Assumptions.DiscountRate); err == nil {
		metrics.ProfitabilityIndex = pi
	}

	return metrics, flows, nil
}

// EvaluateNPV is the lightweight pipeline used by scenario sweeps: generate,
// append terminal value, and compute NPV only.
func EvaluateNPV(s Scenario) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	flows, err := s.GenerateCashFlows()
	if err != nil {
		return 0, err
	}
	flows, _, err = valuation.WithTerminalValue(flows, s.Assumptions.CapRate)
	if err != nil {
		return 0, err
	}
	return valuation.NPV(flows, s.Assumptions.DiscountRate)
}
