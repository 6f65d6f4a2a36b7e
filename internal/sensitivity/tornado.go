// Package sensitivity implements one-at-a-time ("tornado") sensitivity
// analysis over a baseline scenario: each variable is independently swept to
// a low and a high value, the full cash-flow and valuation pipeline is
// re-run, and rows are ranked by the resulting NPV swing.
package sensitivity

import (
	"fmt"
	"sort"

	"github.com/proformatools/proforma/pkg/finance"
	"go.uber.org/zap"
)

// Perturbation names one scenario variable and the low/high values to
// substitute for it while all other inputs stay at baseline.
type Perturbation struct {
	Variable string  `json:"variable" yaml:"variable"`
	Low      float64 `json:"low" yaml:"low"`
	High     float64 `json:"high" yaml:"high"`
}

// Row is one tornado-diagram row: the NPVs at the variable's low and high
// cases, and the absolute swing between them.
type Row struct {
	Variable string  `json:"variable"`
	LowNPV   float64 `json:"lowNpv"`
	HighNPV  float64 `json:"highNpv"`
	Swing    float64 `json:"swing"`
}

// Analyzer runs tornado sweeps.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates a new analyzer with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Analyze sweeps every perturbation against the baseline scenario and
// returns rows sorted by descending swing magnitude, so the most
// NPV-sensitive variable comes first. Perturbing one variable at a time
// isolates its marginal contribution; interaction effects are the Monte
// Carlo simulator's job.
//
// All perturbation specs are validated before any sweep runs, so a bad spec
// never produces a partial result.
func (a *Analyzer) Analyze(base finance.Scenario, perturbations []Perturbation) ([]Row, error) {
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("baseline scenario: %w", err)
	}
	if len(perturbations) == 0 {
		return nil, fmt.Errorf("no perturbations supplied")
	}
	for _, p := range perturbations {
		if _, err := base.BaselineValue(p.Variable); err != nil {
			return nil, err
		}
	}

	rows := make([]Row, 0, len(perturbations))
	for _, p := range perturbations {
		lowNPV, err := a.npvWith(base, p.Variable, p.Low)
		if err != nil {
			return nil, fmt.Errorf("variable %s low case: %w", p.Variable, err)
		}
		highNPV, err := a.npvWith(base, p.Variable, p.High)
		if err != nil {
			return nil, fmt.Errorf("variable %s high case: %w", p.Variable, err)
		}

		swing := highNPV - lowNPV
		if swing < 0 {
			swing = -swing
		}
		a.logger.Debug("tornado row computed",
			zap.String("op", "sensitivity.Analyze"),
			zap.String("variable", p.Variable),
			zap.Float64("lowNPV", lowNPV),
			zap.Float64("highNPV", highNPV),
			zap.Float64("swing", swing),
		)
		rows = append(rows, Row{Variable: p.Variable, LowNPV: lowNPV, HighNPV: highNPV, Swing: swing})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Swing > rows[j].Swing
	})
	return rows, nil
}

// npvWith revalues the baseline with one variable substituted.
func (a *Analyzer) npvWith(base finance.Scenario, variable string, value float64) (float64, error) {
	s := base.Clone()
	if err := finance.ApplyVariable(&s, variable, value); err != nil {
		return 0, err
	}
	return finance.EvaluateNPV(s)
}

// DefaultPerturbations derives a standard sweep from a baseline scenario:
// ±10% on money figures, ±100 basis points on rates, ±50 basis points on
// growth, and ±3 months on the construction schedule.
func DefaultPerturbations(s finance.Scenario) []Perturbation {
	clamped := func(name string, lo, hi float64) Perturbation {
		// Keep derived bounds inside the hard validation ranges.
		lo, _ = finance.ClampVariable(name, lo)
		hi, _ = finance.ClampVariable(name, hi)
		return Perturbation{Variable: name, Low: lo, High: hi}
	}
	bp := func(name string, delta float64) Perturbation {
		base, _ := s.BaselineValue(name)
		return clamped(name, base-delta, base+delta)
	}
	pct := func(name string, frac float64) Perturbation {
		base, _ := s.BaselineValue(name)
		return clamped(name, base*(1-frac), base*(1+frac))
	}
	return []Perturbation{
		pct(finance.VarTotalCost, 0.10),
		pct(finance.VarGrossIncome, 0.10),
		pct(finance.VarOperatingExpenses, 0.10),
		bp(finance.VarCapRate, 0.01),
		bp(finance.VarDiscountRate, 0.01),
		bp(finance.VarRentGrowth, 0.005),
		bp(finance.VarExpenseGrowth, 0.005),
		bp(finance.VarVacancyRate, 0.02),
		bp(finance.VarConstructionMonths, 3),
	}
}
