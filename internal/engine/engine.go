// Package engine ties the feasibility pipeline together: cash-flow
// generation, valuation metrics, and the optional tornado and Monte Carlo
// layers, plus the methodology notes returned for audit trails.
package engine

import (
	"fmt"

	"github.com/proformatools/proforma/internal/montecarlo"
	"github.com/proformatools/proforma/internal/sensitivity"
	"github.com/proformatools/proforma/pkg/constants"
	"github.com/proformatools/proforma/pkg/finance"
	"github.com/proformatools/proforma/pkg/timeline"
	"go.uber.org/zap"
)

// Options selects which optional sub-analyses run alongside the core
// valuation. Empty perturbation or distribution lists fall back to defaults
// derived from the baseline scenario.
type Options struct {
	Sensitivity   bool
	Perturbations []sensitivity.Perturbation

	MonteCarlo       bool
	MonteCarloConfig montecarlo.Config
}

// Analysis is the full result for one feasibility computation. Tornado and
// MonteCarlo are nil when not requested or when that sub-analysis failed;
// a failed sub-analysis adds a note and never disturbs the other sections.
type Analysis struct {
	Scenario   string              `json:"scenario,omitempty"`
	Metrics    finance.Metrics     `json:"metrics"`
	CashFlows  []timeline.CashFlow `json:"cashFlows"`
	Tornado    []sensitivity.Row   `json:"tornado,omitempty"`
	MonteCarlo *montecarlo.Result  `json:"monteCarlo,omitempty"`
	Notes      []string            `json:"notes"`
}

// Engine computes feasibility analyses. It is stateless; one engine may
// serve concurrent requests.
type Engine struct {
	logger *zap.Logger
}

// New creates a new engine with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Analyze runs the feasibility computation for one scenario. The core
// valuation must succeed; tornado and Monte Carlo failures degrade to notes
// so a malformed sensitivity range cannot take down an otherwise valid
// analysis.
func (e *Engine) Analyze(s finance.Scenario, opts Options) (*Analysis, error) {
	metrics, flows, err := finance.Evaluate(s)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Scenario:  s.Name,
		Metrics:   metrics,
		CashFlows: flows,
		Notes:     methodologyNotes(s, metrics),
	}

	if opts.Sensitivity {
		perturbations := opts.Perturbations
		if len(perturbations) == 0 {
			perturbations = sensitivity.DefaultPerturbations(s)
			analysis.Notes = append(analysis.Notes, "Sensitivity ranges derived from baseline (no explicit perturbations supplied).")
		}
		rows, err := sensitivity.NewAnalyzer(e.logger).Analyze(s, perturbations)
		if err != nil {
			e.logger.Warn("sensitivity analysis failed",
				zap.String("op", "engine.Analyze"),
				zap.Error(err),
			)
			analysis.Notes = append(analysis.Notes, fmt.Sprintf("Sensitivity analysis skipped: %v.", err))
		} else {
			analysis.Tornado = rows
		}
	}

	if opts.MonteCarlo {
		cfg := opts.MonteCarloConfig
		if len(cfg.Distributions) == 0 {
			cfg.Distributions = montecarlo.DefaultDistributions(s)
			analysis.Notes = append(analysis.Notes, "Monte Carlo distributions derived from baseline (no explicit distributions supplied).")
		}
		result, err := montecarlo.NewSimulator(e.logger).Run(s, cfg)
		if err != nil {
			e.logger.Warn("Monte Carlo simulation failed",
				zap.String("op", "engine.Analyze"),
				zap.Error(err),
			)
			analysis.Notes = append(analysis.Notes, fmt.Sprintf("Monte Carlo simulation skipped: %v.", err))
		} else {
			analysis.MonteCarlo = result
			if result.Excluded > 0 {
				analysis.Notes = append(analysis.Notes, fmt.Sprintf(
					"Monte Carlo excluded %d of %d trials as degenerate; statistics cover %d valid trials.",
					result.Excluded, result.Requested, result.Valid))
			}
			if result.Clamped > 0 {
				analysis.Notes = append(analysis.Notes, fmt.Sprintf(
					"Monte Carlo clamped %d sampled values to physical bounds (cap rate floor %.1f%%).",
					result.Clamped, constants.CapRateFloor*constants.PercentageMultiplier))
			}
		}
	}

	return analysis, nil
}

// methodologyNotes records the assumptions behind the numbers so the calling
// layer can surface an audit trail alongside the metrics.
func methodologyNotes(s finance.Scenario, metrics finance.Metrics) []string {
	notes := []string{
		fmt.Sprintf("Cash flows discounted monthly at a %.2f%% annual rate.",
			s.Assumptions.DiscountRate*constants.PercentageMultiplier),
		fmt.Sprintf("Exit value of %.0f modeled as a lump-sum sale at the final period: annualized final-period NOI capitalized at %.2f%%.",
			metrics.TerminalValue, s.Assumptions.CapRate*constants.PercentageMultiplier),
		fmt.Sprintf("Revenue escalated %.2f%%/yr and expenses %.2f%%/yr, compounded monthly from the start of operations.",
			s.Assumptions.RentGrowth*constants.PercentageMultiplier,
			s.Assumptions.ExpenseGrowth*constants.PercentageMultiplier),
		fmt.Sprintf("Vacancy loss of %.1f%% applied to gross income.",
			s.Assumptions.VacancyRate*constants.PercentageMultiplier),
	}

	if len(s.Cost.Disbursements) > 0 {
		notes = append(notes, "Capital drawn down per the supplied disbursement curve.")
	} else {
		notes = append(notes, fmt.Sprintf("Capital drawn down linearly over %d predevelopment+construction months.",
			s.Timeline.ConstructionEnd()))
	}
	if s.Assumptions.CostFactor != 1.0 {
		notes = append(notes, fmt.Sprintf("Location/quality cost factor of %.2f applied to total capital cost.",
			s.Assumptions.CostFactor))
	}
	if s.Assumptions.TaxRate > 0 {
		notes = append(notes, fmt.Sprintf("Operating income taxed at %.1f%%.",
			s.Assumptions.TaxRate*constants.PercentageMultiplier))
	}
	if s.Timeline.LeaseUpMonths == 0 {
		notes = append(notes, "No lease-up ramp: full stabilized revenue from the first operating period.")
	}
	if metrics.IRR == nil {
		notes = append(notes, "IRR undefined: the cash-flow series has no bracketed sign change or the solver did not converge.")
	}
	if metrics.PaybackYears == nil {
		notes = append(notes, "No payback within the analysis horizon.")
	}
	return notes
}
