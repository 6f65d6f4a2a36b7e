// Package montecarlo implements the probabilistic risk simulation: N
// independent joint draws over parametrized assumption distributions, a full
// cash-flow/valuation pipeline run per trial, and statistical aggregation of
// the resulting NPV and IRR distributions.
package montecarlo

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/proformatools/proforma/pkg/constants"
	"github.com/proformatools/proforma/pkg/finance"
	"github.com/proformatools/proforma/pkg/valuation"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Config controls one simulation run. A zero Seed draws a fresh seed from
// the clock; supply an explicit non-zero seed for reproducible results.
// Iterations outside the allowed range are clamped, not rejected.
type Config struct {
	Iterations    int            `json:"iterations" yaml:"iterations"`
	Seed          uint64         `json:"seed,omitempty" yaml:"seed,omitempty"`
	Workers       int            `json:"workers,omitempty" yaml:"workers,omitempty"`
	Distributions []Distribution `json:"distributions" yaml:"distributions"`
}

// Percentiles holds the fixed percentile set reported over the NPV
// distribution.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// IRRSummary summarizes the paired IRR distribution across trials where an
// IRR was defined.
type IRRSummary struct {
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stddev"`
	Defined int     `json:"defined"`
}

// Result aggregates a simulation run. Valid is the effective trial count
// after exclusions; statistics are computed over valid trials only, so an
// excluded degenerate trial never silently skews the reported distribution.
type Result struct {
	Requested    int         `json:"requested"`
	Valid        int         `json:"valid"`
	Excluded     int         `json:"excluded"`
	Clamped      int         `json:"clamped"`
	Seed         uint64      `json:"seed"`
	MeanNPV      float64     `json:"meanNpv"`
	StdDevNPV    float64     `json:"stddevNpv"`
	ProbPositive float64     `json:"probPositive"`
	Percentiles  Percentiles `json:"percentiles"`
	IRR          *IRRSummary `json:"irr,omitempty"`
}

// Simulator runs Monte Carlo simulations. It holds no state between runs;
// the random source for each run is created from the run's seed, never from
// process-global random state, so concurrent runs cannot interfere with each
// other's reproducibility.
type Simulator struct {
	logger *zap.Logger
}

// NewSimulator creates a new simulator with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewSimulator(logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{logger: logger}
}

// Run executes the simulation against a baseline scenario. Sampling is a
// single serial pass over one seeded source, so results depend only on the
// seed and inputs; trial evaluation is fanned out across workers, each trial
// writing its result by index, which keeps aggregation independent of
// scheduling order.
func (sim *Simulator) Run(base finance.Scenario, cfg Config) (*Result, error) {
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("baseline scenario: %w", err)
	}
	if len(cfg.Distributions) == 0 {
		return nil, fmt.Errorf("no distributions supplied")
	}
	for _, d := range cfg.Distributions {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, err := base.BaselineValue(d.Variable); err != nil {
			return nil, err
		}
	}

	iterations := cfg.Iterations
	if iterations == 0 {
		iterations = constants.DefaultIterations
	}
	if iterations < constants.MinIterations {
		iterations = constants.MinIterations
	}
	if iterations > constants.MaxIterations {
		iterations = constants.MaxIterations
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	draws, clamped := sim.sample(cfg.Distributions, iterations, seed)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > iterations {
		workers = iterations
	}

	npvs := make([]float64, iterations)
	irrs := make([]float64, iterations)
	irrOK := make([]bool, iterations)
	excluded := make([]bool, iterations)

	var g errgroup.Group
	chunk := (iterations + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > iterations {
			end = iterations
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				npv, irr, ok, err := evalTrial(base, cfg.Distributions, draws[i])
				if err != nil || math.IsNaN(npv) || math.IsInf(npv, 0) {
					excluded[i] = true
					continue
				}
				npvs[i] = npv
				irrs[i] = irr
				irrOK[i] = ok
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := aggregate(npvs, irrs, irrOK, excluded)
	if err != nil {
		return nil, err
	}
	result.Requested = iterations
	result.Clamped = clamped
	result.Seed = seed

	sim.logger.Debug("simulation complete",
		zap.String("op", "montecarlo.Run"),
		zap.Int("requested", result.Requested),
		zap.Int("valid", result.Valid),
		zap.Int("excluded", result.Excluded),
		zap.Uint64("seed", seed),
	)
	return result, nil
}

// sample draws the joint parameter matrix for every trial in one serial
// pass. Draws outside a variable's physically sensible range are clamped at
// the boundary (a sampled cap rate must never reach zero); the clamp count
// is reported rather than hidden.
func (sim *Simulator) sample(dists []Distribution, iterations int, seed uint64) ([][]float64, int) {
	src := rand.NewSource(seed)
	samplers := make([]func() float64, len(dists))
	for j, d := range dists {
		samplers[j] = d.sampler(src)
	}

	clamped := 0
	draws := make([][]float64, iterations)
	for i := range draws {
		row := make([]float64, len(dists))
		for j := range dists {
			value, wasClamped := finance.ClampVariable(dists[j].Variable, samplers[j]())
			if wasClamped {
				clamped++
			}
			row[j] = value
		}
		draws[i] = row
	}
	return draws, clamped
}

// evalTrial applies one joint sample to a clone of the baseline and runs the
// generation and valuation pipeline.
func evalTrial(base finance.Scenario, dists []Distribution, row []float64) (float64, float64, bool, error) {
	s := base.Clone()
	for j, d := range dists {
		if err := finance.ApplyVariable(&s, d.Variable, row[j]); err != nil {
			return 0, 0, false, err
		}
	}

	flows, err := s.GenerateCashFlows()
	if err != nil {
		return 0, 0, false, err
	}
	flows, _, err = valuation.WithTerminalValue(flows, s.Assumptions.CapRate)
	if err != nil {
		return 0, 0, false, err
	}
	npv, err := valuation.NPV(flows, s.Assumptions.DiscountRate)
	if err != nil {
		return 0, 0, false, err
	}
	irr, ok := valuation.IRR(flows)
	return npv, irr, ok, nil
}

// aggregate reduces per-trial results into the reported distribution
// statistics. Trial order is fixed, so aggregation is deterministic.
func aggregate(npvs, irrs []float64, irrOK, excluded []bool) (*Result, error) {
	valid := make([]float64, 0, len(npvs))
	definedIRRs := make([]float64, 0, len(npvs))
	positive := 0
	for i, npv := range npvs {
		if excluded[i] {
			continue
		}
		valid = append(valid, npv)
		if npv > 0 {
			positive++
		}
		if irrOK[i] {
			definedIRRs = append(definedIRRs, irrs[i])
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("all %d trials were degenerate", len(npvs))
	}

	sorted := make([]float64, len(valid))
	copy(sorted, valid)
	sort.Float64s(sorted)

	result := &Result{
		Valid:        len(valid),
		Excluded:     len(npvs) - len(valid),
		MeanNPV:      stat.Mean(valid, nil),
		ProbPositive: float64(positive) / float64(len(valid)),
		Percentiles: Percentiles{
			P10: stat.Quantile(0.10, stat.Empirical, sorted, nil),
			P25: stat.Quantile(0.25, stat.Empirical, sorted, nil),
			P50: stat.Quantile(0.50, stat.Empirical, sorted, nil),
			P75: stat.Quantile(0.75, stat.Empirical, sorted, nil),
			P90: stat.Quantile(0.90, stat.Empirical, sorted, nil),
		},
	}
	if len(valid) > 1 {
		result.StdDevNPV = stat.StdDev(valid, nil)
	}

	if len(definedIRRs) > 0 {
		summary := &IRRSummary{
			Mean:    stat.Mean(definedIRRs, nil),
			Defined: len(definedIRRs),
		}
		if len(definedIRRs) > 1 {
			summary.StdDev = stat.StdDev(definedIRRs, nil)
		}
		result.IRR = summary
	}
	return result, nil
}

// DefaultDistributions derives a standard risk parametrization from a
// baseline scenario: normally distributed cost escalation and rent growth, a
// triangular cap rate centered on the baseline, and a normal construction
// schedule delay.
func DefaultDistributions(s finance.Scenario) []Distribution {
	capRate := s.Assumptions.CapRate
	return []Distribution{
		{Variable: finance.VarCostFactor, Kind: KindNormal, Mean: s.Assumptions.CostFactor, StdDev: 0.10},
		{Variable: finance.VarRentGrowth, Kind: KindNormal, Mean: s.Assumptions.RentGrowth, StdDev: 0.01},
		{Variable: finance.VarCapRate, Kind: KindTriangular, Min: capRate - 0.01, Mode: capRate, Max: capRate + 0.015},
		{Variable: finance.VarConstructionMonths, Kind: KindNormal, Mean: float64(s.Timeline.ConstructionMonths), StdDev: 2},
	}
}
