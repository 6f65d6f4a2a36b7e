package montecarlo

import (
	"testing"

	"github.com/proformatools/proforma/pkg/finance"
	"github.com/proformatools/proforma/pkg/testutil"
	"go.uber.org/zap"
)

func testConfig(seed uint64) Config {
	return Config{
		Iterations: 1000,
		Seed:       seed,
		Distributions: []Distribution{
			{Variable: finance.VarCostFactor, Kind: KindNormal, Mean: 1.0, StdDev: 0.10},
			{Variable: finance.VarRentGrowth, Kind: KindNormal, Mean: 0.02, StdDev: 0.01},
			{Variable: finance.VarCapRate, Kind: KindTriangular, Min: 0.04, Mode: 0.05, Max: 0.065},
		},
	}
}

func TestRunBaseline(t *testing.T) {
	sim := NewSimulator(zap.NewNop())
	base := testutil.BaselineScenario()

	result, err := sim.Run(base, testConfig(42))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Requested != 1000 {
		t.Errorf("requested = %d, expected 1000", result.Requested)
	}
	if result.Valid+result.Excluded != result.Requested {
		t.Errorf("valid %d + excluded %d != requested %d",
			result.Valid, result.Excluded, result.Requested)
	}
	if result.Valid == 0 {
		t.Fatal("no valid trials")
	}
	if result.ProbPositive < 0 || result.ProbPositive > 1 {
		t.Errorf("probability of positive NPV = %f, expected within [0, 1]", result.ProbPositive)
	}
	if result.StdDevNPV <= 0 {
		t.Errorf("stddev = %f, expected positive for dispersed inputs", result.StdDevNPV)
	}

	p := result.Percentiles
	if !(p.P10 <= p.P25 && p.P25 <= p.P50 && p.P50 <= p.P75 && p.P75 <= p.P90) {
		t.Errorf("percentiles not ordered: %+v", p)
	}
	if p.P10 > result.MeanNPV+5*result.StdDevNPV || p.P90 < result.MeanNPV-5*result.StdDevNPV {
		t.Errorf("percentiles inconsistent with mean/stddev: %+v vs mean %f", p, result.MeanNPV)
	}
}

func TestRunDeterministicWithSeed(t *testing.T) {
	sim := NewSimulator(nil)
	base := testutil.BaselineScenario()

	first, err := sim.Run(base, testConfig(12345))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := sim.Run(base, testConfig(12345))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if first.MeanNPV != second.MeanNPV {
		t.Errorf("means differ across identical seeded runs: %f vs %f", first.MeanNPV, second.MeanNPV)
	}
	if first.StdDevNPV != second.StdDevNPV {
		t.Errorf("stddevs differ: %f vs %f", first.StdDevNPV, second.StdDevNPV)
	}
	if first.Percentiles != second.Percentiles {
		t.Errorf("percentiles differ: %+v vs %+v", first.Percentiles, second.Percentiles)
	}
	if first.ProbPositive != second.ProbPositive {
		t.Errorf("probabilities differ: %f vs %f", first.ProbPositive, second.ProbPositive)
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	sim := NewSimulator(nil)
	base := testutil.BaselineScenario()

	one := testConfig(7)
	one.Workers = 1
	many := testConfig(7)
	many.Workers = 8

	serial, err := sim.Run(base, one)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	parallel, err := sim.Run(base, many)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if serial.MeanNPV != parallel.MeanNPV || serial.Percentiles != parallel.Percentiles {
		t.Errorf("results depend on worker count: %+v vs %+v", serial, parallel)
	}
}

func TestRunDifferentSeedsDiffer(t *testing.T) {
	sim := NewSimulator(nil)
	base := testutil.BaselineScenario()

	a, err := sim.Run(base, testConfig(1))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	b, err := sim.Run(base, testConfig(2))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if a.MeanNPV == b.MeanNPV {
		t.Errorf("different seeds produced identical means: %f", a.MeanNPV)
	}
}

func TestRunProbPositiveMonotoneInRentGrowth(t *testing.T) {
	sim := NewSimulator(nil)
	base := testutil.BaselineScenario()

	low := testConfig(99)
	high := testConfig(99)
	for i := range high.Distributions {
		if high.Distributions[i].Variable == finance.VarRentGrowth {
			high.Distributions[i].Mean += 0.02
		}
	}

	lowResult, err := sim.Run(base, low)
	if err != nil {
		t.Fatalf("Run(low) error = %v", err)
	}
	highResult, err := sim.Run(base, high)
	if err != nil {
		t.Fatalf("Run(high) error = %v", err)
	}

	if highResult.ProbPositive < lowResult.ProbPositive {
		t.Errorf("P(NPV>0) fell from %f to %f as rent growth rose",
			lowResult.ProbPositive, highResult.ProbPositive)
	}
	if highResult.MeanNPV <= lowResult.MeanNPV {
		t.Errorf("mean NPV fell from %f to %f as rent growth rose",
			lowResult.MeanNPV, highResult.MeanNPV)
	}
}

func TestRunClampsDegenerateCapRates(t *testing.T) {
	sim := NewSimulator(nil)
	base := testutil.BaselineScenario()

	cfg := Config{
		Iterations: 1000,
		Seed:       5,
		Distributions: []Distribution{
			// Mean at zero puts roughly half the draws at or below the cap
			// rate floor.
			{Variable: finance.VarCapRate, Kind: KindNormal, Mean: 0.0, StdDev: 0.02},
		},
	}

	result, err := sim.Run(base, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Clamped == 0 {
		t.Error("expected clamped draws with a zero-mean cap rate distribution")
	}
	if result.Valid+result.Excluded != result.Requested {
		t.Errorf("trial accounting broken: %+v", result)
	}
	if result.Valid == 0 {
		t.Error("clamping should keep trials valid, got none")
	}
}

func TestRunIterationBoundsClamped(t *testing.T) {
	sim := NewSimulator(nil)
	base := testutil.BaselineScenario()

	cfg := testConfig(3)
	cfg.Iterations = 10
	result, err := sim.Run(base, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Requested != 1000 {
		t.Errorf("requested = %d, expected clamp up to 1000", result.Requested)
	}
}

func TestRunValidation(t *testing.T) {
	sim := NewSimulator(nil)
	base := testutil.BaselineScenario()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"No distributions", Config{Iterations: 1000}},
		{"Unknown variable", Config{Iterations: 1000, Distributions: []Distribution{
			{Variable: "loan_rate", Kind: KindNormal, Mean: 1, StdDev: 0.1},
		}}},
		{"Unknown kind", Config{Iterations: 1000, Distributions: []Distribution{
			{Variable: finance.VarCapRate, Kind: "lognormal", Mean: 1},
		}}},
		{"Triangular min above max", Config{Iterations: 1000, Distributions: []Distribution{
			{Variable: finance.VarCapRate, Kind: KindTriangular, Min: 0.08, Mode: 0.05, Max: 0.04},
		}}},
		{"Negative stddev", Config{Iterations: 1000, Distributions: []Distribution{
			{Variable: finance.VarCapRate, Kind: KindNormal, Mean: 0.05, StdDev: -1},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.Run(base, tt.cfg); err == nil {
				t.Error("Run() expected error, got nil")
			}
		})
	}
}

func TestRunDoesNotMutateBaseline(t *testing.T) {
	sim := NewSimulator(nil)
	base := testutil.BaselineScenario()
	originalCap := base.Assumptions.CapRate
	originalMonths := base.Timeline.ConstructionMonths

	if _, err := sim.Run(base, testConfig(11)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if base.Assumptions.CapRate != originalCap || base.Timeline.ConstructionMonths != originalMonths {
		t.Error("baseline scenario mutated by simulation")
	}
}

func TestDefaultDistributionsAreValid(t *testing.T) {
	base := testutil.BaselineScenario()
	dists := DefaultDistributions(base)
	if len(dists) == 0 {
		t.Fatal("DefaultDistributions() returned nothing")
	}
	for _, d := range dists {
		if err := d.Validate(); err != nil {
			t.Errorf("default distribution %s invalid: %v", d.Variable, err)
		}
	}

	sim := NewSimulator(nil)
	cfg := Config{Iterations: 1000, Seed: 8, Distributions: dists}
	if _, err := sim.Run(base, cfg); err != nil {
		t.Errorf("Run() with default distributions error = %v", err)
	}
}
