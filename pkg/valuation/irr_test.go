package valuation

import (
	"math"
	"testing"

	"github.com/proformatools/proforma/pkg/mathutil"
)

func TestIRRNetTextbookCase(t *testing.T) {
	// Single sign change; the known root is near 13.07% per period.
	rate, ok := IRRNet([]float64{-100, 60, 60})
	if !ok {
		t.Fatal("IRRNet() reported undefined for a conventional series")
	}
	if math.Abs(rate-0.1307) > 0.0005 {
		t.Errorf("IRRNet() = %f, expected ~0.1307", rate)
	}
}

func TestIRRNetZeroesNPV(t *testing.T) {
	tests := []struct {
		name string
		nets []float64
	}{
		{"Textbook", []float64{-100, 60, 60}},
		{"Long series", []float64{-1000, 100, 150, 200, 250, 300, 350, 400}},
		{"Near-zero return", []float64{-100, 50, 50.5}},
		{"Deeply negative rate", []float64{-100, 20, 20}},
		{"High return", []float64{-10, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := IRRNet(tt.nets)
			if !ok {
				t.Fatal("IRRNet() reported undefined")
			}
			npv, err := NPVNet(tt.nets, rate)
			if err != nil {
				t.Fatalf("NPVNet() error = %v", err)
			}
			if math.Abs(npv) > 1e-4 {
				t.Errorf("NPV at IRR %f = %f, expected ~0", rate, npv)
			}
		})
	}
}

func TestIRRNetUndefined(t *testing.T) {
	tests := []struct {
		name string
		nets []float64
	}{
		{"All outflows", []float64{-100, -50, -25}},
		{"All inflows", []float64{100, 50, 25}},
		{"All zero", []float64{0, 0, 0}},
		{"Single outflow", []float64{-100}},
		{"Non-negative with zeros", []float64{0, 10, 0, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rate, ok := IRRNet(tt.nets); ok {
				t.Errorf("IRRNet() = %f, expected undefined", rate)
			}
		})
	}
}

func TestIRRNetMultipleSignChanges(t *testing.T) {
	// Non-conventional series (two sign changes) can have multiple roots;
	// the solver must still return some root, not loop or panic.
	nets := []float64{-100, 230, -132}
	rate, ok := IRRNet(nets)
	if !ok {
		t.Fatal("IRRNet() reported undefined for a series with a bracketed root")
	}
	npv, err := NPVNet(nets, rate)
	if err != nil {
		t.Fatalf("NPVNet() error = %v", err)
	}
	if math.Abs(npv) > 1e-4 {
		t.Errorf("NPV at returned root %f = %f, expected ~0", rate, npv)
	}
}

func TestIRRAnnualizes(t *testing.T) {
	// Monthly flows: IRR() must report the annual equivalent of the
	// per-period root.
	nets := []float64{-100, 60, 60}
	monthly, ok := IRRNet(nets)
	if !ok {
		t.Fatal("IRRNet() reported undefined")
	}
	annual, ok := IRR(flowsFromNets(nets))
	if !ok {
		t.Fatal("IRR() reported undefined")
	}
	want := mathutil.MonthlyToAnnualRate(monthly)
	if math.Abs(annual-want) > 1e-9 {
		t.Errorf("IRR() = %f, expected annualized %f", annual, want)
	}
}
