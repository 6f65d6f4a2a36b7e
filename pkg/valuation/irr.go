package valuation

import (
	"math"

	"github.com/proformatools/proforma/pkg/constants"
	"github.com/proformatools/proforma/pkg/mathutil"
	"github.com/proformatools/proforma/pkg/timeline"
)

// irrScanStep is the grid step used when the bracket endpoints share a sign
// and an interior sign change must be located.
const irrScanStep = 0.05

// IRRNet finds the per-period rate at which the net present value of the
// series is zero. The solver first brackets a sign change over a wide rate
// range, scanning upward from the low end when the endpoints share a sign,
// then iterates Newton-Raphson inside the bracket, falling back to bisection
// whenever a Newton step leaves the bracket or the derivative vanishes. The
// second return is false when no finite IRR exists: the series has no sign
// change anywhere in range (all outflows or all inflows), or the solver
// exhausts its iteration cap without converging.
//
// Non-conventional series with multiple sign changes may have multiple
// roots; this solver reports the first root found bracketing from the low
// end of the search range. That is a known limitation, not an error.
func IRRNet(nets []float64) (float64, bool) {
	if !hasSignChange(nets) {
		return 0, false
	}
	a, b, ok := bracketRoot(nets)
	if !ok {
		return 0, false
	}
	return solveBracket(nets, a, b)
}

// hasSignChange reports whether the series contains both an inflow and an
// outflow. Without both there is no finite IRR.
func hasSignChange(nets []float64) bool {
	hasPos, hasNeg := false, false
	for _, net := range nets {
		if net > 0 {
			hasPos = true
		} else if net < 0 {
			hasNeg = true
		}
	}
	return hasPos && hasNeg
}

// IRR finds the annualized internal rate of return of a monthly cash-flow
// series. The second return is false when no finite IRR exists.
func IRR(flows []timeline.CashFlow) (float64, bool) {
	monthly, ok := IRRNet(timeline.Nets(flows))
	if !ok {
		return 0, false
	}
	return mathutil.MonthlyToAnnualRate(monthly), true
}

// bracketRoot locates an interval within the search range across which NPV
// changes sign. It checks the full range first; when both endpoints share a
// sign (which also happens for series with an even number of sign changes)
// it walks a grid from the low end looking for the first interior crossing.
func bracketRoot(nets []float64) (float64, float64, bool) {
	lo, hi := constants.IRRBracketLow, constants.IRRBracketHigh
	fLo := npvAt(nets, lo)
	fHi := npvAt(nets, hi)

	if !sameSign(fLo, fHi) {
		return lo, hi, true
	}

	prev, fPrev := lo, fLo
	for r := lo + irrScanStep; r < hi; r += irrScanStep {
		f := npvAt(nets, r)
		if f == 0 || !sameSign(fPrev, f) {
			return prev, r, true
		}
		prev, fPrev = r, f
	}
	return 0, 0, false
}

// solveBracket runs the hybrid Newton-Raphson/bisection iteration on a
// bracket known to contain a sign change.
func solveBracket(nets []float64, lo, hi float64) (float64, bool) {
	fLo := npvAt(nets, lo)
	if math.Abs(fLo) <= constants.IRRNPVTolerance {
		return lo, true
	}

	rate := constants.IRRInitialGuess
	if rate <= lo || rate >= hi {
		rate = (lo + hi) / 2.0
	}

	for i := 0; i < constants.IRRMaxIterations; i++ {
		f := npvAt(nets, rate)
		if math.Abs(f) <= constants.IRRNPVTolerance {
			return rate, true
		}

		// Tighten the bracket around the current point.
		if sameSign(f, fLo) {
			lo, fLo = rate, f
		} else {
			hi = rate
		}

		next := rate
		if d := npvDerivativeAt(nets, rate); d != 0 {
			next = rate - f/d
		}
		if next <= lo || next >= hi || math.IsNaN(next) || math.IsInf(next, 0) {
			// Newton diverged; bisect instead.
			next = (lo + hi) / 2.0
		}
		if hi-lo < 1e-12 {
			// Bracket collapsed onto the root.
			return next, math.Abs(npvAt(nets, next)) <= constants.IRRNPVTolerance
		}
		rate = next
	}

	return 0, false
}

// npvAt evaluates NPV at a rate known to be within the solver's search range.
func npvAt(nets []float64, rate float64) float64 {
	npv := 0.0
	for t, net := range nets {
		npv += net / math.Pow(1.0+rate, float64(t))
	}
	return npv
}

// npvDerivativeAt evaluates dNPV/drate analytically.
func npvDerivativeAt(nets []float64, rate float64) float64 {
	d := 0.0
	for t, net := range nets {
		if t == 0 {
			continue
		}
		d -= float64(t) * net / math.Pow(1.0+rate, float64(t+1))
	}
	return d
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
}
