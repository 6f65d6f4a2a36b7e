package montecarlo

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution kinds.
const (
	KindNormal     = "normal"
	KindTriangular = "triangular"
)

// Distribution parametrizes the sampling distribution for one scenario
// variable. Normal uses Mean/StdDev; Triangular uses Min/Mode/Max.
type Distribution struct {
	Variable string  `json:"variable" yaml:"variable"`
	Kind     string  `json:"kind" yaml:"kind"`
	Mean     float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	StdDev   float64 `json:"stddev,omitempty" yaml:"stddev,omitempty"`
	Min      float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Mode     float64 `json:"mode,omitempty" yaml:"mode,omitempty"`
	Max      float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Validate checks the distribution parameters.
func (d Distribution) Validate() error {
	if d.Variable == "" {
		return fmt.Errorf("distribution missing variable name")
	}
	switch d.Kind {
	case KindNormal:
		if d.StdDev < 0 {
			return fmt.Errorf("variable %s: standard deviation must be non-negative, got %f", d.Variable, d.StdDev)
		}
	case KindTriangular:
		if !(d.Min < d.Max) {
			return fmt.Errorf("variable %s: triangular min %f must be below max %f", d.Variable, d.Min, d.Max)
		}
		if d.Mode < d.Min || d.Mode > d.Max {
			return fmt.Errorf("variable %s: triangular mode %f outside [%f, %f]", d.Variable, d.Mode, d.Min, d.Max)
		}
	default:
		return fmt.Errorf("variable %s: unknown distribution kind %q", d.Variable, d.Kind)
	}
	return nil
}

// sampler returns a draw function bound to the given random source. A normal
// with zero standard deviation degenerates to a constant.
func (d Distribution) sampler(src rand.Source) func() float64 {
	switch d.Kind {
	case KindNormal:
		if d.StdDev == 0 {
			mean := d.Mean
			return func() float64 { return mean }
		}
		n := distuv.Normal{Mu: d.Mean, Sigma: d.StdDev, Src: src}
		return n.Rand
	case KindTriangular:
		t := distuv.NewTriangle(d.Min, d.Max, d.Mode, src)
		return t.Rand
	default:
		// Validate rejects unknown kinds before sampling starts.
		panic(fmt.Sprintf("unknown distribution kind %q", d.Kind))
	}
}
