package opt

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hweitzel/mixdesign/internal/design"
)

// DmaxObjective evaluates design.Dmax on a flattened rows-by-cols candidate
// vector. Entries are clamped to [0,1] before scoring; anything the metric
// still rejects scores +Inf so population optimizers steer away from it.
func DmaxObjective(rows, cols int) func([]float64) float64 {
	return func(v []float64) float64 {
		if len(v) != rows*cols {
			return math.Inf(1)
		}
		x := mat.NewDense(rows, cols, clampedUnit(v))
		d, err := design.Dmax(x)
		if err != nil {
			return math.Inf(1)
		}
		return d
	}
}

func clampedUnit(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Max(0, math.Min(1, x))
	}
	return out
}
