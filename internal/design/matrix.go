package design

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// RandomMatrix draws a rows-by-cols matrix with entries uniform in [0,1].
// This is the usual starting point for Optimize.
func RandomMatrix(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

// Validate checks that x is matrix-shaped with more mixtures (rows) than
// components (columns) and every entry inside [0,1]. It is a guard, not a
// transform: on success the matrix reaches the caller untouched.
//
// Shape is checked before range, so a malformed matrix never reports a
// DomainError.
func Validate(x *mat.Dense) error {
	if x == nil {
		return &ShapeError{Reason: "matrix is nil"}
	}
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return &ShapeError{Reason: fmt.Sprintf("matrix has empty dimensions %dx%d", rows, cols)}
	}
	if rows <= cols {
		return &ShapeError{Reason: fmt.Sprintf("need more mixtures than components, got %dx%d", rows, cols)}
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := x.At(i, j)
			if math.IsNaN(v) || v < 0 || v > 1 {
				return &DomainError{Reason: fmt.Sprintf("entry (%d,%d)=%g outside [0,1]", i, j, v)}
			}
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
