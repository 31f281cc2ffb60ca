package design

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Constraint reshapes a candidate matrix without changing its dimensions.
// The result must stay inside [0,1]. Constraints never mutate their input.
type Constraint func(*mat.Dense) (*mat.Dense, error)

// QuantizeLevels snaps every entry of column j to the nearest of perCol[j]
// evenly spaced grid points in [0,1]. A single level count is broadcast to
// every column; each count must be at least 2. The input is validated first
// and left untouched.
func QuantizeLevels(x *mat.Dense, levels []int) (*mat.Dense, error) {
	if err := Validate(x); err != nil {
		return nil, err
	}
	rows, cols := x.Dims()
	perCol, err := expandLevels(levels, cols)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		steps := float64(perCol[j] - 1)
		for i := 0; i < rows; i++ {
			out.Set(i, j, math.Round(x.At(i, j)*steps)/steps)
		}
	}
	return out, nil
}

// expandLevels broadcasts a single level count across cols columns and
// rejects counts below 2.
func expandLevels(levels []int, cols int) ([]int, error) {
	var perCol []int
	switch len(levels) {
	case 1:
		perCol = make([]int, cols)
		for j := range perCol {
			perCol[j] = levels[0]
		}
	case cols:
		perCol = append([]int(nil), levels...)
	default:
		return nil, &ShapeError{Reason: fmt.Sprintf("levels length %d does not match %d components", len(levels), cols)}
	}
	for j, l := range perCol {
		if l < 2 {
			return nil, &DomainError{Reason: fmt.Sprintf("component %d: need at least 2 levels, got %d", j, l)}
		}
	}
	return perCol, nil
}

// Quantizer returns a Constraint that applies QuantizeLevels at fixed
// levels, for threading quantization through the optimizer.
func Quantizer(levels []int) Constraint {
	return func(x *mat.Dense) (*mat.Dense, error) {
		return QuantizeLevels(x, levels)
	}
}

// MapValues rescales a normalized matrix so that column j spans
// [xmin[j], xmax[j]] instead of [0,1]. The input must be a valid normalized
// matrix; the output range is whatever the bounds dictate.
func MapValues(x *mat.Dense, xmin, xmax []float64) (*mat.Dense, error) {
	if err := Validate(x); err != nil {
		return nil, err
	}
	rows, cols := x.Dims()
	if len(xmin) != cols || len(xmax) != cols {
		return nil, &ShapeError{Reason: fmt.Sprintf("bounds lengths %d/%d do not match %d components", len(xmin), len(xmax), cols)}
	}
	out := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		span := xmax[j] - xmin[j]
		for i := 0; i < rows; i++ {
			out.Set(i, j, x.At(i, j)*span+xmin[j])
		}
	}
	return out, nil
}
