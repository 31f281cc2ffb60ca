package design

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Report summarizes the quality of a design matrix.
type Report struct {
	// Dmax is the binned cumulative-deviation statistic; lower is better.
	Dmax float64 `json:"dmax"`

	// MinDistance is the smallest pairwise mixture distance in normalized
	// space; higher is better.
	MinDistance float64 `json:"minDistance"`

	// MaxAbsCorrelation is the largest absolute inter-component
	// correlation; lower is better.
	MaxAbsCorrelation float64 `json:"maxAbsCorrelation"`
}

// QualityReport computes the three quality statistics on a per-column
// min-max renormalized copy of x, so designs in different concentration
// units stay comparable. The renormalization changes all three statistics
// versus computing them on raw units; callers comparing reports must use
// the same convention throughout. A constant column cannot be renormalized
// and surfaces as a DomainError.
func QualityReport(x *mat.Dense) (Report, error) {
	if x == nil {
		return Report{}, &ShapeError{Reason: "matrix is nil"}
	}
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return Report{}, &ShapeError{Reason: fmt.Sprintf("matrix has empty dimensions %dx%d", rows, cols)}
	}

	norm := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, x)
		lo := floats.Min(col)
		hi := floats.Max(col)
		if hi == lo {
			return Report{}, &DomainError{Reason: fmt.Sprintf("component %d is constant, cannot renormalize", j)}
		}
		for i := 0; i < rows; i++ {
			norm.Set(i, j, (col[i]-lo)/(hi-lo))
		}
	}

	d, err := Dmax(norm)
	if err != nil {
		return Report{}, err
	}
	c, err := MaxAbsCorrelation(norm)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Dmax:              d,
		MinDistance:       MinDistance(norm),
		MaxAbsCorrelation: c,
	}, nil
}
