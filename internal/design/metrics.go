package design

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// rootEpsilon counters floating-point truncation of exact integer
	// roots when deriving the bins-per-axis count k = floor(N^(1/n)).
	rootEpsilon = 1e-7

	// binFloor sits a hair below zero so boundary values of exactly 0
	// fall inside the first bin.
	binFloor = -1e-8
)

// binsPerAxis returns k = floor(rows^(1/cols) + rootEpsilon), the number of
// equal-width segments per axis used by both Dmax and the optimizer's
// perturbation scale.
func binsPerAxis(rows, cols int) int {
	return int(math.Pow(float64(rows), 1/float64(cols)) + rootEpsilon)
}

// Dmax measures how far the mixtures of x stray from a perfectly uniform
// fill of the unit hypercube. The cube is split into m = k^n equal
// subvolumes, rows are counted per subvolume in a fixed first-column-fastest
// enumeration, and the statistic is the largest absolute gap between the
// cumulative counts and the cumulative counts of an ideal uniform fill,
// E[j] = j*N/m. Lower is better; a single-subvolume partition (N < 2^n)
// always scores 0.
func Dmax(x *mat.Dense) (float64, error) {
	if err := Validate(x); err != nil {
		return 0, err
	}
	rows, cols := x.Dims()
	k := binsPerAxis(rows, cols)
	if k < 1 {
		return 0, &DomainError{Reason: fmt.Sprintf("cannot derive a subvolume grid for a %dx%d matrix", rows, cols)}
	}
	m := 1
	for j := 0; j < cols; j++ {
		m *= k
	}

	counts := make([]int, m)
	width := (1 - binFloor) / float64(k)
	for i := 0; i < rows; i++ {
		cell := 0
		stride := 1
		for j := 0; j < cols; j++ {
			b := int((x.At(i, j) - binFloor) / width)
			if b >= k {
				b = k - 1 // the upper edge belongs to the last bin
			}
			cell += b * stride
			stride *= k
		}
		counts[cell]++
	}

	var dmax float64
	cum := 0
	for j, c := range counts {
		cum += c
		expected := float64(j+1) * float64(rows) / float64(m)
		if d := math.Abs(float64(cum) - expected); d > dmax {
			dmax = d
		}
	}
	return dmax, nil
}

// MinDistance returns the smallest Euclidean distance over all pairs of
// distinct rows. A zero means two mixtures coincide. All N(N-1)/2 pairs are
// examined; the matrix is assumed to have passed Validate.
func MinDistance(x *mat.Dense) float64 {
	rows, _ := x.Dims()
	min := math.Inf(1)
	for i := 0; i < rows-1; i++ {
		ri := x.RawRowView(i)
		for j := i + 1; j < rows; j++ {
			if d := floats.Distance(ri, x.RawRowView(j), 2); d < min {
				min = d
			}
		}
	}
	return min
}

// MaxAbsCorrelation returns the largest absolute Pearson correlation among
// distinct component pairs. A component with zero variance makes the
// statistic undefined and surfaces as a DomainError rather than a silent 0.
func MaxAbsCorrelation(x *mat.Dense) (float64, error) {
	if err := Validate(x); err != nil {
		return 0, err
	}
	_, cols := x.Dims()
	if cols < 2 {
		return 0, &DomainError{Reason: "correlation needs at least two components"}
	}
	columns := make([][]float64, cols)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, x)
		if stat.Variance(col, nil) == 0 {
			return 0, &DomainError{Reason: fmt.Sprintf("component %d has zero variance", j)}
		}
		columns[j] = col
	}
	var max float64
	for a := 0; a < cols-1; a++ {
		for b := a + 1; b < cols; b++ {
			if r := math.Abs(stat.Correlation(columns[a], columns[b], nil)); r > max {
				max = r
			}
		}
	}
	return max, nil
}
