package design

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ProgressFunc observes the working matrix after each outer iteration.
// Observers must not mutate the matrix.
type ProgressFunc func(iteration int, x *mat.Dense)

// Optimize refines x by stochastic local search. Each outer iteration draws
// a fresh random perturbation matrix dX with entries uniform in
// [-dxmax/2, dxmax/2], dxmax = 1/k (k as in Dmax), and runs a shrinking
// line search along it: candidates X + alpha*dX are clamped to [0,1],
// passed through the constraint if present, and offered to the criterion
// with alpha halving between attempts. Because alpha decays geometrically
// the candidate converges on X, so a strict-improvement criterion either
// accepts or the shared maxIter attempt cap fires and the iteration falls
// back to X unchanged.
//
// The returned matrix is the final candidate, which by the loop invariant
// X := Xp equals the last accepted working matrix. A maxIter of 0 returns a
// copy of the input: with no outer iteration there is no candidate.
//
// The random source is explicit so callers control reproducibility.
func Optimize(rng *rand.Rand, x *mat.Dense, crit Criterion, constraint Constraint, maxIter int) (*mat.Dense, error) {
	return OptimizeWithProgress(rng, x, crit, constraint, maxIter, nil)
}

// OptimizeWithProgress is Optimize with a per-iteration observer hook. The
// hook has no effect on the search itself.
func OptimizeWithProgress(rng *rand.Rand, x *mat.Dense, crit Criterion, constraint Constraint, maxIter int, progress ProgressFunc) (*mat.Dense, error) {
	if err := Validate(x); err != nil {
		return nil, err
	}
	current := mat.DenseCopyOf(x)
	if maxIter <= 0 {
		return current, nil
	}
	rows, cols := x.Dims()
	k := binsPerAxis(rows, cols)
	if k < 1 {
		return nil, &DomainError{Reason: fmt.Sprintf("cannot derive a perturbation scale for a %dx%d matrix", rows, cols)}
	}
	dxmax := 1 / float64(k)

	var candidate *mat.Dense
	for iter := 0; iter < maxIter; iter++ {
		dx := perturbation(rng, rows, cols, dxmax)
		alpha := 1.0
		attempts := 0
		candidate = nil
		for {
			cont, err := crit.Continue(current, candidate)
			if err != nil {
				return nil, err
			}
			if !cont {
				break
			}
			if attempts >= maxIter {
				// line search exhausted: fall back to the accepted
				// matrix so the outer loop keeps making progress
				candidate = mat.DenseCopyOf(current)
				break
			}
			candidate = step(current, dx, alpha)
			if constraint != nil {
				candidate, err = constraint(candidate)
				if err != nil {
					return nil, err
				}
			}
			alpha /= 2
			attempts++
		}
		current = candidate
		if progress != nil {
			progress(iter+1, current)
		}
	}
	return candidate, nil
}

// perturbation draws one uniform step per cell from [-dxmax/2, dxmax/2].
func perturbation(rng *rand.Rand, rows, cols int, dxmax float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64() - 0.5) * dxmax
	}
	return mat.NewDense(rows, cols, data)
}

// step forms current + alpha*dx with every entry clamped to [0,1].
func step(current, dx *mat.Dense, alpha float64) *mat.Dense {
	rows, cols := current.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, clamp01(current.At(i, j)+alpha*dx.At(i, j)))
		}
	}
	return out
}
