package opt

import (
	"math/rand"
)

// AdaptiveAdapter runs the same stochastic local search used for design
// refinement behind the generic Optimizer interface: random perturbations
// with a shrinking step size, accepting only improvements. Useful when a
// caller wants the in-house search against an arbitrary objective.
type AdaptiveAdapter struct {
	maxIters int
	seed     int64
}

// NewAdaptive creates an adaptive local-search adapter.
func NewAdaptive(maxIters int, seed int64) Optimizer {
	return &AdaptiveAdapter{
		maxIters: maxIters,
		seed:     seed,
	}
}

// Run executes the local search from the box midpoint.
func (a *AdaptiveAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	rng := rand.New(rand.NewSource(a.seed))

	current := make([]float64, dim)
	for i := range current {
		current[i] = lower[i] + rng.Float64()*(upper[i]-lower[i])
	}
	cost := eval(current)

	candidate := make([]float64, dim)
	for iter := 0; iter < a.maxIters; iter++ {
		// step scale shrinks as the search matures
		scale := 1.0 / float64(iter+2)
		alpha := 1.0
		for attempt := 0; attempt < a.maxIters; attempt++ {
			for i := range candidate {
				span := upper[i] - lower[i]
				v := current[i] + alpha*scale*span*(rng.Float64()-0.5)
				if v < lower[i] {
					v = lower[i]
				}
				if v > upper[i] {
					v = upper[i]
				}
				candidate[i] = v
			}
			if c := eval(candidate); c < cost {
				copy(current, candidate)
				cost = c
				break
			}
			alpha /= 2
		}
	}

	return current, cost
}
