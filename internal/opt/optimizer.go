package opt

// Optimizer defines a global optimization algorithm over a box-bounded
// parameter vector.
type Optimizer interface {
	// Run minimizes eval over the box [lower, upper] in dim dimensions
	// and returns the best parameters found and their value.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}
