package design

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// DefaultMaxIter is the outer iteration budget used when a request leaves
// MaxIter unset.
const DefaultMaxIter = 30

// StageProgressFunc observes optimization progress across the two
// generation stages. stage is 1 or 2, iteration counts within the stage.
type StageProgressFunc func(stage, iteration int, x *mat.Dense)

// GenerateConfig describes a design request.
type GenerateConfig struct {
	// Mixtures is the number of rows N; must exceed the component count.
	Mixtures int

	// Xmin and Xmax hold one concentration bound pair per component,
	// Xmin[j] < Xmax[j].
	Xmin []float64
	Xmax []float64

	// Names labels the components; empty synthesizes C1..Cn.
	Names []string

	// Levels optionally restricts each component to a fixed number of
	// evenly spaced concentration values. One entry broadcasts to all
	// components; each entry must be at least 2.
	Levels []int

	// MaxIter is the outer iteration budget per stage; 0 means
	// DefaultMaxIter.
	MaxIter int

	// Progress, when set, observes every outer iteration of both stages.
	Progress StageProgressFunc
}

// Check validates the request and resolves the component names. It reports
// user-facing shape and bound problems before the core is ever invoked.
func (cfg GenerateConfig) Check() ([]string, error) {
	cols := len(cfg.Xmin)
	if cols == 0 {
		return nil, &ShapeError{Reason: "no component bounds given"}
	}
	if len(cfg.Xmax) != cols {
		return nil, &ShapeError{Reason: fmt.Sprintf("xmin has %d entries but xmax has %d", cols, len(cfg.Xmax))}
	}
	for j := range cfg.Xmin {
		if cfg.Xmin[j] >= cfg.Xmax[j] {
			return nil, &DomainError{Reason: fmt.Sprintf("component %d: min %g is not below max %g", j, cfg.Xmin[j], cfg.Xmax[j])}
		}
	}
	if cfg.Mixtures <= cols {
		return nil, &ShapeError{Reason: fmt.Sprintf("need more than %d mixtures for %d components, got %d", cols, cols, cfg.Mixtures)}
	}
	names := cfg.Names
	if len(names) == 0 {
		names = defaultNames(cols)
	}
	if len(names) != cols {
		return nil, &ShapeError{Reason: fmt.Sprintf("%d names given for %d components", len(names), cols)}
	}
	if len(cfg.Levels) > 0 {
		if _, err := expandLevels(cfg.Levels, cols); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// Design is a finished, labeled design matrix.
type Design struct {
	// Names labels the columns of Matrix.
	Names []string

	// Matrix holds concentration values, column j in [Xmin[j], Xmax[j]].
	Matrix *mat.Dense

	// Normalized is the optimized [0,1] matrix Matrix was mapped from.
	Normalized *mat.Dense

	// Report holds the quality statistics of the finished design.
	Report Report
}

// Generate builds an optimized calibration design: a random start is
// refined in two stages, the first spreading mixtures evenly across the
// concentration space (Dmax), the second continuing to improve Dmax while
// also pushing mixtures apart (Dmax OR minimum distance). Quantization, if
// requested, is threaded through both stages as an in-loop constraint. The
// result is rescaled to concentration units and labeled.
func Generate(rng *rand.Rand, cfg GenerateConfig) (*Design, error) {
	names, err := cfg.Check()
	if err != nil {
		return nil, err
	}
	cols := len(cfg.Xmin)
	maxIter := cfg.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	var constraint Constraint
	if len(cfg.Levels) > 0 {
		constraint = Quantizer(cfg.Levels)
	}

	x := RandomMatrix(rng, cfg.Mixtures, cols)
	x, err = OptimizeWithProgress(rng, x, DeviationCriterion{}, constraint, maxIter, stageProgress(cfg.Progress, 1))
	if err != nil {
		return nil, err
	}
	x, err = OptimizeWithProgress(rng, x, AnyOf(DeviationCriterion{}, DistanceCriterion{}), constraint, maxIter, stageProgress(cfg.Progress, 2))
	if err != nil {
		return nil, err
	}

	mapped, err := MapValues(x, cfg.Xmin, cfg.Xmax)
	if err != nil {
		return nil, err
	}
	report, err := QualityReport(mapped)
	if err != nil {
		return nil, err
	}
	return &Design{
		Names:      names,
		Matrix:     mapped,
		Normalized: x,
		Report:     report,
	}, nil
}

func stageProgress(p StageProgressFunc, stage int) ProgressFunc {
	if p == nil {
		return nil
	}
	return func(iteration int, x *mat.Dense) {
		p(stage, iteration, x)
	}
}

func defaultNames(cols int) []string {
	names := make([]string, cols)
	for j := range names {
		names[j] = fmt.Sprintf("C%d", j+1)
	}
	return names
}
