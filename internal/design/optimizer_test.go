package design

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOptimizeZeroIterationsReturnsInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := RandomMatrix(rng, 10, 2)

	out, err := Optimize(rng, x, DeviationCriterion{}, nil, 0)
	require.NoError(t, err)
	assert.True(t, mat.Equal(x, out))
}

func TestOptimizeStaysInUnitRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	x := RandomMatrix(rng, 12, 2)

	out, err := Optimize(rng, x, DeviationCriterion{}, nil, 10)
	require.NoError(t, err)
	assert.NoError(t, Validate(out))
}

func TestOptimizeNeverWorsensDmax(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x := RandomMatrix(rng, 16, 2)

	before, err := Dmax(x)
	require.NoError(t, err)

	out, err := Optimize(rng, x, DeviationCriterion{}, nil, 15)
	require.NoError(t, err)

	after, err := Dmax(out)
	require.NoError(t, err)
	assert.LessOrEqual(t, after, before+1e-12,
		"deviation criterion must never accept a worse candidate")
}

func TestOptimizeWithQuantizerStaysOnGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	x := RandomMatrix(rng, 10, 2)
	levels := 5

	out, err := Optimize(rng, x, DeviationCriterion{}, Quantizer([]int{levels}), 8)
	require.NoError(t, err)

	steps := float64(levels - 1)
	rows, cols := out.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := out.At(i, j) * steps
			assert.InDelta(t, math.Round(v), v, 1e-9,
				"entry (%d,%d) off the quantization grid", i, j)
		}
	}
}

func TestOptimizeDoesNotMutateInput(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	x := RandomMatrix(rng, 10, 2)
	before := mat.DenseCopyOf(x)

	_, err := Optimize(rng, x, DeviationCriterion{}, nil, 10)
	require.NoError(t, err)
	assert.True(t, mat.Equal(before, x))
}

func TestOptimizeRejectsInvalidInput(t *testing.T) {
	rng := rand.New(rand.NewSource(6))

	bad := mat.NewDense(3, 2, []float64{0, 0.5, 1.5, 1, 1, 0})
	_, err := Optimize(rng, bad, DeviationCriterion{}, nil, 5)
	assert.ErrorIs(t, err, ErrDomain)

	square := mat.NewDense(2, 2, []float64{0, 0.5, 1, 0.5})
	_, err = Optimize(rng, square, DeviationCriterion{}, nil, 5)
	assert.ErrorIs(t, err, ErrShape)
}

// stubbornCriterion never accepts, forcing the inner-loop safety cap.
type stubbornCriterion struct{}

func (stubbornCriterion) Continue(current, candidate *mat.Dense) (bool, error) {
	return true, nil
}

func TestOptimizeAbandonmentFallsBackToInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := RandomMatrix(rng, 8, 2)

	out, err := Optimize(rng, x, stubbornCriterion{}, nil, 5)
	require.NoError(t, err)
	assert.True(t, mat.Equal(x, out),
		"an exhausted line search must return the working matrix unchanged")
}

// failingCriterion errors on the first real comparison.
type failingCriterion struct{}

var errCriterion = errors.New("criterion failure")

func (failingCriterion) Continue(current, candidate *mat.Dense) (bool, error) {
	if candidate == nil {
		return true, nil
	}
	return false, errCriterion
}

func TestOptimizeCriterionErrorPropagates(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	x := RandomMatrix(rng, 8, 2)

	_, err := Optimize(rng, x, failingCriterion{}, nil, 5)
	assert.ErrorIs(t, err, errCriterion)
}

func TestOptimizeConstraintErrorPropagates(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	x := RandomMatrix(rng, 8, 2)

	errConstraint := errors.New("constraint failure")
	broken := func(*mat.Dense) (*mat.Dense, error) { return nil, errConstraint }

	_, err := Optimize(rng, x, DeviationCriterion{}, broken, 5)
	assert.ErrorIs(t, err, errConstraint)
}

func TestOptimizeReportsProgress(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	x := RandomMatrix(rng, 10, 2)

	var iterations []int
	progress := func(iteration int, x *mat.Dense) {
		iterations = append(iterations, iteration)
	}

	_, err := OptimizeWithProgress(rng, x, DeviationCriterion{}, nil, 6, progress)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, iterations)
}
