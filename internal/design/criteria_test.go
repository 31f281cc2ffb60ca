package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// clustered4x1 has Dmax 3 and coincident-ish rows; grid4x1 has Dmax 0 and
// well separated rows.
func clustered4x1() *mat.Dense {
	return mat.NewDense(4, 1, []float64{0.1, 0.11, 0.12, 0.13})
}

func grid4x1() *mat.Dense {
	return mat.NewDense(4, 1, []float64{0, 0.3, 0.6, 1})
}

func TestCriteriaContinueOnMissingCandidate(t *testing.T) {
	x := grid4x1()
	for _, crit := range []Criterion{
		DeviationCriterion{},
		DistanceCriterion{},
		CorrelationCriterion{},
		AnyOf(DeviationCriterion{}, DistanceCriterion{}),
		AllOf(DeviationCriterion{}, DistanceCriterion{}),
	} {
		cont, err := crit.Continue(x, nil)
		require.NoError(t, err)
		assert.True(t, cont, "%T must force a first iteration", crit)
	}
}

func TestDeviationCriterionAcceptsStrictImprovement(t *testing.T) {
	crit := DeviationCriterion{}

	cont, err := crit.Continue(clustered4x1(), grid4x1())
	require.NoError(t, err)
	assert.False(t, cont, "strictly lower Dmax must be accepted")

	// equal Dmax is not an improvement
	cont, err = crit.Continue(grid4x1(), grid4x1())
	require.NoError(t, err)
	assert.True(t, cont)

	// worse Dmax keeps searching
	cont, err = crit.Continue(grid4x1(), clustered4x1())
	require.NoError(t, err)
	assert.True(t, cont)
}

func TestDistanceCriterionAcceptsLargerSpread(t *testing.T) {
	crit := DistanceCriterion{}

	cont, err := crit.Continue(clustered4x1(), grid4x1())
	require.NoError(t, err)
	assert.False(t, cont, "larger minimum distance must be accepted")

	cont, err = crit.Continue(grid4x1(), clustered4x1())
	require.NoError(t, err)
	assert.True(t, cont)
}

func TestCorrelationCriterionAcceptsLowerCorrelation(t *testing.T) {
	correlated := mat.NewDense(3, 2, []float64{0, 0, 0.5, 0.5, 1, 1})
	mixed := mat.NewDense(3, 2, []float64{0, 0.5, 0.5, 1, 1, 0})
	crit := CorrelationCriterion{}

	cont, err := crit.Continue(correlated, mixed)
	require.NoError(t, err)
	assert.False(t, cont)

	cont, err = crit.Continue(mixed, correlated)
	require.NoError(t, err)
	assert.True(t, cont)
}

func TestAnyOfAcceptsOnlyWhenAllImprove(t *testing.T) {
	crit := AnyOf(DeviationCriterion{}, DistanceCriterion{})

	// grid improves both Dmax and min distance over the cluster
	cont, err := crit.Continue(clustered4x1(), grid4x1())
	require.NoError(t, err)
	assert.False(t, cont)

	// identical candidate improves neither
	cont, err = crit.Continue(grid4x1(), grid4x1())
	require.NoError(t, err)
	assert.True(t, cont)
}

func TestAnyOfContinuesWhilePartialImprovement(t *testing.T) {
	// candidate raises the minimum distance (1/3 vs 0.3) but leaves
	// Dmax at 0, so the deviation member still wants to continue and
	// the composite must too
	current := grid4x1()
	candidate := mat.NewDense(4, 1, []float64{0, 1.0 / 3, 2.0 / 3, 1})

	require.Greater(t, MinDistance(candidate), MinDistance(current),
		"fixture: candidate must improve spread")

	cont, err := AnyOf(DeviationCriterion{}, DistanceCriterion{}).Continue(current, candidate)
	require.NoError(t, err)
	assert.True(t, cont)
}

func TestAllOfAcceptsOnAnyImprovement(t *testing.T) {
	current := grid4x1()
	candidate := mat.NewDense(4, 1, []float64{0, 1.0 / 3, 2.0 / 3, 1})

	// candidate improves the spread only; AllOf accepts as soon as
	// one member does
	cont, err := AllOf(DeviationCriterion{}, DistanceCriterion{}).Continue(current, candidate)
	require.NoError(t, err)
	assert.False(t, cont)
}

func TestCriteriaPropagateMetricErrors(t *testing.T) {
	bad := mat.NewDense(3, 2, []float64{0.1, 0.2, 1.5, 0.4, 0.5, 0.6})
	good := mat.NewDense(3, 2, []float64{0, 0.5, 0.5, 1, 1, 0})

	_, err := DeviationCriterion{}.Continue(bad, good)
	assert.ErrorIs(t, err, ErrDomain)
}
