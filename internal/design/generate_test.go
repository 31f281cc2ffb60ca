package design

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGenerateCalibrationScenario(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cfg := GenerateConfig{
		Mixtures: 30,
		Xmin:     []float64{0, 10, 50},
		Xmax:     []float64{10, 100, 300},
		MaxIter:  30,
	}

	d, err := Generate(rng, cfg)
	require.NoError(t, err)

	rows, cols := d.Matrix.Dims()
	require.Equal(t, 30, rows)
	require.Equal(t, 3, cols)
	assert.Equal(t, []string{"C1", "C2", "C3"}, d.Names)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := d.Matrix.At(i, j)
			assert.GreaterOrEqual(t, v, cfg.Xmin[j], "entry (%d,%d)", i, j)
			assert.LessOrEqual(t, v, cfg.Xmax[j], "entry (%d,%d)", i, j)
		}
	}

	assert.NoError(t, Validate(d.Normalized))
	assert.GreaterOrEqual(t, d.Report.Dmax, 0.0)
	assert.Greater(t, d.Report.MinDistance, 0.0)
	assert.GreaterOrEqual(t, d.Report.MaxAbsCorrelation, 0.0)
	assert.LessOrEqual(t, d.Report.MaxAbsCorrelation, 1.0)
}

func TestGenerateUsesGivenNames(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cfg := GenerateConfig{
		Mixtures: 8,
		Xmin:     []float64{0, 0},
		Xmax:     []float64{1, 1},
		Names:    []string{"ethanol", "water"},
		MaxIter:  5,
	}

	d, err := Generate(rng, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"ethanol", "water"}, d.Names)
}

func TestGenerateQuantized(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	cfg := GenerateConfig{
		Mixtures: 10,
		Xmin:     []float64{0, 0},
		Xmax:     []float64{100, 100},
		Levels:   []int{3},
		MaxIter:  8,
	}

	d, err := Generate(rng, cfg)
	require.NoError(t, err)

	rows, cols := d.Normalized.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := d.Normalized.At(i, j) * 2
			assert.InDelta(t, math.Round(v), v, 1e-9,
				"normalized entry (%d,%d) off the 3-level grid", i, j)
		}
	}
}

func TestGenerateReportsProgressAcrossStages(t *testing.T) {
	stages := map[int]int{}
	rng := rand.New(rand.NewSource(3))
	cfg := GenerateConfig{
		Mixtures: 8,
		Xmin:     []float64{0, 0},
		Xmax:     []float64{1, 1},
		MaxIter:  4,
		Progress: func(stage, iteration int, x *mat.Dense) {
			stages[stage]++
		},
	}

	_, err := Generate(rng, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, stages[1])
	assert.Equal(t, 4, stages[2])
}

func TestGenerateConfigCheckErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  GenerateConfig
		want error
	}{
		{
			name: "no bounds",
			cfg:  GenerateConfig{Mixtures: 10},
			want: ErrShape,
		},
		{
			name: "mismatched bounds",
			cfg:  GenerateConfig{Mixtures: 10, Xmin: []float64{0, 0}, Xmax: []float64{1}},
			want: ErrShape,
		},
		{
			name: "inverted bounds",
			cfg:  GenerateConfig{Mixtures: 10, Xmin: []float64{0, 5}, Xmax: []float64{1, 2}},
			want: ErrDomain,
		},
		{
			name: "too few mixtures",
			cfg:  GenerateConfig{Mixtures: 2, Xmin: []float64{0, 0}, Xmax: []float64{1, 1}},
			want: ErrShape,
		},
		{
			name: "wrong name count",
			cfg: GenerateConfig{
				Mixtures: 10,
				Xmin:     []float64{0, 0},
				Xmax:     []float64{1, 1},
				Names:    []string{"only one"},
			},
			want: ErrShape,
		},
		{
			name: "single level",
			cfg: GenerateConfig{
				Mixtures: 10,
				Xmin:     []float64{0, 0},
				Xmax:     []float64{1, 1},
				Levels:   []int{1},
			},
			want: ErrDomain,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Check()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestQualityReportKnownMatrix(t *testing.T) {
	// renormalizes to [[0,0.5],[0.5,1],[1,0]]: a single-subvolume Dmax
	// of 0, a closest pair at sqrt(0.5), and correlation -0.5
	x := mat.NewDense(3, 2, []float64{
		0, 10,
		5, 20,
		10, 0,
	})

	r, err := QualityReport(x)
	require.NoError(t, err)
	assert.InDelta(t, 0, r.Dmax, 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), r.MinDistance, 1e-12)
	assert.InDelta(t, 0.5, r.MaxAbsCorrelation, 1e-12)
}

func TestQualityReportIgnoresUnits(t *testing.T) {
	// min-max renormalization makes the report invariant under affine
	// per-column rescaling
	rng := rand.New(rand.NewSource(4))
	x := RandomMatrix(rng, 12, 2)
	mapped, err := MapValues(x, []float64{10, -5}, []float64{20, 5})
	require.NoError(t, err)

	a, err := QualityReport(x)
	require.NoError(t, err)
	b, err := QualityReport(mapped)
	require.NoError(t, err)

	assert.InDelta(t, a.Dmax, b.Dmax, 1e-9)
	assert.InDelta(t, a.MinDistance, b.MinDistance, 1e-9)
	assert.InDelta(t, a.MaxAbsCorrelation, b.MaxAbsCorrelation, 1e-9)
}

func TestQualityReportConstantColumn(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		0, 5,
		0.5, 5,
		1, 5,
	})
	_, err := QualityReport(x)
	assert.ErrorIs(t, err, ErrDomain)
}
