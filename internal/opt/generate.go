package opt

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hweitzel/mixdesign/internal/design"
)

// GenerateDesign builds a calibration design by running a global optimizer
// against the Dmax objective over the flattened normalized matrix. It is
// the alternative algorithm path next to design.Generate: same request
// surface, same quantization and mapping, different search. The progress
// hook of the request is ignored since the population optimizer exposes no
// per-iteration state.
func GenerateDesign(o Optimizer, cfg design.GenerateConfig) (*design.Design, error) {
	names, err := cfg.Check()
	if err != nil {
		return nil, err
	}
	cols := len(cfg.Xmin)
	dim := cfg.Mixtures * cols

	lower := make([]float64, dim)
	upper := make([]float64, dim)
	for i := range upper {
		upper[i] = 1
	}

	best, _ := o.Run(DmaxObjective(cfg.Mixtures, cols), lower, upper, dim)
	x := mat.NewDense(cfg.Mixtures, cols, clampedUnit(best))
	if len(cfg.Levels) > 0 {
		x, err = design.QuantizeLevels(x, cfg.Levels)
		if err != nil {
			return nil, err
		}
	}

	mapped, err := design.MapValues(x, cfg.Xmin, cfg.Xmax)
	if err != nil {
		return nil, err
	}
	report, err := design.QualityReport(mapped)
	if err != nil {
		return nil, err
	}
	return &design.Design{
		Names:      names,
		Matrix:     mapped,
		Normalized: x,
		Report:     report,
	}, nil
}
