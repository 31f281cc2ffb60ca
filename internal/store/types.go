package store

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hweitzel/mixdesign/internal/design"
)

// DesignConfig is the persisted copy of a generation request. It mirrors
// design.GenerateConfig plus the call-boundary parameters (seed, algorithm)
// that the core deliberately leaves to its callers.
type DesignConfig struct {
	Mixtures  int       `json:"mixtures"`
	Xmin      []float64 `json:"xmin"`
	Xmax      []float64 `json:"xmax"`
	Names     []string  `json:"names,omitempty"`
	Levels    []int     `json:"levels,omitempty"`
	MaxIter   int       `json:"maxIter"`
	Seed      int64     `json:"seed"`
	Algorithm string    `json:"algorithm"`         // adaptive or mayfly
	PopSize   int       `json:"popSize,omitempty"` // mayfly only
}

// GenerateConfig converts the persisted request back into the core's
// generation parameters. Seed, algorithm and population size stay with
// the caller.
func (c DesignConfig) GenerateConfig() design.GenerateConfig {
	return design.GenerateConfig{
		Mixtures: c.Mixtures,
		Xmin:     c.Xmin,
		Xmax:     c.Xmax,
		Names:    c.Names,
		Levels:   c.Levels,
		MaxIter:  c.MaxIter,
	}
}

// SavedDesign is a finished design with its quality report.
type SavedDesign struct {
	// ID is the unique identifier for this design
	ID string `json:"id"`

	// Config holds the generation request that produced the design
	Config DesignConfig `json:"config"`

	// Names labels the matrix columns
	Names []string `json:"names"`

	// Matrix holds the design values in concentration units, row-major
	Matrix [][]float64 `json:"matrix"`

	// Report holds the quality statistics at save time
	Report design.Report `json:"report"`

	// CreatedAt records when the design was generated
	CreatedAt time.Time `json:"createdAt"`
}

// NewSavedDesign converts a finished design into its persistable form.
func NewSavedDesign(id string, cfg DesignConfig, d *design.Design) *SavedDesign {
	return &SavedDesign{
		ID:        id,
		Config:    cfg,
		Names:     d.Names,
		Matrix:    matrixRows(d.Matrix),
		Report:    d.Report,
		CreatedAt: time.Now(),
	}
}

// matrixRows copies a dense matrix into a row-major slice of slices.
func matrixRows(x *mat.Dense) [][]float64 {
	rows, cols := x.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		copy(out[i], x.RawRowView(i))
	}
	return out
}

// ToMatrix rebuilds the dense matrix from the persisted rows.
func (s *SavedDesign) ToMatrix() *mat.Dense {
	rows := len(s.Matrix)
	if rows == 0 {
		return nil
	}
	cols := len(s.Matrix[0])
	out := mat.NewDense(rows, cols, nil)
	for i, row := range s.Matrix {
		out.SetRow(i, row)
	}
	return out
}

// Validate checks if the saved design has consistent data.
// Returns an error if any required field is missing or invalid.
func (s *SavedDesign) Validate() error {
	if s.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if len(s.Matrix) == 0 {
		return &ValidationError{Field: "Matrix", Reason: "cannot be empty"}
	}
	cols := len(s.Matrix[0])
	if cols == 0 {
		return &ValidationError{Field: "Matrix", Reason: "rows cannot be empty"}
	}
	for i, row := range s.Matrix {
		if len(row) != cols {
			return &ValidationError{
				Field:  "Matrix",
				Reason: fmt.Sprintf("row %d has %d entries, expected %d", i, len(row), cols),
			}
		}
	}
	if len(s.Names) != cols {
		return &ValidationError{
			Field:  "Names",
			Reason: fmt.Sprintf("%d names for %d components", len(s.Names), cols),
		}
	}
	if s.Config.Mixtures != len(s.Matrix) {
		return &ValidationError{
			Field:  "Config.Mixtures",
			Reason: fmt.Sprintf("config says %d mixtures but matrix has %d rows", s.Config.Mixtures, len(s.Matrix)),
		}
	}
	if s.CreatedAt.IsZero() {
		return &ValidationError{Field: "CreatedAt", Reason: "cannot be zero"}
	}
	return nil
}

// ToInfo converts a full SavedDesign to DesignInfo (metadata only).
func (s *SavedDesign) ToInfo() DesignInfo {
	components := 0
	if len(s.Matrix) > 0 {
		components = len(s.Matrix[0])
	}
	return DesignInfo{
		ID:         s.ID,
		Mixtures:   len(s.Matrix),
		Components: components,
		Dmax:       s.Report.Dmax,
		Algorithm:  s.Config.Algorithm,
		CreatedAt:  s.CreatedAt,
	}
}

// DesignInfo contains metadata about a stored design without the full
// matrix, for listing designs efficiently.
type DesignInfo struct {
	ID         string    `json:"id"`
	Mixtures   int       `json:"mixtures"`
	Components int       `json:"components"`
	Dmax       float64   `json:"dmax"`
	Algorithm  string    `json:"algorithm"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ValidationError represents a saved-design validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
