package store

// Store defines the interface for design persistence operations.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if the design doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveDesign atomically saves a finished design. If a design already
	// exists under this ID it is overwritten. Implementations should use
	// atomic write strategies (temp file + rename) to prevent corruption.
	SaveDesign(id string, d *SavedDesign) error

	// LoadDesign retrieves the design with the given ID.
	// Returns ErrNotFound if no such design exists.
	LoadDesign(id string) (*SavedDesign, error)

	// ListDesigns returns metadata for all stored designs. The returned
	// slice may be empty.
	ListDesigns() ([]DesignInfo, error)

	// DeleteDesign removes the design and all associated artifacts
	// (design.json, matrix.csv, trace.jsonl).
	// Returns ErrNotFound if no such design exists.
	DeleteDesign(id string) error
}

// ErrNotFound is returned when a requested design does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing design error.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return "design not found: " + e.ID
	}
	return "design not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
