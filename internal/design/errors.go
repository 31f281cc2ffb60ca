package design

// ShapeError reports a matrix or argument whose dimensions violate the
// design invariants (missing dimensions, rows not exceeding columns,
// mismatched bound or name lengths).
// Use errors.Is(err, ErrShape) to check for this error.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Reason != "" {
		return "shape error: " + e.Reason
	}
	return "shape error"
}

func (e *ShapeError) Is(target error) bool {
	_, ok := target.(*ShapeError)
	return ok
}

// DomainError reports values outside the normalized [0,1] range or a
// degenerate statistic (zero-variance component, unusable bin count).
// Use errors.Is(err, ErrDomain) to check for this error.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string {
	if e.Reason != "" {
		return "domain error: " + e.Reason
	}
	return "domain error"
}

func (e *DomainError) Is(target error) bool {
	_, ok := target.(*DomainError)
	return ok
}

// ErrShape and ErrDomain are sentinel values for errors.Is checks.
var (
	ErrShape  = &ShapeError{}
	ErrDomain = &DomainError{}
)
