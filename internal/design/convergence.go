package design

import "math"

// Tracker follows the trajectory of a quality statistic (typically Dmax)
// across optimizer iterations and reports whether each new value is a
// meaningful improvement. It never stops the search; callers use it for
// progress reporting and logging.
type Tracker struct {
	threshold float64
	history   []float64
	best      float64
	lastMark  float64
	stale     int
}

// NewTracker creates a tracker. threshold is the minimum relative
// improvement over the last significant mark that resets the stale counter,
// e.g. 0.001 for 0.1%.
func NewTracker(threshold float64) *Tracker {
	return &Tracker{
		threshold: threshold,
		best:      math.Inf(1),
		lastMark:  math.Inf(1),
	}
}

// Update records a value and reports whether it improved on the last
// significant mark by at least the threshold. The first value always marks.
func (tr *Tracker) Update(v float64) bool {
	tr.history = append(tr.history, v)
	if v < tr.best {
		tr.best = v
	}
	if len(tr.history) == 1 {
		tr.lastMark = v
		return true
	}
	rel := (tr.lastMark - v) / tr.lastMark
	if rel >= tr.threshold {
		tr.lastMark = v
		tr.stale = 0
		return true
	}
	tr.stale++
	return false
}

// Best returns the lowest value seen so far.
func (tr *Tracker) Best() float64 { return tr.best }

// Stale returns the number of consecutive updates without a significant
// improvement.
func (tr *Tracker) Stale() int { return tr.stale }

// History returns a copy of every recorded value.
func (tr *Tracker) History() []float64 {
	return append([]float64(nil), tr.history...)
}
