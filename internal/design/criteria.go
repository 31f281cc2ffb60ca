package design

import "gonum.org/v1/gonum/mat"

// Criterion decides whether the search should keep looking. Continue is
// called with a nil candidate before the first proposal of an iteration and
// must report true then; with both matrices present, true means "candidate
// not good enough, keep searching" and false accepts the candidate.
type Criterion interface {
	Continue(current, candidate *mat.Dense) (bool, error)
}

// DeviationCriterion keeps searching until a candidate strictly lowers Dmax.
type DeviationCriterion struct{}

func (DeviationCriterion) Continue(current, candidate *mat.Dense) (bool, error) {
	if candidate == nil {
		return true, nil
	}
	cur, err := Dmax(current)
	if err != nil {
		return false, err
	}
	cand, err := Dmax(candidate)
	if err != nil {
		return false, err
	}
	return cur-cand <= 0, nil
}

// DistanceCriterion keeps searching until a candidate strictly raises the
// minimum pairwise distance.
type DistanceCriterion struct{}

func (DistanceCriterion) Continue(current, candidate *mat.Dense) (bool, error) {
	if candidate == nil {
		return true, nil
	}
	return MinDistance(candidate)-MinDistance(current) <= 0, nil
}

// CorrelationCriterion keeps searching until a candidate strictly lowers the
// maximum absolute inter-component correlation.
type CorrelationCriterion struct{}

func (CorrelationCriterion) Continue(current, candidate *mat.Dense) (bool, error) {
	if candidate == nil {
		return true, nil
	}
	cur, err := MaxAbsCorrelation(current)
	if err != nil {
		return false, err
	}
	cand, err := MaxAbsCorrelation(candidate)
	if err != nil {
		return false, err
	}
	return cur-cand <= 0, nil
}

// AnyOf combines criteria by OR-ing their continuation signals: the search
// keeps going while any member still wants to, so a candidate is accepted
// only when every member sees a strict improvement. Note the inversion: an
// OR over "continue" is an AND over acceptance.
func AnyOf(criteria ...Criterion) Criterion {
	return anyOf(criteria)
}

type anyOf []Criterion

func (cs anyOf) Continue(current, candidate *mat.Dense) (bool, error) {
	if candidate == nil {
		return true, nil
	}
	for _, c := range cs {
		cont, err := c.Continue(current, candidate)
		if err != nil {
			return false, err
		}
		if cont {
			return true, nil
		}
	}
	return false, nil
}

// AllOf combines criteria by AND-ing their continuation signals: the search
// stops as soon as any member would accept, so a candidate passes when it
// improves any one objective.
func AllOf(criteria ...Criterion) Criterion {
	return allOf(criteria)
}

type allOf []Criterion

func (cs allOf) Continue(current, candidate *mat.Dense) (bool, error) {
	if candidate == nil {
		return true, nil
	}
	for _, c := range cs {
		cont, err := c.Continue(current, candidate)
		if err != nil {
			return false, err
		}
		if !cont {
			return false, nil
		}
	}
	return true, nil
}
