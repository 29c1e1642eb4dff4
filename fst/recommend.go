package fst

import (
	"errors"
	"sort"
)

// ErrNoBudget is returned when a run printed neither a budget limit nor an environment budget.
var ErrNoBudget = errors.New("no budget recorded for run")

// ErrNoCandidates is returned when no FST carries cost data.
var ErrNoCandidates = errors.New("no FST cost records")

// Recommendation is the outcome of the feasibility + least-objective rule.
// An infeasible run is a legitimate result: Feasible is false and
// MinTreeCost/Shortfall describe how far the cheapest FST misses the budget.
type Recommendation struct {
	Feasible    bool
	Best        FstRecord
	Budget      float64
	Feasibles   []FstRecord // sorted by objective, then id
	MinTreeCost Optional[float64]
	Shortfall   Optional[float64]
}

// Recommend picks, among FSTs with TreeRaw <= budget, the one with the smallest
// objective; ties go to the lowest id.
func Recommend(fsts []FstRecord, budget BudgetConfig) (Recommendation, error) {
	b, ok := budget.EffectiveBudget().Get()
	if !ok {
		return Recommendation{}, ErrNoBudget
	}

	rec := Recommendation{Budget: b}
	candidates := 0
	minTree := 0.0
	for _, f := range fsts {
		c, ok := f.Cost.Get()
		if !ok {
			continue
		}
		if candidates == 0 || c.TreeRaw < minTree {
			minTree = c.TreeRaw
		}
		candidates++
		if c.TreeRaw <= b {
			rec.Feasibles = append(rec.Feasibles, f)
		}
	}
	if candidates == 0 {
		return Recommendation{}, ErrNoCandidates
	}
	rec.MinTreeCost = Some(minTree)

	if len(rec.Feasibles) == 0 {
		rec.Shortfall = Some(minTree - b)
		return rec, nil
	}

	sort.SliceStable(rec.Feasibles, func(i, j int) bool {
		ci, _ := rec.Feasibles[i].Cost.Get()
		cj, _ := rec.Feasibles[j].Cost.Get()
		if ci.Objective != cj.Objective {
			return ci.Objective < cj.Objective
		}
		return rec.Feasibles[i].ID < rec.Feasibles[j].ID
	})
	rec.Feasible = true
	rec.Best = rec.Feasibles[0]
	return rec, nil
}

// Selection returns the recommended FST as a single-element Selection, or an
// empty one when infeasible.
func (r Recommendation) Selection() Selection {
	if !r.Feasible {
		return NewSelection(SourceRecommendation)
	}
	return NewSelection(SourceRecommendation, r.Best.ID)
}
