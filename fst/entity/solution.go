package entity

import (
	"fmt"
	"io"
	"sort"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/grammar"
)

// SolutionLog is the parsed content of one solver log.
type SolutionLog struct {
	Budget fst.BudgetConfig
	// Costs maps FST id to its unified objective; a repeated id keeps the
	// last printed line.
	Costs map[int]fst.FstCost
	// Assignments are the x[i] lines of the LP_VARS block in file order,
	// fractional values included.
	Assignments []fst.LpAssignment
	// Batteries are the "Terminal i battery=" values in file order.
	Batteries    []float64
	SolutionFSTs map[int][]int
	Failures     []*grammar.ParseError
}

// ObjectiveIDs returns the FST ids that have cost data, ascending.
func (l *SolutionLog) ObjectiveIDs() []int {
	ids := make([]int, 0, len(l.Costs))
	for id := range l.Costs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ParseSolution reads a solver log. An x[i] line counts as an LP assignment
// once an LP_VARS line has been seen, or when it carries the marker itself.
// not_covered slack lines never select anything.
func ParseSolution(r io.Reader) (*SolutionLog, error) {
	res, err := grammar.Scan(r, grammar.SolutionRules, grammar.WeightRules)
	if err != nil {
		return nil, fmt.Errorf("reading solution log: %w", err)
	}
	log := &SolutionLog{
		Costs:        map[int]fst.FstCost{},
		SolutionFSTs: map[int][]int{},
		Failures:     res.Failures,
	}
	log.Budget = budgetFrom(res)

	inBlock := false
	for _, l := range res.Records {
		switch rec := l.Record.(type) {
		case grammar.LpBlockStart:
			inBlock = true
		case grammar.LpVariableAssignment:
			if rec.Tagged {
				inBlock = true
			}
			if inBlock {
				log.Assignments = append(log.Assignments, fst.LpAssignment{FstID: rec.FstID, Value: rec.Value})
			}
		case grammar.FstObjective:
			log.Costs[rec.FstID] = rec.Cost
		case grammar.TerminalBattery:
			log.Batteries = append(log.Batteries, rec.Battery)
		case grammar.SolutionFstTerminals:
			log.SolutionFSTs[rec.FstID] = rec.Terminals
		}
	}
	return log, nil
}

func budgetFrom(res *grammar.ScanResult) fst.BudgetConfig {
	var b fst.BudgetConfig
	if r, ok := grammar.First[grammar.BudgetLimit](res); ok {
		b.BudgetLimit = fst.Some(r.Value)
	}
	if r, ok := grammar.First[grammar.BudgetEnvLimit](res); ok {
		b.EnvBudget = fst.Some(r.Value)
	}
	if r, ok := grammar.First[grammar.MaxTreeCost](res); ok {
		b.MaxTreeCost = fst.Some(r.Value)
	}
	if r, ok := grammar.First[grammar.BudgetConstraintFormula](res); ok {
		b.ScaleFactor = fst.Some(r.ScaleFactor)
		b.BudgetRHS = fst.Some(r.BudgetRHS)
	}
	if r, ok := grammar.First[grammar.AlphaWeight](res); ok {
		b.Alpha = fst.Some(r.Value)
	}
	if r, ok := grammar.First[grammar.BetaWeight](res); ok {
		b.Beta = fst.Some(r.Value)
	}
	if r, ok := grammar.First[grammar.Normalization](res); ok {
		b.MaxTreeCostNorm = fst.Some(r.MaxTreeCost)
		b.MaxBatteryCostNorm = fst.Some(r.MaxBatteryCost)
	}
	return b
}
