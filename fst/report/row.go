// Package report turns snapshots into summary rows and writes the plain-text
// analysis files.
package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/topology"
)

// BatteryStats summarizes the battery levels of one iteration's terminals.
type BatteryStats struct {
	Mean  float64
	Min   float64
	Max   float64
	Count int
	Low   int // levels below the low-battery threshold
}

// NewBatteryStats is absent for an empty input.
func NewBatteryStats(levels []float64, lowThreshold float64) fst.Optional[BatteryStats] {
	if len(levels) == 0 {
		return fst.None[BatteryStats]()
	}
	low := 0
	for _, l := range levels {
		if l < lowThreshold {
			low++
		}
	}
	return fst.Some(BatteryStats{
		Mean:  stat.Mean(levels, nil),
		Min:   floats.Min(levels),
		Max:   floats.Max(levels),
		Count: len(levels),
		Low:   low,
	})
}

// CoverageSource says where a row's coverage rate came from.
type CoverageSource string

const (
	CoverageFromCounts    CoverageSource = "counts"
	CoverageFromPage      CoverageSource = "visualization"
	CoverageFromSelection CoverageSource = "selection"
	CoverageAbsent        CoverageSource = "none"
)

// Row is one line of the cross-iteration table. Every field may be absent.
type Row struct {
	Iteration int

	Budget             fst.Optional[float64]
	Alpha              fst.Optional[float64]
	Beta               fst.Optional[float64]
	MaxTreeCost        fst.Optional[float64]
	ScaleFactor        fst.Optional[int]
	MaxTreeCostNorm    fst.Optional[float64]
	MaxBatteryCostNorm fst.Optional[float64]

	MIPGap         fst.Optional[float64] // percent
	TotalCost      fst.Optional[float64]
	Covered        fst.Optional[int]
	Uncovered      fst.Optional[int]
	CoverageRate   fst.Optional[float64]
	CoverageSource CoverageSource
	SelectedFSTs   fst.Optional[int]
	TotalFSTs      fst.Optional[int]
	BudgetUsed     fst.Optional[int]
	BudgetTotal    fst.Optional[int]

	Battery  fst.Optional[BatteryStats]
	Topology fst.Optional[topology.Distance]

	// Err is set when the iteration could not be extracted; every other
	// field except Iteration is then absent.
	Err error
}

// FailedRow is the row of an iteration whose extraction failed.
func FailedRow(iteration int, err error) Row {
	return Row{Iteration: iteration, CoverageSource: CoverageAbsent, Err: err}
}

// NewRow derives the table row of one snapshot.
func NewRow(s *fst.Snapshot, cfg *fst.AnalysisConfig) Row {
	r := Row{
		Iteration:          s.Iteration,
		Budget:             fst.First(s.Budget.BudgetLimit, s.Budget.EnvBudget),
		Alpha:              s.Budget.Alpha,
		Beta:               s.Budget.Beta,
		MaxTreeCost:        s.Budget.MaxTreeCost,
		ScaleFactor:        s.Budget.ScaleFactor,
		MaxTreeCostNorm:    s.Budget.MaxTreeCostNorm,
		MaxBatteryCostNorm: s.Budget.MaxBatteryCostNorm,
		MIPGap:             s.Objective.MIPGapPercent,
		TotalCost:          s.Objective.TotalCost,
		Covered:            s.Objective.Covered,
		Uncovered:          s.Objective.Uncovered,
		SelectedFSTs:       s.Objective.SelectedFSTs,
		TotalFSTs:          s.Objective.TotalFSTs,
		BudgetUsed:         s.Objective.BudgetUsed,
		BudgetTotal:        s.Objective.BudgetTotal,
	}

	if !r.SelectedFSTs.IsSet() && s.Selection.Source != fst.SourceNone {
		r.SelectedFSTs = fst.Some(s.Selection.Len())
	}
	if !r.TotalFSTs.IsSet() && len(s.FSTs) > 0 {
		r.TotalFSTs = fst.Some(len(s.FSTs))
	}
	r.CoverageRate, r.CoverageSource = coverageRate(s)

	levels := make([]float64, len(s.Terminals))
	for i, t := range s.Terminals {
		levels[i] = t.Battery
	}
	r.Battery = NewBatteryStats(levels, cfg.LowBattery())
	return r
}

// coverageRate prefers the page's counts, then the page's printed rate, then
// the coverage implied by the selection.
func coverageRate(s *fst.Snapshot) (fst.Optional[float64], CoverageSource) {
	covered, okC := s.Objective.Covered.Get()
	uncovered, okU := s.Objective.Uncovered.Get()
	if okC && okU {
		if rate := fst.CoverageRate(covered, uncovered); rate.IsSet() {
			return rate, CoverageFromCounts
		}
	}
	if s.Objective.CoverageRate.IsSet() {
		return s.Objective.CoverageRate, CoverageFromPage
	}
	if n := s.TerminalCount(); n > 0 && s.Selection.Source != fst.SourceNone {
		c := fst.CoverageOf(n, s.FSTs, s.Selection, s.SolutionFSTs)
		return fst.CoverageRate(len(c.Covered), len(c.Uncovered)), CoverageFromSelection
	}
	return fst.None[float64](), CoverageAbsent
}

// Stats are the cross-iteration means. Each mean covers only the rows
// where the field is present.
type Stats struct {
	Iterations   int
	Failed       int
	AvgTotalCost fst.Optional[float64]
	AvgCoverage  fst.Optional[float64]
	AvgSelected  fst.Optional[float64]
	AvgMIPGap    fst.Optional[float64]
}

// Summarize computes Stats over rows.
func Summarize(rows []Row) Stats {
	st := Stats{Iterations: len(rows)}
	var cost, cov, sel, gap []fst.Optional[float64]
	for _, r := range rows {
		if r.Err != nil {
			st.Failed++
			continue
		}
		cost = append(cost, r.TotalCost)
		cov = append(cov, r.CoverageRate)
		sel = append(sel, fst.Map(r.SelectedFSTs, func(n int) float64 { return float64(n) }))
		gap = append(gap, r.MIPGap)
	}
	st.AvgTotalCost = MeanPresent(cost)
	st.AvgCoverage = MeanPresent(cov)
	st.AvgSelected = MeanPresent(sel)
	st.AvgMIPGap = MeanPresent(gap)
	return st
}

// MeanPresent averages the present values; absent when none are.
func MeanPresent(values []fst.Optional[float64]) fst.Optional[float64] {
	var xs []float64
	for _, v := range values {
		if x, ok := v.Get(); ok {
			xs = append(xs, x)
		}
	}
	if len(xs) == 0 {
		return fst.None[float64]()
	}
	return fst.Some(stat.Mean(xs, nil))
}
