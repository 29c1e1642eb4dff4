package entity

import (
	"fmt"
	"io"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/grammar"
)

// ParseVisualization reads the summary fields of a visualization page. A
// field the page lacks stays absent.
func ParseVisualization(r io.Reader) (fst.ObjectiveSummary, []*grammar.ParseError, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return fst.ObjectiveSummary{}, nil, fmt.Errorf("reading visualization: %w", err)
	}
	res, err := grammar.ScanMarkup(string(content), grammar.VisualizationRules)
	if err != nil {
		return fst.ObjectiveSummary{}, nil, fmt.Errorf("scanning visualization: %w", err)
	}

	var s fst.ObjectiveSummary
	if g, ok := grammar.First[grammar.VizMipGap](res); ok {
		s.MIPGapPercent = fst.Some(g.Percent)
		s.MIPGapDecimal = fst.Some(g.Decimal)
	}
	if c, ok := grammar.First[grammar.VizTotalCost](res); ok {
		s.TotalCost = fst.Some(c.Value)
	}
	for _, c := range grammar.All[grammar.VizCoverage](res) {
		s.Covered = fst.First(s.Covered, c.Covered)
		s.Uncovered = fst.First(s.Uncovered, c.Uncovered)
		s.CoverageRate = fst.First(s.CoverageRate, c.RatePercent)
	}
	if sel, ok := grammar.First[grammar.VizFstSelection](res); ok {
		s.SelectedFSTs = fst.Some(sel.Selected)
		s.TotalFSTs = fst.Some(sel.Total)
	}
	if u, ok := grammar.First[grammar.VizBudgetUsage](res); ok {
		s.BudgetUsed = fst.Some(u.Used)
		s.BudgetTotal = fst.Some(u.Total)
	}
	return s, res.Failures, nil
}
