package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/topology"
)

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func costField(f fst.FstRecord, pick func(fst.FstCost) float64, format string) string {
	return fst.Map(f.Cost, pick).Format(format)
}

// WriteIteration writes the analysis of one snapshot. Sections follow a
// fixed order: summary, battery levels, FST table, selected FSTs, budget
// constraint, topology. dist is the change against the previous iteration.
func WriteIteration(w io.Writer, s *fst.Snapshot, cfg *fst.AnalysisConfig, dist fst.Optional[topology.Distance]) error {
	row := NewRow(s, cfg)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "=== Iteration %d: Detailed FST Analysis ===\n\n", s.Iteration)

	fmt.Fprintln(bw, "--- Summary ---")
	fmt.Fprintf(bw, "Budget Limit       : %s\n", s.Budget.BudgetLimit)
	if s.Budget.EnvBudget.IsSet() {
		fmt.Fprintf(bw, "Environment Budget : %s\n", s.Budget.EnvBudget)
	}
	fmt.Fprintf(bw, "Scale Factor       : %s\n", s.Budget.ScaleFactor)
	fmt.Fprintf(bw, "Max Tree Cost      : %s\n", s.Budget.MaxTreeCost.Format("%.3f"))
	fmt.Fprintf(bw, "Alpha / Beta       : %s / %s\n", s.Budget.Alpha, s.Budget.Beta)
	fmt.Fprintf(bw, "MIP Gap            : %s\n", s.Objective.MIPGapPercent.Format("%.4f%%"))
	fmt.Fprintf(bw, "Total Cost         : %s\n", s.Objective.TotalCost.Format("%.3f"))
	fmt.Fprintf(bw, "Coverage Rate      : %s (%s)\n", row.CoverageRate.Format("%.1f%%"), row.CoverageSource)
	fmt.Fprintf(bw, "Selected FSTs      : %s (%s)\n", ratio(row.SelectedFSTs, row.TotalFSTs), s.Selection.Source)
	fmt.Fprintf(bw, "Covered Terminals  : %s\n", s.Objective.Covered)
	fmt.Fprintf(bw, "Uncovered Terminals: %s\n", s.Objective.Uncovered)
	if len(s.MissingInputs) > 0 {
		fmt.Fprintf(bw, "Missing Inputs     : %s\n", strings.Join(s.MissingInputs, ", "))
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "--- Terminal Battery Levels ---")
	for _, t := range s.Terminals {
		fmt.Fprintf(bw, "Terminal %2d: %6.1f%% %s\n", t.Index, t.Battery, cfg.BatteryStatus(t.Battery))
	}
	if b, ok := row.Battery.Get(); ok {
		fmt.Fprintf(bw, "Average %.1f%%, min %.1f%%, max %.1f%%, %d below %.0f%%\n",
			b.Mean, b.Min, b.Max, b.Low, cfg.LowBattery())
	}
	if s.Alignment.Faulty() {
		fmt.Fprintf(bw, "WARNING: %d coordinates vs %d battery levels\n", s.Alignment.Coordinates, s.Alignment.Batteries)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "--- FST Detailed Analysis ---")
	fmt.Fprintf(bw, "%-4s %-10s %-20s %-6s %-12s %-14s %-12s\n",
		"FST", "Selected", "Terminals", "Count", "Norm Tree", "Norm Battery", "Objective")
	fmt.Fprintln(bw, strings.Repeat("-", 84))
	for _, f := range s.FSTs {
		sel := "NO"
		if s.Selection.Contains(f.ID) {
			sel = "YES"
		}
		fmt.Fprintf(bw, "%-4d %-10s %-20s %-6d %-12s %-14s %-12s\n",
			f.ID, sel, joinInts(f.Terminals), len(f.Terminals),
			costField(f, func(c fst.FstCost) float64 { return c.TreeScaled }, "%.3f"),
			costField(f, func(c fst.FstCost) float64 { return c.BatteryCost }, "%.3f"),
			costField(f, func(c fst.FstCost) float64 { return c.Objective }, "%.3f"))
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "--- Selected FSTs Analysis ---")
	if s.Selection.Len() == 0 {
		fmt.Fprintln(bw, "No FST selected")
	}
	for _, id := range s.Selection.IDs {
		f, ok := s.FST(id)
		if !ok {
			fmt.Fprintf(bw, "FST %d: no definition\n", id)
			continue
		}
		fmt.Fprintf(bw, "FST %d: Terminals [%s] (%d terminals)\n", id, joinInts(f.Terminals), len(f.Terminals))
		if c, ok := f.Cost.Get(); ok {
			fmt.Fprintf(bw, "  Normalized Tree Cost   : %8.3f\n", c.TreeScaled)
			fmt.Fprintf(bw, "  Normalized Battery Cost: %8.3f\n", c.BatteryCost)
			fmt.Fprintf(bw, "  Combined Objective     : %8.3f\n", c.Objective)
		}
		for _, ti := range f.Terminals {
			if t, ok := s.Terminal(ti); ok {
				fmt.Fprintf(bw, "    Terminal %d: %6.1f%% %s\n", ti, t.Battery, cfg.BatteryStatus(t.Battery))
			}
		}
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "--- Budget Constraint Analysis ---")
	fmt.Fprintf(bw, "Formula: Σ (normalized_tree_cost × %s) × x[i] ≤ %s\n", s.Budget.ScaleFactor, s.Budget.BudgetRHS)
	fmt.Fprintf(bw, "Budget limit: %s\n", s.Budget.BudgetLimit)
	fmt.Fprintf(bw, "Scale factor: %s\n", s.Budget.ScaleFactor)
	if used, ok := s.Objective.BudgetUsed.Get(); ok {
		fmt.Fprintf(bw, "Tree costs used: %d of %s\n", used, s.Objective.BudgetTotal)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "--- Topology ---")
	v := topology.Validate(s.ActiveEdges)
	fmt.Fprintf(bw, "Active edges  : %d of %d (boundary: %s)\n", s.ActiveEdges.Len(), s.DumpEdges.Len(), s.EdgeBoundary)
	fmt.Fprintf(bw, "Components    : %d over %d vertices\n", v.Components, v.Vertices)
	if e, ok := v.CycleEdge.Get(); ok {
		fmt.Fprintf(bw, "Cycle         : closed by %s\n", e)
	} else {
		fmt.Fprintln(bw, "Cycle         : none")
	}
	fmt.Fprintf(bw, "Change vs prev: %s\n", fst.Map(dist, topology.Distance.String).OrElse(fst.NA))
	for _, msg := range s.Warnings {
		fmt.Fprintf(bw, "WARNING: %s\n", msg)
	}
	return bw.Flush()
}
