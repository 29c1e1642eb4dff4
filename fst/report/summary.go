package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/steiner-battery/fstscope/fst"
)

// evolutionRows caps the budget-utilization and battery-evolution sections.
const evolutionRows = 5

func ratio(a, b fst.Optional[int]) string {
	x, okA := a.Get()
	y, okB := b.Get()
	if !okA || !okB {
		return fst.NA
	}
	return fmt.Sprintf("%d/%d", x, y)
}

func distance(r Row) string {
	d, ok := r.Topology.Get()
	if !ok {
		return fst.NA
	}
	return d.String()
}

// WriteTable writes the one-line-per-iteration table. Failed iterations
// show their error instead of values.
func WriteTable(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "=== Battery-Aware Network Optimization: Iteration Summary ===")
	fmt.Fprintf(bw, "%-4s %-8s %-6s %-6s %-10s %-12s %-10s %-8s %-12s %-8s %-14s\n",
		"Iter", "Budget", "Alpha", "Beta", "MIP Gap", "Total Cost", "Coverage", "FSTs", "Avg Battery", "Low Bat", "Topo Dist")
	fmt.Fprintln(bw, strings.Repeat("-", 117))
	for _, r := range rows {
		if r.Err != nil {
			fmt.Fprintf(bw, "%-4d FAILED: %v\n", r.Iteration, r.Err)
			continue
		}
		avg, low := fst.NA, fst.NA
		if b, ok := r.Battery.Get(); ok {
			avg = fmt.Sprintf("%.1f%%", b.Mean)
			low = fmt.Sprintf("%d", b.Low)
		}
		fmt.Fprintf(bw, "%-4d %-8s %-6s %-6s %-10s %-12s %-10s %-8s %-12s %-8s %-14s\n",
			r.Iteration,
			r.Budget.Format("%.1f"),
			r.Alpha.Format("%.1f"),
			r.Beta.Format("%.1f"),
			r.MIPGap.Format("%.4f%%"),
			r.TotalCost.Format("%.3f"),
			r.CoverageRate.Format("%.1f%%"),
			ratio(r.SelectedFSTs, r.TotalFSTs),
			avg,
			low,
			distance(r))
	}
	return bw.Flush()
}

// WriteSummary writes the full cross-iteration report.
func WriteSummary(w io.Writer, rows []Row) error {
	if err := WriteTable(w, rows); err != nil {
		return err
	}
	st := Summarize(rows)
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "=== Detailed Analysis ===")
	fmt.Fprintf(bw, "Iterations           : %d (%d failed)\n", st.Iterations, st.Failed)
	fmt.Fprintf(bw, "Average Total Cost   : %s\n", st.AvgTotalCost.Format("%.3f"))
	fmt.Fprintf(bw, "Average Coverage Rate: %s\n", st.AvgCoverage.Format("%.1f%%"))
	fmt.Fprintf(bw, "Average FSTs Selected: %s\n", st.AvgSelected.Format("%.1f"))
	fmt.Fprintf(bw, "Average MIP Gap      : %s\n", st.AvgMIPGap.Format("%.4f%%"))

	if first, ok := firstExtracted(rows); ok {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "=== Configuration ===")
		fmt.Fprintf(bw, "Scale Factor  : %s\n", first.ScaleFactor)
		fmt.Fprintf(bw, "Max Tree Cost : %s\n", first.MaxTreeCost.Format("%.3f"))
		fmt.Fprintf(bw, "Budget Formula: Σ (normalized_tree_cost × %s) × x[i] ≤ %s\n",
			first.ScaleFactor, first.Budget.Format("%.3f"))
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "=== Budget Utilization ===")
	shown := 0
	for _, r := range rows {
		used, okU := r.BudgetUsed.Get()
		total, okT := r.BudgetTotal.Get()
		if !okU || !okT || total == 0 || shown == evolutionRows {
			continue
		}
		fmt.Fprintf(bw, "Iteration %d: %d / %d (%.1f%%)\n", r.Iteration, used, total, float64(used)/float64(total)*100)
		shown++
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "=== Battery Evolution ===")
	shown = 0
	for _, r := range rows {
		b, ok := r.Battery.Get()
		if !ok || shown == evolutionRows {
			continue
		}
		fmt.Fprintf(bw, "Iteration %d: Avg=%.1f%%, Min=%.1f%%, Max=%.1f%%, Low Battery Terminals=%d\n",
			r.Iteration, b.Mean, b.Min, b.Max, b.Low)
		shown++
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "=== Detailed Iteration Data ===")
	for _, r := range rows {
		writeDetail(bw, r)
	}
	return bw.Flush()
}

func firstExtracted(rows []Row) (Row, bool) {
	for _, r := range rows {
		if r.Err == nil {
			return r, true
		}
	}
	return Row{}, false
}

func writeDetail(w io.Writer, r Row) {
	fmt.Fprintf(w, "Iteration %d:\n", r.Iteration)
	if r.Err != nil {
		fmt.Fprintf(w, "  error: %v\n\n", r.Err)
		return
	}
	kv := func(k, v string) { fmt.Fprintf(w, "  %s: %s\n", k, v) }
	bat := func(f func(BatteryStats) string) string {
		return fst.Map(r.Battery, f).OrElse(fst.NA)
	}
	kv("budget_limit", r.Budget.String())
	kv("alpha", r.Alpha.String())
	kv("beta", r.Beta.String())
	kv("mip_gap", r.MIPGap.String())
	kv("total_cost", r.TotalCost.String())
	kv("coverage_rate", r.CoverageRate.String())
	kv("coverage_source", string(r.CoverageSource))
	kv("selected_fsts", r.SelectedFSTs.String())
	kv("total_fsts", r.TotalFSTs.String())
	kv("covered_terminals", r.Covered.String())
	kv("uncovered_terminals", r.Uncovered.String())
	kv("avg_battery", bat(func(b BatteryStats) string { return fmt.Sprintf("%g", b.Mean) }))
	kv("min_battery", bat(func(b BatteryStats) string { return fmt.Sprintf("%g", b.Min) }))
	kv("max_battery", bat(func(b BatteryStats) string { return fmt.Sprintf("%g", b.Max) }))
	kv("low_battery_count", bat(func(b BatteryStats) string { return fmt.Sprintf("%d", b.Low) }))
	kv("used_budget", r.BudgetUsed.String())
	kv("total_budget", r.BudgetTotal.String())
	kv("max_tree_cost", r.MaxTreeCost.String())
	kv("scale_factor", r.ScaleFactor.String())
	kv("max_tree_cost_norm", r.MaxTreeCostNorm.String())
	kv("max_battery_cost_norm", r.MaxBatteryCostNorm.String())
	kv("topology_distance", distance(r))
	fmt.Fprintln(w)
}
