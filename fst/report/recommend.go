package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/entity"
)

// WriteRecommendation analyzes a single solver log: the terminal batteries
// it echoed, every costed FST against the budget, and the recommended FST
// or the infeasibility shortfall.
func WriteRecommendation(w io.Writer, log *entity.SolutionLog, cfg *fst.AnalysisConfig) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "=== Multi-Objective Steiner Network Analysis ===")
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "--- Terminal Analysis ---")
	for i, b := range log.Batteries {
		fmt.Fprintf(bw, "Terminal %d: Battery = %5.1f (%s)\n", i, b, cfg.BatteryStatus(b))
	}
	if st, ok := NewBatteryStats(log.Batteries, cfg.LowBattery()).Get(); ok {
		fmt.Fprintf(bw, "Average Battery Level: %.1f\n", st.Mean)
		fmt.Fprintf(bw, "Low Battery Terminals (<%.0f): %d/%d\n", cfg.LowBattery(), st.Low, st.Count)
	}
	fmt.Fprintln(bw)

	fsts := make([]fst.FstRecord, 0, len(log.Costs))
	for _, id := range log.ObjectiveIDs() {
		fsts = append(fsts, fst.FstRecord{ID: id, Terminals: log.SolutionFSTs[id], Cost: fst.Some(log.Costs[id])})
	}

	budget := log.Budget.EffectiveBudget()
	fmt.Fprintf(bw, "Budget Constraint: %s\n\n", budget.Format("%.3f"))

	fmt.Fprintln(bw, "--- FST Analysis ---")
	fmt.Fprintf(bw, "%-4s | %-12s | %-12s | %-12s | %s\n", "ID", "Tree Cost", "Battery Cost", "Combined", "Budget Status")
	for _, f := range fsts {
		c, _ := f.Cost.Get()
		status := fst.NA
		if b, ok := budget.Get(); ok {
			status = "EXCEEDS"
			if c.TreeRaw <= b {
				status = "FEASIBLE"
			}
		}
		fmt.Fprintf(bw, "%-4d | %12.3f | %12.3f | %12.3f | %s\n", f.ID, c.TreeRaw, c.BatteryCost, c.Objective, status)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "--- Solution Recommendation ---")
	rec, err := fst.Recommend(fsts, log.Budget)
	switch {
	case errors.Is(err, fst.ErrNoBudget), errors.Is(err, fst.ErrNoCandidates):
		fmt.Fprintf(bw, "Cannot recommend: %v\n", err)
	case err != nil:
		return err
	case rec.Feasible:
		best, _ := rec.Best.Cost.Get()
		fmt.Fprintf(bw, "RECOMMENDED: FST %d\n", rec.Best.ID)
		fmt.Fprintf(bw, "  Tree Cost         : %.3f (within budget)\n", best.TreeRaw)
		fmt.Fprintf(bw, "  Battery Impact    : %.3f (lower is better)\n", best.BatteryCost)
		fmt.Fprintf(bw, "  Combined Objective: %.3f\n", best.Objective)
		fmt.Fprintf(bw, "  Feasible FSTs     : %d of %d\n", len(rec.Feasibles), len(fsts))
		if rec.Budget > 0 {
			fmt.Fprintf(bw, "  Budget Utilization: %.1f%%\n", best.TreeRaw/rec.Budget*100)
		}
	default:
		fmt.Fprintln(bw, "NO FEASIBLE SOLUTION within budget constraint")
		fmt.Fprintf(bw, "  Minimum FST cost: %s\n", rec.MinTreeCost.Format("%.3f"))
		fmt.Fprintf(bw, "  Shortfall       : %s (budget %.3f)\n", rec.Shortfall.Format("%.3f"), rec.Budget)
	}
	return bw.Flush()
}
