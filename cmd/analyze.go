package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/steiner-battery/fstscope/fst/results"
)

var (
	analyzeDir  string // Directory holding the iteration file groups
	analyzeIter int    // Iteration to analyze
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Write the detailed FST analysis of one iteration",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := analyzeIteration(cmd.Context(), analyzeDir, analyzeIter)
		if err != nil {
			logrus.Fatalf("analyze: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Analysis saved to: %s\n", path)
	},
}

// analyzeIteration extracts iter together with its predecessor, when one
// exists, so the analysis carries the topology change.
func analyzeIteration(ctx context.Context, dir string, iter int) (string, error) {
	iters, err := results.Discover(dir, analysisConfig)
	if err != nil {
		return "", err
	}
	want := []int{iter}
	if len(iters) > 0 && iters[0] < iter {
		want = []int{iter - 1, iter}
	}
	its, err := results.Extract(ctx, dir, want, analysisConfig)
	if err != nil {
		return "", err
	}
	target := its[len(its)-1]
	dist := results.Distances(its)
	return results.WriteAnalysis(dir, target, dist[target.Number], analysisConfig)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDir, "dir", ".", "Results directory")
	analyzeCmd.Flags().IntVar(&analyzeIter, "iter", 1, "Iteration number")

	rootCmd.AddCommand(analyzeCmd)
}
