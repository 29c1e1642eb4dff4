package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/report"
	"github.com/steiner-battery/fstscope/fst/results"
)

var (
	summaryDir   string // Results directory for the summary command
	perIteration bool   // Also write one analysis file per iteration
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Extract every iteration in a results directory and write the summary",
	Run: func(cmd *cobra.Command, args []string) {
		its, err := results.Run(cmd.Context(), summaryDir, analysisConfig, perIteration)
		if err != nil {
			logrus.Fatalf("summary: %v", err)
		}
		var failed int
		for _, it := range its {
			if it.Err != nil {
				failed++
				logrus.Warnf("iteration %d: %v", it.Number, it.Err)
			}
		}
		out := cmd.OutOrStdout()
		if err := report.WriteTable(out, results.Rows(its, analysisConfig)); err != nil {
			logrus.Fatalf("summary: %v", err)
		}
		fmt.Fprintf(out, "\nProcessed %d iterations (%d failed)\n", len(its), failed)
		fmt.Fprintf(out, "Detailed summary saved to: %s\n", filepath.Join(summaryDir, fst.SummaryFileName))
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryDir, "dir", ".", "Results directory")
	summaryCmd.Flags().BoolVar(&perIteration, "per-iteration", false, "Also write iterN_analysis.txt for every iteration")

	rootCmd.AddCommand(summaryCmd)
}
