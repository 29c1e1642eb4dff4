package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/steiner-battery/fstscope/fst/entity"
	"github.com/steiner-battery/fstscope/fst/report"
)

var solutionPath string // Solution log to recommend from

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the cheapest FST that fits the budget of a solution log",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(solutionPath)
		if err != nil {
			logrus.Fatalf("recommend: %v", err)
		}
		defer f.Close()
		log, err := entity.ParseSolution(f)
		if err != nil {
			logrus.Fatalf("recommend: %s: %v", solutionPath, err)
		}
		if err := report.WriteRecommendation(cmd.OutOrStdout(), log, analysisConfig); err != nil {
			logrus.Fatalf("recommend: %v", err)
		}
	},
}

func init() {
	recommendCmd.Flags().StringVar(&solutionPath, "solution", "", "Path to a solution log")
	_ = recommendCmd.MarkFlagRequired("solution")

	rootCmd.AddCommand(recommendCmd)
}
