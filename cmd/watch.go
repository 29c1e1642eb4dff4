package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/steiner-battery/fstscope/fst/results"
)

var (
	watchDir      string        // Results directory to watch
	watchDebounce time.Duration // Quiet period before a batch is processed
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate reports as a running solver writes iteration files",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := results.NewWatcher(watchDir, analysisConfig, watchDebounce)
		if err != nil {
			logrus.Fatalf("watch: %v", err)
		}
		defer w.Close()

		logrus.Infof("watching %s", watchDir)
		err = w.Run(ctx, func(iters []int) {
			refreshReports(ctx, iters)
		})
		if err != nil && ctx.Err() == nil {
			logrus.Fatalf("watch: %v", err)
		}
	},
}

func refreshReports(ctx context.Context, iters []int) {
	paths, err := results.Refresh(ctx, watchDir, analysisConfig, iters)
	if err != nil {
		logrus.Errorf("refreshing iterations %v: %v", iters, err)
		return
	}
	for _, p := range paths {
		logrus.Infof("wrote %s", p)
	}
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", ".", "Results directory")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", results.DefaultDebounce, "Quiet period before regenerating reports")

	rootCmd.AddCommand(watchCmd)
}
