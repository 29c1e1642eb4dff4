package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/steiner-battery/fstscope/fst"
)

var (
	logLevel   string // Log verbosity level
	configPath string // Optional YAML analysis config

	// analysisConfig is loaded once per invocation by setup.
	analysisConfig *fst.AnalysisConfig
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fstscope",
	Short: "Telemetry extraction and iteration diffs for battery-aware FST solver runs",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := setup(); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// setup applies the log level and loads the analysis config.
func setup() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	cfg, err := fst.LoadAnalysisConfig(configPath)
	if err != nil {
		return err
	}
	analysisConfig = cfg
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up persistent flags shared by every subcommand
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML analysis config (thresholds, workers, file name templates)")
}
