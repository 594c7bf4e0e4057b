// fesweep drives parametric finite-element sweeps: it varies one load
// parameter over a range, re-solves the model at each step through the
// external solver backend, and assembles the tabular/visual report.
package main

import (
	"fmt"
	"os"

	"fesweep/internal/config"
	"fesweep/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Loaded in PersistentPreRunE, shared by all subcommands.
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fesweep",
	Short: "Parametric FE sweep orchestrator",
	Long: `fesweep orchestrates repeated invocations of an external finite-element
solver: it varies one physical load parameter over a range, rebuilds the
model and re-solves at each step, harvests scalar and field results under
partial-failure tolerance, and assembles a structured report (workbook,
summary statistics, comparison plots, contour-image animations).

The solver backend is an external collaborator; the built-in simulated
backend (--dry-run, or solver mode "sim") rehearses a sweep end to end
without a solver license.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		debug := verbose || cfg.Logging.Debug
		logger, err = logging.New(debug)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(kindsCmd)
	rootCmd.AddCommand(historyCmd)
}
