// Package cmd defines and implements the CLI commands for the
// bchospitals executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openbcdata/bchospitals/internal/config"
	"github.com/openbcdata/bchospitals/internal/logging"
	"github.com/openbcdata/bchospitals/internal/metrics"
)

var (
	cfgFile string

	// Populated by the root PersistentPreRunE before any subcommand runs.
	cfg    config.Config
	logger *zap.Logger
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bchospitals",
		Short: "Collects the BC hospital directory into a single dataset",
		Long: `bchospitals scrapes the public listing of British Columbia hospitals,
follows each facility's page to pull bed counts and coordinates, and
writes everything to one deduplicated, sorted CSV dataset. Companion
subcommands inspect and serve the produced file.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			metrics.Init()
			return nil
		},

		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
