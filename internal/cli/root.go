// Package cli wires the droughtwatch commands: one-shot queries against
// the drought API and the interactive dashboard.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/droughtwatch/droughtwatch/internal/config"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

type ctxKey int

const configCtxKey ctxKey = iota

// configFromCmd returns the configuration loaded by the root
// PersistentPreRunE. It panics when called before setup, which would be
// a wiring bug in a subcommand.
func configFromCmd(cmd *cobra.Command) *config.Config {
	cfg, ok := cmd.Context().Value(configCtxKey).(*config.Config)
	if !ok {
		panic("cli: configuration not loaded")
	}
	return cfg
}

// NewRootCmd creates the root Cobra command for the droughtwatch CLI.
// It loads configuration, wires logging and tracing, and registers all
// subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *loggingResult

	cmd := &cobra.Command{
		Use:          "droughtwatch",
		Short:        "Drought monitoring dashboard and API tools",
		Long:         "DroughtWatch: explore drought indices over administrative regions from the terminal",
		Version:      ver,
		Example:      rootCmdExample,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configCtxKey, cfg)
			cmd.SetContext(ctx)

			result := setupLogging(cmd, cfg)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default ~/.droughtwatch/config.yaml)")
	cmd.PersistentFlags().String("server", "", "API server URL (overrides config)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().Bool("no-cache", false, "disable response caching")

	cmd.AddCommand(
		NewDatasetsCmd(),
		NewMetaCmd(),
		NewOverviewCmd(),
		NewKPICmd(),
		NewTimeseriesCmd(),
		NewDashboardCmd(),
		newCacheCmd(),
		newConfigCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// loadConfig resolves the configuration from file, environment and
// flags, flags winning.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Server.URL = server
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const rootCmdExample = `  # Open the interactive dashboard
  droughtwatch dashboard

  # List available datasets with their coverage
  droughtwatch datasets --verbose

  # Severity breakdown for the latest month
  droughtwatch overview --dataset counties --index spi3

  # KPI card for one region
  droughtwatch kpi PT-11 --index spei6 --month 2023-07

  # Monthly values for one region
  droughtwatch timeseries PT-11 --last 24

  # Write a starter config file
  droughtwatch config init`
