package cli

import (
	"github.com/spf13/cobra"

	"github.com/droughtwatch/droughtwatch/internal/config"
	"github.com/droughtwatch/droughtwatch/internal/engine/cache"
)

// newConfigCmd groups configuration commands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the droughtwatch configuration",
	}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}

// NewConfigInitCmd creates the "config init" command writing a starter
// configuration file.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long:  "Write a commented configuration file with the defaults filled in",
		Example: `  # Create ~/.droughtwatch/config.yaml
  droughtwatch config init

  # Overwrite an existing file
  droughtwatch config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}

	if err := config.WriteStarter(path, force); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}

// NewConfigValidateCmd creates the "config validate" command.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long:  "Check the configuration file plus environment overrides for errors",
		Example: `  # Validate the active configuration
  droughtwatch config validate

  # Show the resolved values too
  droughtwatch config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the resolved configuration")

	return cmd
}

func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	// The root PersistentPreRunE already loaded and validated; failures
	// would have aborted before reaching this command. Re-resolve here
	// so --verbose shows exactly what was loaded.
	cfg := configFromCmd(cmd)

	cmd.Println("Configuration is valid.")

	if !verbose {
		return nil
	}

	cmd.Println()
	cmd.Printf("Server:    %s (timeout %ds)\n", cfg.Server.URL, cfg.Server.TimeoutSeconds)
	if cfg.Map.Dataset != "" || cfg.Map.Index != "" {
		cmd.Printf("Start on:  dataset %q, index %q\n", cfg.Map.Dataset, cfg.Map.Index)
	}
	cmd.Printf("Debounce:  %s\n", cfg.DebounceWindow())
	cmd.Printf("Layer cap: %d features\n", cfg.Map.LayerLimit)

	switch {
	case !cfg.Cache.Enabled:
		cmd.Println("Cache:     disabled")
	case cfg.Cache.RedisURL != "":
		cmd.Printf("Cache:     redis (%s), TTL %s\n", cfg.Cache.RedisURL, cache.FormatDuration(cfg.CacheTTL()))
	default:
		cmd.Printf("Cache:     memory, TTL %s, %d entries per resource\n",
			cache.FormatDuration(cfg.CacheTTL()), cfg.Cache.MaxEntries)
	}

	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = "stderr"
	}
	cmd.Printf("Logging:   %s %s to %s\n", cfg.Logging.Level, cfg.Logging.Format, logFile)
	return nil
}
