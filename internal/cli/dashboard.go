package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/droughtwatch/droughtwatch/internal/config"
	"github.com/droughtwatch/droughtwatch/internal/engine"
	"github.com/droughtwatch/droughtwatch/internal/tui"
)

// NewDashboardCmd creates the "dashboard" command running the
// interactive map-and-panel session.
func NewDashboardCmd() *cobra.Command {
	var (
		dataset          string
		index            string
		skipVersionCheck bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive drought dashboard",
		Long: "Open the full-screen dashboard: feature table, severity overview, " +
			"KPI panel and month timelines, kept in sync with the server",
		Example: `  # Dashboard on the configured dataset
  droughtwatch dashboard

  # Start on a specific dataset and index
  droughtwatch dashboard --dataset basins --index spei6`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, dataset, index, skipVersionCheck)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "initial dataset (default from config or server)")
	cmd.Flags().StringVar(&index, "index", "", "initial drought index (default from config or dataset)")
	cmd.Flags().BoolVar(&skipVersionCheck, "skip-version-check", false, "skip the server API version compatibility check")

	return cmd
}

func runDashboard(cmd *cobra.Command, dataset, index string, skipVersionCheck bool) error {
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("the dashboard needs an interactive terminal; use the query commands instead")
	}

	client, cfg := apiClient(cmd)

	if !skipVersionCheck {
		if err := client.CheckVersion(cmd.Context()); err != nil {
			return fmt.Errorf("server compatibility check failed: %w", err)
		}
	}

	if dataset == "" {
		dataset = cfg.Map.Dataset
	}
	if index == "" {
		index = cfg.Map.Index
	}

	stores := newStores(cmd, cfg, logger)
	eng := engine.New(client, stores, engine.Config{
		Dataset:        dataset,
		Index:          index,
		DebounceWindow: cfg.DebounceWindow(),
		LayerLimit:     cfg.Map.LayerLimit,
	}, logger)
	defer eng.Close()

	if err := eng.Init(cmd.Context()); err != nil {
		return fmt.Errorf("load dataset catalog: %w", err)
	}

	p := tea.NewProgram(tui.NewDashboardModel(eng), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard session: %w", err)
	}
	return nil
}

// newStores builds the cache set the config asks for. A Redis backend
// that cannot be reached degrades to the in-process cache so the
// dashboard still starts.
func newStores(cmd *cobra.Command, cfg *config.Config, log zerolog.Logger) engine.Stores {
	if !cfg.Cache.Enabled {
		return engine.NewDisabledStores()
	}
	if cfg.Cache.RedisURL != "" {
		stores, err := engine.NewRedisStores(cfg.Cache.RedisURL, cfg.CacheTTL())
		if err == nil {
			return stores
		}
		log.Warn().Err(err).Msg("redis cache unavailable, using in-process cache")
		cmd.PrintErrln("Warning: redis cache unavailable, using in-process cache")
	}
	return engine.NewMemoryStores(cfg.CacheTTL(), cfg.Cache.MaxEntries)
}
