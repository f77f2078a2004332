package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/config"
	"github.com/droughtwatch/droughtwatch/internal/logging"
)

// noValueCell fills table cells that have no reading.
const noValueCell = "-"

// apiClient builds the API client for one command invocation, honoring
// the configured server URL and timeout.
func apiClient(cmd *cobra.Command) (*api.Client, *config.Config) {
	cfg := configFromCmd(cmd)
	httpClient := &http.Client{Timeout: cfg.ClientTimeout()}
	client := api.NewClientWithHTTPClient(cfg.Server.URL, httpClient, logging.ComponentLogger(logger, "api"))
	return client, cfg
}

// resolveDataset fills in the dataset for one-shot commands: the flag
// wins, then the configured default, then the server's first dataset.
func resolveDataset(cmd *cobra.Command, client *api.Client, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg := configFromCmd(cmd)
	if cfg.Map.Dataset != "" {
		return cfg.Map.Dataset, nil
	}

	datasets, err := client.Datasets(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("list datasets: %w", err)
	}
	if len(datasets) == 0 {
		return "", fmt.Errorf("server has no datasets")
	}
	return datasets[0].Key, nil
}

// resolveIndex fills in the drought index: the flag wins, then the
// configured default, then the dataset's first index.
func resolveIndex(cmd *cobra.Command, client *api.Client, dataset, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg := configFromCmd(cmd)
	if cfg.Map.Index != "" {
		return cfg.Map.Index, nil
	}

	meta, err := client.DatasetMeta(cmd.Context(), dataset)
	if err != nil {
		return "", fmt.Errorf("load dataset meta: %w", err)
	}
	if len(meta.Indices) == 0 {
		return "", fmt.Errorf("dataset %q exposes no indices", dataset)
	}
	return meta.Indices[0], nil
}
