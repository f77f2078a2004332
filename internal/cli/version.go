package cli

import (
	"github.com/spf13/cobra"

	"github.com/droughtwatch/droughtwatch/internal/api"
)

// NewVersionCmd creates the "version" command reporting the client
// build and, when reachable, the server's API version.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show client and server versions",
		Example: `  # Versions and compatibility
  droughtwatch version`,
		RunE: runVersion,
	}
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	client, _ := apiClient(cmd)

	cmd.Printf("Client:     %s\n", cmd.Root().Version)
	cmd.Printf("Supported:  API %s\n", api.SupportedAPIVersions)

	health, err := client.Health(cmd.Context())
	if err != nil {
		cmd.PrintErrf("Server:     unreachable (%v)\n", err)
		return nil
	}

	serverVersion := health.Version
	if serverVersion == "" {
		serverVersion = "unknown (predates version reporting)"
	}
	cmd.Printf("Server:     %s, API %s\n", health.Status, serverVersion)
	if health.Cache != "" {
		cmd.Printf("Cache:      %s\n", health.Cache)
	}

	if err := client.CheckVersion(cmd.Context()); err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}
	return nil
}
