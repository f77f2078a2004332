package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NewMetaCmd creates the "meta" command showing one dataset's details.
func NewMetaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta <dataset>",
		Short: "Show dataset metadata",
		Long:  "Show a dataset's geometry type, feature count, available indices and month coverage",
		Args:  cobra.ExactArgs(1),
		Example: `  # Inspect the counties dataset
  droughtwatch meta counties`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeta(cmd, args[0])
		},
	}
	return cmd
}

func runMeta(cmd *cobra.Command, dataset string) error {
	client, _ := apiClient(cmd)

	meta, err := client.DatasetMeta(cmd.Context(), dataset)
	if err != nil {
		return fmt.Errorf("load dataset meta: %w", err)
	}

	p := message.NewPrinter(language.English)
	cmd.Printf("Dataset:   %s\n", meta.DatasetKey)
	cmd.Printf("Title:     %s\n", meta.Title)
	cmd.Printf("Geometry:  %s\n", meta.GeomType)
	cmd.Printf("Features:  %s\n", p.Sprintf("%d", meta.FeatureCount))
	cmd.Printf("Indices:   %s\n", strings.Join(meta.Indices, ", "))
	cmd.Printf("Coverage:  %s\n", coverageString(meta.MinMonth, meta.MaxMonth))
	return nil
}
