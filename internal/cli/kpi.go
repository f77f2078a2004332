package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/droughtwatch/droughtwatch/internal/api"
)

// NewKPICmd creates the "kpi" command showing one feature's summary
// statistics.
func NewKPICmd() *cobra.Command {
	var (
		dataset string
		index   string
		month   string
	)

	cmd := &cobra.Command{
		Use:   "kpi <feature-id>",
		Short: "Summary statistics for one feature",
		Long:  "Show latest value, range, mean, drought class and trend for one map feature",
		Args:  cobra.ExactArgs(1),
		Example: `  # Latest KPI for a region
  droughtwatch kpi PT-11

  # KPI at a specific month
  droughtwatch kpi PT-11 --index spei6 --month 2023-07`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKPI(cmd, args[0], dataset, index, month)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset key (default from config or server)")
	cmd.Flags().StringVar(&index, "index", "", "drought index (default from config or dataset)")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default latest)")

	return cmd
}

func runKPI(cmd *cobra.Command, featureID, datasetFlag, indexFlag, month string) error {
	client, _ := apiClient(cmd)

	dataset, err := resolveDataset(cmd, client, datasetFlag)
	if err != nil {
		return err
	}
	index, err := resolveIndex(cmd, client, dataset, indexFlag)
	if err != nil {
		return err
	}

	kpi, err := client.KPI(cmd.Context(), dataset, index, featureID, month)
	if errors.Is(err, api.ErrNoData) {
		cmd.Printf("No %s data for %s.\n", index, featureID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load kpi: %w", err)
	}

	cmd.Printf("Feature:   %s (%s / %s)\n", featureID, dataset, index)
	cmd.Printf("Class:     %s\n", kpi.Severity)
	cmd.Printf("Latest:    %.2f\n", kpi.Latest)
	cmd.Printf("Range:     %.2f .. %.2f (mean %.2f)\n", kpi.Min, kpi.Max, kpi.Mean)
	cmd.Printf("Trend:     %s %s\n", kpi.Trend.Symbol, kpi.Trend.LabelEN)

	if kpi.EffectiveMonth != "" {
		line := fmt.Sprintf("Month:     %s", kpi.EffectiveMonth)
		if kpi.Note != "" && kpi.EffectiveMonth != kpi.RequestedMonth {
			line += fmt.Sprintf(" (%s, requested %s)", kpi.Note, kpi.RequestedMonth)
		}
		cmd.Println(line)
	}
	return nil
}
