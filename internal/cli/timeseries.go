package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/droughtwatch/droughtwatch/internal/api"
)

// monthLen is the "YYYY-MM" prefix of a point's date.
const monthLen = 7

// NewTimeseriesCmd creates the "timeseries" command listing a feature's
// monthly values.
func NewTimeseriesCmd() *cobra.Command {
	var (
		dataset string
		index   string
		last    int
	)

	cmd := &cobra.Command{
		Use:   "timeseries <feature-id>",
		Short: "Monthly values for one feature",
		Long:  "List a feature's monthly index values; months inside the coverage window without a reading show a dash",
		Args:  cobra.ExactArgs(1),
		Example: `  # Full history for a region
  droughtwatch timeseries PT-11

  # Only the last two years
  droughtwatch timeseries PT-11 --last 24`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeseries(cmd, args[0], dataset, index, last)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset key (default from config or server)")
	cmd.Flags().StringVar(&index, "index", "", "drought index (default from config or dataset)")
	cmd.Flags().IntVar(&last, "last", 0, "show only the last N months (0 = all)")

	return cmd
}

func runTimeseries(cmd *cobra.Command, featureID, datasetFlag, indexFlag string, last int) error {
	client, _ := apiClient(cmd)

	dataset, err := resolveDataset(cmd, client, datasetFlag)
	if err != nil {
		return err
	}
	index, err := resolveIndex(cmd, client, dataset, indexFlag)
	if err != nil {
		return err
	}

	series, err := client.Timeseries(cmd.Context(), dataset, index, featureID)
	if err != nil {
		return fmt.Errorf("load timeseries: %w", err)
	}
	if len(series.Data) == 0 {
		cmd.Printf("No %s data for %s.\n", index, featureID)
		return nil
	}

	data := series.Data
	if last > 0 && len(data) > last {
		data = data[len(data)-last:]
	}

	standardized := api.IsStandardizedIndex(index)

	const tabPadding = 2
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
	if standardized {
		fmt.Fprintln(w, "Month\tValue\tClass")
		fmt.Fprintln(w, "-----\t-----\t-----")
	} else {
		fmt.Fprintln(w, "Month\tValue")
		fmt.Fprintln(w, "-----\t-----")
	}

	withData := 0
	for _, point := range data {
		month := point.Date
		if len(month) > monthLen {
			month = month[:monthLen]
		}
		if point.Value == nil {
			if standardized {
				fmt.Fprintf(w, "%s\t%s\t\n", month, noValueCell)
			} else {
				fmt.Fprintf(w, "%s\t%s\n", month, noValueCell)
			}
			continue
		}
		withData++
		if standardized {
			fmt.Fprintf(w, "%s\t%.2f\t%s\n", month, *point.Value, api.DroughtClass(*point.Value))
		} else {
			fmt.Fprintf(w, "%s\t%.2f\n", month, *point.Value)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	cmd.Printf("\n%d of %d months with data (coverage %s)\n",
		withData, len(data), coverageString(series.MinMonth, series.MaxMonth))
	return nil
}
