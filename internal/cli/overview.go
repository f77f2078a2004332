package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/droughtwatch/droughtwatch/internal/api"
)

// NewOverviewCmd creates the "overview" command showing the severity
// breakdown for one dataset, index and month.
func NewOverviewCmd() *cobra.Command {
	var (
		dataset string
		index   string
		month   string
	)

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Severity breakdown for one month",
		Long:  "Count features per drought class for a dataset, index and month (latest month when omitted)",
		Example: `  # Latest month of the default dataset
  droughtwatch overview

  # A specific month
  droughtwatch overview --dataset counties --index spi3 --month 2023-07`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOverview(cmd, dataset, index, month)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset key (default from config or server)")
	cmd.Flags().StringVar(&index, "index", "", "drought index (default from config or dataset)")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default latest)")

	return cmd
}

func runOverview(cmd *cobra.Command, datasetFlag, indexFlag, month string) error {
	client, _ := apiClient(cmd)

	dataset, err := resolveDataset(cmd, client, datasetFlag)
	if err != nil {
		return err
	}
	index, err := resolveIndex(cmd, client, dataset, indexFlag)
	if err != nil {
		return err
	}

	ov, err := client.Overview(cmd.Context(), dataset, index, month)
	if err != nil {
		return fmt.Errorf("load overview: %w", err)
	}

	p := message.NewPrinter(language.English)
	cmd.Printf("%s / %s for %s\n\n", dataset, ov.Index, ov.Date)

	const tabPadding = 2
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(w, "Class\tFeatures")
	fmt.Fprintln(w, "-----\t--------")
	for _, row := range []struct {
		class string
		count int
	}{
		{api.ClassNormalWet, ov.NormalWet},
		{api.ClassD0, ov.D0},
		{api.ClassD1, ov.D1},
		{api.ClassD2, ov.D2},
		{api.ClassD3, ov.D3},
		{api.ClassD4, ov.D4},
	} {
		fmt.Fprintf(w, "%s\t%s\n", row.class, p.Sprintf("%d", row.count))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	cmd.Printf("\n%s features with data, %s missing\n",
		p.Sprintf("%d", ov.WithValue), p.Sprintf("%d", ov.Missing))
	return nil
}
