package cli

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/droughtwatch/droughtwatch/internal/api"
)

// metaConcurrency bounds parallel meta lookups in verbose mode.
const metaConcurrency = 4

// NewDatasetsCmd creates the "datasets" command listing the server's
// dataset catalog.
func NewDatasetsCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List available datasets",
		Long:  "List the datasets the server can render, with their geometry type and month coverage",
		Example: `  # List datasets
  droughtwatch datasets

  # Include feature counts and indices
  droughtwatch datasets --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDatasets(cmd, verbose)
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show feature counts and available indices")

	return cmd
}

func runDatasets(cmd *cobra.Command, verbose bool) error {
	client, _ := apiClient(cmd)

	datasets, err := client.Datasets(cmd.Context())
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}
	if len(datasets) == 0 {
		cmd.Println("No datasets available.")
		return nil
	}

	metas := map[string]*api.DatasetMeta{}
	if verbose {
		metas, err = fetchAllMeta(cmd, client, datasets)
		if err != nil {
			return err
		}
	}

	const tabPadding = 2
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
	p := message.NewPrinter(language.English)

	if verbose {
		fmt.Fprintln(w, "Key\tTitle\tGeometry\tCoverage\tFeatures\tIndices")
		fmt.Fprintln(w, "---\t-----\t--------\t--------\t--------\t-------")
	} else {
		fmt.Fprintln(w, "Key\tTitle\tGeometry\tCoverage")
		fmt.Fprintln(w, "---\t-----\t--------\t--------")
	}

	for _, d := range datasets {
		coverage := coverageString(d.MinMonth, d.MaxMonth)
		if !verbose {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Key, d.Title, d.GeomType, coverage)
			continue
		}
		features, indices := "?", "?"
		if meta := metas[d.Key]; meta != nil {
			features = p.Sprintf("%d", meta.FeatureCount)
			indices = strings.Join(meta.Indices, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", d.Key, d.Title, d.GeomType, coverage, features, indices)
	}

	return w.Flush()
}

// fetchAllMeta loads per-dataset metadata concurrently. A failed lookup
// leaves a gap in the table instead of failing the listing.
func fetchAllMeta(
	cmd *cobra.Command,
	client *api.Client,
	datasets []api.DatasetInfo,
) (map[string]*api.DatasetMeta, error) {
	var mu sync.Mutex
	metas := make(map[string]*api.DatasetMeta, len(datasets))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(metaConcurrency)

	var failed []string
	for _, d := range datasets {
		g.Go(func() error {
			meta, err := client.DatasetMeta(ctx, d.Key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, d.Key)
				return nil
			}
			metas[d.Key] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		cmd.PrintErrf("Warning: no metadata for %s\n", strings.Join(failed, ", "))
	}
	return metas, nil
}

func coverageString(minMonth, maxMonth string) string {
	if minMonth == "" || maxMonth == "" {
		return noValueCell
	}
	return minMonth + " .. " + maxMonth
}
