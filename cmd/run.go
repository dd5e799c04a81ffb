package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/printer-harvest/internal/harvest"
	"github.com/sells-group/printer-harvest/internal/tabular"
)

var (
	runBrands        string
	runSources       string
	runCategories    string
	runCap           int
	runURLOutput     string
	runProductOutput string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect URLs then extract products in one pass",
	Long: `Runs both phases. The URL artifact is written as soon as collection ends,
then the product artifact after extraction. Both are full overwrites. The run
summary is printed to stdout as JSON.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyHarvestFlags(cfg, runBrands, runSources, runCategories, runCap); err != nil {
			return err
		}
		sink := harvest.FileSink{URLPath: cfg.Harvest.URLOutput, ProductPath: cfg.Harvest.ProductOutput}
		if runURLOutput != "" {
			sink.URLPath = runURLOutput
		}
		if runProductOutput != "" {
			sink.ProductPath = runProductOutput
		}
		for _, p := range []string{sink.URLPath, sink.ProductPath} {
			if _, err := tabular.FormatOf(p); err != nil {
				return err
			}
		}

		env, err := initHarvest(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		if _, err := env.Harvester.Run(cmd.Context(), planTasks(cfg), sink); err != nil {
			return eris.Wrap(err, "run")
		}
		return printJSON(cmd.OutOrStdout(), env.Harvester.Summary())
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	runCmd.Flags().StringVar(&runBrands, "brands", "", "comma-separated brands (default from config)")
	runCmd.Flags().StringVar(&runSources, "sources", "", "comma-separated source ids (default from config)")
	runCmd.Flags().StringVar(&runCategories, "categories", "", "comma-separated categories to search: printer, toner, ink")
	runCmd.Flags().IntVar(&runCap, "cap", 0, "max URLs per source per task (0 = config value)")
	runCmd.Flags().StringVar(&runURLOutput, "url-output", "", "URL artifact path (default from config)")
	runCmd.Flags().StringVar(&runProductOutput, "output", "", "product artifact path (default from config)")
	rootCmd.AddCommand(runCmd)
}
