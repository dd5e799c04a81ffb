package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/printer-harvest/internal/tabular"
)

var (
	extractInput  string
	extractOutput string
	extractLimit  int
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract product records from a collected URL artifact",
	Long: `Runs the detail phase only. Each URL row is routed to its source adapter
(rows without a Source are resolved by host, unknown hosts use the generic
adapter). Records without images, titles that classify as Other and duplicate
(source, brand, title) keys are skipped.

Examples:
  harvest extract
  harvest extract --input all_product_urls.xlsx --output products.xlsx --limit 100`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input := cfg.Harvest.URLOutput
		if extractInput != "" {
			input = extractInput
		}
		output := cfg.Harvest.ProductOutput
		if extractOutput != "" {
			output = extractOutput
		}
		if _, err := tabular.FormatOf(output); err != nil {
			return err
		}

		urls, err := tabular.ReadURLs(input)
		if err != nil {
			return eris.Wrap(err, "extract: read input")
		}
		if extractLimit > 0 && extractLimit < len(urls) {
			urls = urls[:extractLimit]
		}
		zap.L().Info("extract: loaded urls", zap.String("input", input), zap.Int("urls", len(urls)))

		env, err := initHarvest(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := env.Harvester.Extract(cmd.Context(), urls)
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		if err := tabular.WriteProducts(output, records); err != nil {
			return err
		}

		env.Harvester.Summary().Finish()
		return printJSON(cmd.OutOrStdout(), env.Harvester.Summary())
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractInput, "input", "", "URL artifact to read (default: harvest.url_output)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "product artifact path, .csv or .xlsx (default from config)")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "max URLs to extract (0 = all)")
	rootCmd.AddCommand(extractCmd)
}
