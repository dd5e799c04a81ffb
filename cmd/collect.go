package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/printer-harvest/internal/config"
	"github.com/sells-group/printer-harvest/internal/tabular"
)

var (
	collectBrands     string
	collectSources    string
	collectCategories string
	collectCap        int
	collectOutput     string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect listing URLs from every enabled source",
	Long: `Runs the URL phase only: every brand x category x keyword variant is searched
on each enabled source and the canonical listing URLs are written to a .csv or
.xlsx artifact.

Examples:
  harvest collect --brands HP,Canon --sources amazon,ebay
  harvest collect --categories ink --cap 20 --output ink_urls.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyHarvestFlags(cfg, collectBrands, collectSources, collectCategories, collectCap); err != nil {
			return err
		}
		output := cfg.Harvest.URLOutput
		if collectOutput != "" {
			output = collectOutput
		}
		if _, err := tabular.FormatOf(output); err != nil {
			return err
		}

		env, err := initHarvest(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		urls, err := env.Harvester.Collect(cmd.Context(), planTasks(cfg))
		if err != nil {
			return eris.Wrap(err, "collect")
		}
		if err := tabular.WriteURLs(output, urls); err != nil {
			return err
		}

		env.Harvester.Summary().Finish()
		zap.L().Info("collect: complete",
			zap.String("run_id", env.Harvester.Summary().RunID),
			zap.Int("urls", len(urls)),
			zap.String("output", output),
		)
		return printJSON(cmd.OutOrStdout(), env.Harvester.Summary())
	},
}

// applyHarvestFlags overrides config values with non-empty flag values.
func applyHarvestFlags(c *config.Config, brands, sources, categories string, perTaskCap int) error {
	if v := splitList(brands); len(v) > 0 {
		c.Harvest.Brands = v
	}
	if v := splitList(sources); len(v) > 0 {
		c.Harvest.Sources = v
	}
	if v := splitList(categories); len(v) > 0 {
		if err := restrictCategories(c, v); err != nil {
			return err
		}
	}
	if perTaskCap > 0 {
		c.Harvest.PerTaskCap = perTaskCap
	}
	return nil
}

func init() {
	collectCmd.Flags().StringVar(&collectBrands, "brands", "", "comma-separated brands (default from config)")
	collectCmd.Flags().StringVar(&collectSources, "sources", "", "comma-separated source ids (default from config)")
	collectCmd.Flags().StringVar(&collectCategories, "categories", "", "comma-separated categories to search: printer, toner, ink")
	collectCmd.Flags().IntVar(&collectCap, "cap", 0, "max URLs per source per task (0 = config value)")
	collectCmd.Flags().StringVar(&collectOutput, "output", "", "URL artifact path, .csv or .xlsx (default from config)")
	rootCmd.AddCommand(collectCmd)
}
