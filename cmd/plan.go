package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/printer-harvest/internal/model"
)

var (
	planBrands     string
	planCategories string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the search tasks a run would execute",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyHarvestFlags(cfg, planBrands, "", planCategories, 0); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		tasks := planTasks(cfg)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tBRAND\tCATEGORY\tQUERY") //nolint:errcheck
		for i, t := range tasks {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, t.Brand, t.Category, t.Query()) //nolint:errcheck
		}
		if err := w.Flush(); err != nil {
			return err
		}

		targets := cfg.Harvest.CategoryTargets()
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d tasks x %d sources, cap %d per source per task\n", //nolint:errcheck
			len(tasks), len(cfg.Harvest.Sources), cfg.Harvest.PerTaskCap)
		for _, cat := range categoriesWithTargets(targets) {
			fmt.Fprintf(cmd.OutOrStdout(), "target %s: %d\n", cat, targets[cat]) //nolint:errcheck
		}
		return nil
	},
}

// categoriesWithTargets lists categories with a positive target in canonical order.
func categoriesWithTargets(targets map[model.Category]int) []model.Category {
	var out []model.Category
	for _, cat := range model.HarvestCategories() {
		if targets[cat] > 0 {
			out = append(out, cat)
		}
	}
	return out
}

func init() {
	planCmd.Flags().StringVar(&planBrands, "brands", "", "comma-separated brands (default from config)")
	planCmd.Flags().StringVar(&planCategories, "categories", "", "comma-separated categories: printer, toner, ink")
	rootCmd.AddCommand(planCmd)
}
