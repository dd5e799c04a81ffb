package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/source"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered source adapters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg := source.DefaultRegistry(sourceOptions(cfg))
		enabled := make(map[model.SourceID]bool)
		for _, id := range cfg.Harvest.SourceIDs() {
			enabled[id] = true
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tENABLED\tEXCLUDED PATHS") //nolint:errcheck
		exclusions := cfg.Harvest.Exclusions()
		for _, id := range reg.IDs() {
			fmt.Fprintf(w, "%s\t%t\t%d\n", id, enabled[id], len(exclusions[id])) //nolint:errcheck
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
