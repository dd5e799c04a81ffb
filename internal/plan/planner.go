// Package plan enumerates search tasks and decides when a harvest has
// collected enough.
package plan

import (
	"github.com/sells-group/printer-harvest/internal/model"
)

// Plan returns every (brand, category, variant) task in brand-major,
// category-next, variant-minor order. Categories follow order; those missing
// from variants are skipped. A nil order means model.HarvestCategories().
func Plan(brands []string, variants map[model.Category][]string, order []model.Category) []model.SearchTask {
	if order == nil {
		order = model.HarvestCategories()
	}
	var tasks []model.SearchTask
	for _, brand := range brands {
		for _, cat := range order {
			for _, kw := range variants[cat] {
				tasks = append(tasks, model.SearchTask{Brand: brand, Category: cat, Keyword: kw})
			}
		}
	}
	return tasks
}
