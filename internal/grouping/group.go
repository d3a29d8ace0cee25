// Package grouping filters pack items and groups them by category for
// display.
package grouping

import (
	"github.com/dukerupert/packlist/internal/model"
	"github.com/dukerupert/packlist/internal/rank"
)

// Uncategorized is the sentinel category of the always-present group that
// holds items without a category.
var Uncategorized = model.Category{ID: "", Name: "Uncategorized"}

type Group struct {
	Category  model.Category   `json:"category"`
	PackItems []model.PackItem `json:"pack_items"`
}

func (g Group) IsUncategorized() bool {
	return g.Category.ID == Uncategorized.ID
}

// GroupByCategories returns one group per category ordered by descending
// category rank, followed by the uncategorized group. Items inside a group
// are ordered by descending rank. Every item lands in exactly one group;
// items whose category is unknown are shown as uncategorized.
func GroupByCategories(items []model.PackItem, categories []model.Category) []Group {
	sortedCats := rank.Sorted(categories)
	groups := make([]Group, 0, len(sortedCats)+1)
	index := make(map[string]int, len(sortedCats))
	for _, c := range sortedCats {
		if c.ID == Uncategorized.ID {
			continue
		}
		if _, dup := index[c.ID]; dup {
			continue
		}
		index[c.ID] = len(groups)
		groups = append(groups, Group{Category: c, PackItems: []model.PackItem{}})
	}
	uncategorized := len(groups)
	groups = append(groups, Group{Category: Uncategorized, PackItems: []model.PackItem{}})

	for _, it := range rank.Sorted(items) {
		i, ok := index[it.Category]
		if !ok {
			i = uncategorized
		}
		groups[i].PackItems = append(groups[i].PackItems, it)
	}
	return groups
}
