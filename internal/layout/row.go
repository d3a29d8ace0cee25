// Package layout flattens grouped pack items into rows, balances the rows
// into display columns and resolves drag-and-drop moves between them.
package layout

import (
	"slices"

	"github.com/dukerupert/packlist/internal/grouping"
	"github.com/dukerupert/packlist/internal/model"
)

type RowKind int

const (
	RowCategory RowKind = iota
	RowItem
)

func (k RowKind) String() string {
	switch k {
	case RowCategory:
		return "category"
	case RowItem:
		return "item"
	default:
		return "unknown"
	}
}

// Row is one line of the flattened list: a category header or a pack item.
// Only the field matching Kind is set.
type Row struct {
	Kind     RowKind        `json:"kind"`
	Category model.Category `json:"category,omitzero"`
	Item     model.PackItem `json:"item,omitzero"`
}

func CategoryRow(c model.Category) Row {
	return Row{Kind: RowCategory, Category: c}
}

func ItemRow(it model.PackItem) Row {
	return Row{Kind: RowItem, Item: it.Clone()}
}

// Key identifies the row across re-renders.
func (r Row) Key() string {
	if r.Kind == RowCategory {
		return "category:" + r.Category.ID
	}
	return "item:" + r.Item.ID
}

// Size is 1 for a header and 1 plus one sub-row per member for an item.
func (r Row) Size() int {
	if r.Kind == RowCategory {
		return 1
	}
	return 1 + len(r.Item.Members)
}

// Weight is the height the row occupies on screen: member sub-rows are hidden
// in select mode and limited to filteredMembers when that list is non-empty.
func (r Row) Weight(filteredMembers []string, selectMode bool) int {
	if r.Kind == RowCategory || selectMode {
		return 1
	}
	if len(filteredMembers) == 0 {
		return r.Size()
	}
	visible := 0
	for _, m := range r.Item.Members {
		if slices.Contains(filteredMembers, m.ID) {
			visible++
		}
	}
	return 1 + visible
}

// Flatten emits a header row for every group followed by the group's items,
// keeping group and item order. Empty category groups keep their header so
// items can be dragged under them; only an empty uncategorized group at the
// end is left out.
func Flatten(groups []grouping.Group) []Row {
	var rows []Row
	for i, g := range groups {
		if len(g.PackItems) == 0 && g.IsUncategorized() && i == len(groups)-1 {
			continue
		}
		rows = append(rows, CategoryRow(g.Category))
		for _, it := range g.PackItems {
			rows = append(rows, ItemRow(it))
		}
	}
	return rows
}

// TotalWeight sums Weight over rows.
func TotalWeight(rows []Row, filteredMembers []string, selectMode bool) int {
	total := 0
	for _, r := range rows {
		total += r.Weight(filteredMembers, selectMode)
	}
	return total
}
