// Package rank assigns the integer ranks that order members, categories,
// packing lists and pack items. Higher ranks sort first everywhere; ties keep
// their original (insertion) order.
package rank

import (
	"cmp"
	"slices"

	"github.com/dukerupert/packlist/internal/model"
)

// Ranked is implemented by every ordered entity.
type Ranked interface {
	RankValue() int
}

// OnTop returns a rank that places a new entity above everything in items,
// or 0 when items is empty.
func OnTop[T Ranked](items []T) int {
	if len(items) == 0 {
		return 0
	}
	top := items[0].RankValue()
	for _, it := range items[1:] {
		top = max(top, it.RankValue())
	}
	return top + 1
}

// BottomOfCategory returns a rank below every item already in category, or 0
// when the category has no items.
func BottomOfCategory(items []model.PackItem, category string) int {
	found := false
	bottom := 0
	for _, it := range items {
		if it.Category != category {
			continue
		}
		if !found || it.Rank < bottom {
			bottom = it.Rank
			found = true
		}
	}
	if !found {
		return 0
	}
	return bottom - 1
}

// ForRow is the reorder-commit rule: row index i of total rows gets
// total-i, so ranks strictly decrease from top to bottom.
func ForRow(total, index int) int {
	return total - index
}

// Sorted returns a copy of items sorted by descending rank. The sort is
// stable, so equal ranks keep their input order.
func Sorted[T Ranked](items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(b.RankValue(), a.RankValue())
	})
	return out
}
