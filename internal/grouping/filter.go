package grouping

import (
	"slices"

	"github.com/dukerupert/packlist/internal/model"
)

// State values accepted by Filter.ShowTheseStates.
const (
	StateChecked   = "CHECKED"
	StateUnchecked = "UNCHECKED"
)

// NoMembers in ShowTheseMembers selects items that have no members.
const NoMembers = ""

// Filter restricts which pack items are shown. An empty slice places no
// restriction on that dimension; active dimensions combine with AND.
type Filter struct {
	ShowTheseCategories []string `json:"show_these_categories"`
	ShowTheseMembers    []string `json:"show_these_members"`
	ShowTheseStates     []string `json:"show_these_states"`
}

func (f Filter) IsEmpty() bool {
	return len(f.ShowTheseCategories) == 0 && len(f.ShowTheseMembers) == 0 && len(f.ShowTheseStates) == 0
}

// Match reports whether item passes every active filter dimension.
func (f Filter) Match(item model.PackItem) bool {
	if len(f.ShowTheseCategories) > 0 && !slices.Contains(f.ShowTheseCategories, item.Category) {
		return false
	}
	if len(f.ShowTheseMembers) > 0 && !f.matchMembers(item) {
		return false
	}
	if len(f.ShowTheseStates) > 0 {
		state := StateUnchecked
		if item.Checked {
			state = StateChecked
		}
		if !slices.Contains(f.ShowTheseStates, state) {
			return false
		}
	}
	return true
}

func (f Filter) matchMembers(item model.PackItem) bool {
	if len(item.Members) == 0 {
		return slices.Contains(f.ShowTheseMembers, NoMembers)
	}
	for _, m := range item.Members {
		if slices.Contains(f.ShowTheseMembers, m.ID) {
			return true
		}
	}
	return false
}

// FilterPackItems returns the items that match f, in input order.
func FilterPackItems(items []model.PackItem, f Filter) []model.PackItem {
	out := make([]model.PackItem, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
