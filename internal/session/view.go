package session

import (
	"slices"
	"strings"

	"github.com/dukerupert/packlist/internal/grouping"
	"github.com/dukerupert/packlist/internal/layout"
	"github.com/dukerupert/packlist/internal/model"
)

// DanglingReference is a pack item pointing at a member or category that
// is not in the session.
type DanglingReference struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Kind     string `json:"kind"`
	RefID    string `json:"ref_id"`
}

// DanglingReferences lists every reference from a pack item to a missing
// member or category.
func (s *Session) DanglingReferences() []DanglingReference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make(map[string]bool, len(s.members))
	for _, m := range s.members {
		members[m.ID] = true
	}
	categories := make(map[string]bool, len(s.categories))
	for _, c := range s.categories {
		categories[c.ID] = true
	}

	var out []DanglingReference
	for _, it := range s.items {
		if it.Category != "" && !categories[it.Category] {
			out = append(out, DanglingReference{ItemID: it.ID, ItemName: it.Name, Kind: "category", RefID: it.Category})
		}
		for _, m := range it.Members {
			if !members[m.ID] {
				out = append(out, DanglingReference{ItemID: it.ID, ItemName: it.Name, Kind: "member", RefID: m.ID})
			}
		}
	}
	return out
}

// View is the rendered state of one packing list.
type View struct {
	PackingListID string           `json:"packing_list_id"`
	Filter        grouping.Filter  `json:"filter"`
	Groups        []grouping.Group `json:"groups"`
	Rows          []layout.Row     `json:"rows"`
	Columns       []layout.Column  `json:"columns"`
	Dangling      int              `json:"dangling"`
}

// ViewOptions controls how a list is rendered. Columns is the requested
// column count; CategoriesByName orders groups alphabetically instead of by
// rank.
type ViewOptions struct {
	Filter           grouping.Filter
	Columns          int
	SelectMode       bool
	CategoriesByName bool
}

// VisibleMembers returns the member ids whose sub-rows count towards
// column weight.
func (o ViewOptions) VisibleMembers() []string {
	var out []string
	for _, id := range o.Filter.ShowTheseMembers {
		if id != grouping.NoMembers {
			out = append(out, id)
		}
	}
	return out
}

// View filters, groups, flattens and lays out the items of listID. Items
// with a missing category render as uncategorized and missing members are
// hidden, so the view is usable while DanglingReferences is non-empty.
func (s *Session) View(listID string, opts ViewOptions) View {
	filter := opts.Filter
	items := s.PackItems(listID)
	categories := s.Categories()
	if opts.CategoriesByName {
		categories = byName(categories)
	}
	members := s.Members()
	dangling := len(s.DanglingReferences())

	present := make(map[string]bool, len(members))
	for _, m := range members {
		present[m.ID] = true
	}
	for i, it := range items {
		it.Members = slices.DeleteFunc(it.Members, func(m model.MemberPackItem) bool { return !present[m.ID] })
		items[i] = it
	}

	filtered := grouping.FilterPackItems(items, filter)
	groups := grouping.GroupByCategories(filtered, categories)
	rows := layout.Flatten(groups)

	return View{
		PackingListID: listID,
		Filter:        filter,
		Groups:        groups,
		Rows:          rows,
		Columns:       layout.CreateColumns(rows, opts.Columns, opts.VisibleMembers(), opts.SelectMode),
		Dangling:      dangling,
	}
}

// byName re-ranks categories so that rank order is alphabetical.
func byName(categories []model.Category) []model.Category {
	out := slices.Clone(categories)
	slices.SortStableFunc(out, func(a, b model.Category) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	for i := range out {
		out[i].Rank = len(out) - i
	}
	return out
}
