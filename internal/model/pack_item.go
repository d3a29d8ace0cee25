package model

import "slices"

// MemberPackItem is the per-member completion flag of a pack item.
type MemberPackItem struct {
	ID      string `json:"id"`
	Checked bool   `json:"checked"`
}

// PackItem is a single packable thing on a packing list. Category is empty
// for uncategorized items. Checked is the aggregate of the member flags and
// is kept in sync by the With* helpers rather than recomputed on read.
type PackItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Checked     bool             `json:"checked"`
	Members     []MemberPackItem `json:"members"`
	Category    string           `json:"category"`
	PackingList string           `json:"packing_list"`
	Rank        int              `json:"rank"`
}

func (p PackItem) RankValue() int { return p.Rank }

// Clone returns a copy that shares no memory with p.
func (p PackItem) Clone() PackItem {
	p.Members = slices.Clone(p.Members)
	if p.Members == nil {
		p.Members = []MemberPackItem{}
	}
	return p
}

func (p PackItem) HasMember(memberID string) bool {
	for _, m := range p.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// WithChecked returns a copy with the item and every member set to checked.
func (p PackItem) WithChecked(checked bool) PackItem {
	out := p.Clone()
	out.Checked = checked
	for i := range out.Members {
		out.Members[i].Checked = checked
	}
	return out
}

// WithMemberChecked returns a copy with one member's flag changed and the
// aggregate recomputed. Unknown member ids leave the item unchanged.
func (p PackItem) WithMemberChecked(memberID string, checked bool) PackItem {
	out := p.Clone()
	for i := range out.Members {
		if out.Members[i].ID == memberID {
			out.Members[i].Checked = checked
		}
	}
	out.Checked = aggregate(out.Members, out.Checked)
	return out
}

// WithMembers returns a copy assigned to exactly memberIDs. Existing member
// flags are preserved; new members start unchecked. Duplicate ids collapse.
func (p PackItem) WithMembers(memberIDs []string) PackItem {
	out := p.Clone()
	prev := make(map[string]bool, len(p.Members))
	for _, m := range p.Members {
		prev[m.ID] = m.Checked
	}
	seen := make(map[string]bool, len(memberIDs))
	members := make([]MemberPackItem, 0, len(memberIDs))
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, MemberPackItem{ID: id, Checked: prev[id]})
	}
	out.Members = members
	out.Checked = aggregate(out.Members, out.Checked)
	return out
}

// WithoutMember returns a copy with memberID removed from the item.
func (p PackItem) WithoutMember(memberID string) PackItem {
	ids := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		if m.ID != memberID {
			ids = append(ids, m.ID)
		}
	}
	return p.WithMembers(ids)
}

// AllChecked reports whether there is at least one member and all of them
// are checked.
func AllChecked(members []MemberPackItem) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if !m.Checked {
			return false
		}
	}
	return true
}

// AllUnChecked reports whether no member is checked.
func AllUnChecked(members []MemberPackItem) bool {
	for _, m := range members {
		if m.Checked {
			return false
		}
	}
	return true
}

// aggregate derives the item flag from its members; an item without members
// keeps its explicit flag.
func aggregate(members []MemberPackItem, explicit bool) bool {
	if len(members) == 0 {
		return explicit
	}
	return AllChecked(members)
}
