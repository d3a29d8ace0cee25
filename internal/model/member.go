package model

// NamedEntity is the shape shared by members, categories and packing lists:
// a ranked, named, optionally colored document that can be marked as a
// template.
type NamedEntity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Rank       int    `json:"rank"`
	Color      string `json:"color,omitempty"`
	IsTemplate bool   `json:"is_template,omitempty"`
}

func (e NamedEntity) RankValue() int { return e.Rank }

// Member is a trip participant who can be assigned to pack items.
type Member NamedEntity

func (m Member) RankValue() int { return m.Rank }

// Category is a user-defined grouping label for pack items.
type Category NamedEntity

func (c Category) RankValue() int { return c.Rank }

type PackingList NamedEntity

func (l PackingList) RankValue() int { return l.Rank }

// Image is an uploaded picture attached to another entity, e.g. a packing
// list cover. Type names the owning collection and TypeID its document.
type Image struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	TypeID string `json:"type_id"`
	URL    string `json:"url"`
}
