package layout

import (
	"github.com/dukerupert/packlist/internal/rank"
)

// Location addresses a row by column and position within the column.
type Location struct {
	Column int `json:"column"`
	Index  int `json:"index"`
}

// DragResult describes a finished drag. Destination is nil when the row was
// dropped outside any column.
type DragResult struct {
	Source      Location  `json:"source"`
	Destination *Location `json:"destination"`
}

// Reorder moves the dragged row to its destination and rebuilds the columns
// from the resulting flat sequence. It returns nil, nil when nothing moves:
// no destination, identical source and destination, or a source that does
// not address a row. Destination indices are clamped into range. The input
// columns are not modified.
func Reorder(result DragResult, columns []Column, columnCount int, filteredMembers []string, selectMode bool) ([]Row, []Column) {
	if result.Destination == nil || len(columns) == 0 {
		return nil, nil
	}
	src, dst := result.Source, *result.Destination
	if src == dst {
		return nil, nil
	}
	if src.Column < 0 || src.Column >= len(columns) {
		return nil, nil
	}
	if src.Index < 0 || src.Index >= len(columns[src.Column]) {
		return nil, nil
	}
	dst.Column = min(max(dst.Column, 0), len(columns)-1)

	cols := make([]Column, len(columns))
	for i, c := range columns {
		cols[i] = append(Column{}, c...)
	}

	moved := cols[src.Column][src.Index]
	cols[src.Column] = append(cols[src.Column][:src.Index], cols[src.Column][src.Index+1:]...)

	target := cols[dst.Column]
	dst.Index = min(max(dst.Index, 0), len(target))
	target = append(target, Row{})
	copy(target[dst.Index+1:], target[dst.Index:])
	target[dst.Index] = moved
	cols[dst.Column] = target

	flat := Join(cols)
	return flat, CreateColumns(flat, columnCount, filteredMembers, selectMode)
}

// AssignRanks applies the reorder-commit rule to a flat sequence: row i of n
// gets rank n-i, and every item takes the category of the nearest header
// above it, or none when no header precedes it. The returned rows are copies.
func AssignRanks(flat []Row) []Row {
	out := make([]Row, len(flat))
	current := ""
	for i, r := range flat {
		rk := rank.ForRow(len(flat), i)
		switch r.Kind {
		case RowCategory:
			c := r.Category
			c.Rank = rk
			current = c.ID
			out[i] = CategoryRow(c)
		case RowItem:
			it := r.Item.Clone()
			it.Rank = rk
			it.Category = current
			out[i] = Row{Kind: RowItem, Item: it}
		}
	}
	return out
}
