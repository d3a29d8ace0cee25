package layout

// Threshold is the total weight a single column holds before the layout
// spreads rows over a second column; twice this opens a third.
const Threshold = 15

type Column []Row

// CreateColumns partitions rows into display columns of roughly equal weight.
// The number of columns actually used depends on the total weight: one up to
// Threshold, two above it, and three only when three were requested and the
// weight exceeds 2*Threshold. A header never ends a column other than the
// last: it is moved to the top of the next column together with the items it
// introduces. Only headers of empty groups can end the last column.
func CreateColumns(rows []Row, columnCount int, filteredMembers []string, selectMode bool) []Column {
	total := TotalWeight(rows, filteredMembers, selectMode)
	n := effectiveColumns(columnCount, total)
	if n == 1 {
		return []Column{append(Column{}, rows...)}
	}

	chunk := max(1, ceilDiv(total, n))
	cols := make([]Column, n)
	cumulative := 0
	for _, r := range rows {
		cumulative += r.Weight(filteredMembers, selectMode)
		idx := min(max(ceilDiv(cumulative, chunk)-1, 0), n-1)
		cols[idx] = append(cols[idx], r)
	}

	for i := 0; i < n-1; i++ {
		for len(cols[i]) > 0 && cols[i][len(cols[i])-1].Kind == RowCategory {
			last := cols[i][len(cols[i])-1]
			cols[i] = cols[i][:len(cols[i])-1]
			cols[i+1] = append(Column{last}, cols[i+1]...)
		}
	}
	for i := range cols {
		if cols[i] == nil {
			cols[i] = Column{}
		}
	}
	return cols
}

func effectiveColumns(requested, totalWeight int) int {
	switch {
	case requested <= 1:
		return 1
	case requested == 3 && totalWeight > 2*Threshold:
		return 3
	case totalWeight > Threshold:
		return 2
	default:
		return 1
	}
}

// Join concatenates columns back into one ordered row sequence.
func Join(cols []Column) []Row {
	var rows []Row
	for _, c := range cols {
		rows = append(rows, c...)
	}
	return rows
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
