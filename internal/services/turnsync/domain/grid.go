package domain

import (
	"fmt"
	"sort"
)

// Cell is a row/column position. Sequence slots use Row 0.
type Cell struct {
	Row int
	Col int
}

// String renders the cell as "row,col".
func (c Cell) String() string {
	return fmt.Sprintf("%d,%d", c.Row, c.Col)
}

// In reports whether the cell lies inside a rows×cols grid.
func (c Cell) In(rows, cols int) bool {
	return c.Row >= 0 && c.Row < rows && c.Col >= 0 && c.Col < cols
}

// Neighbors returns the four orthogonal neighbours in a fixed order.
func (c Cell) Neighbors() [4]Cell {
	return [4]Cell{
		{Row: c.Row - 1, Col: c.Col},
		{Row: c.Row + 1, Col: c.Col},
		{Row: c.Row, Col: c.Col - 1},
		{Row: c.Row, Col: c.Col + 1},
	}
}

// SortCells orders cells row-major in place.
func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
}

// Line enumerates length cells from start, to the right when horizontal and
// downwards otherwise.
func Line(start Cell, horizontal bool, length int) []Cell {
	if length <= 0 {
		return nil
	}
	cells := make([]Cell, length)
	for i := range cells {
		if horizontal {
			cells[i] = Cell{Row: start.Row, Col: start.Col + i}
		} else {
			cells[i] = Cell{Row: start.Row + i, Col: start.Col}
		}
	}
	return cells
}

// ConnectedGroups partitions cells into 4-connected components using a
// breadth-first traversal. Duplicates are ignored. Groups are returned
// row-major sorted, ordered by their first cell.
func ConnectedGroups(cells []Cell) [][]Cell {
	members := make(map[Cell]bool, len(cells))
	for _, c := range cells {
		members[c] = true
	}
	ordered := make([]Cell, 0, len(members))
	for c := range members {
		ordered = append(ordered, c)
	}
	SortCells(ordered)

	visited := make(map[Cell]bool, len(members))
	var groups [][]Cell
	for _, start := range ordered {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []Cell{start}
		var group []Cell
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			group = append(group, current)
			for _, next := range current.Neighbors() {
				if members[next] && !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		SortCells(group)
		groups = append(groups, group)
	}
	return groups
}
