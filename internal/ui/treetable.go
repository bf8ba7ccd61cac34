package ui

import (
	"io"
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/moviesets"
	"github.com/Nomadcxx/mediashelf/internal/tree"
)

// TreeTable builds a table from every visible node below the provider's
// root. Titles are indented by depth and check columns become marks.
func TreeTable(p tree.DataProvider[moviesets.Node], format *moviesets.TableFormat) *Table {
	headers := make([]string, len(format.Columns))
	for i, c := range format.Columns {
		headers[i] = c.Title
	}
	t := NewTable(headers...)
	for i, c := range format.Columns {
		t.SetMinWidth(i, c.MinWidth)
	}

	tree.Walk(p, func(n moviesets.Node, depth int) bool {
		if depth == 0 {
			return true
		}
		t.AddRow(RowCells(format, n, depth)...)
		return true
	})
	return t
}

// RowCells renders the cells of one node; depth 1 is a top-level node.
func RowCells(format *moviesets.TableFormat, n moviesets.Node, depth int) []string {
	values := format.Row(n)
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = Cell(format.Columns[i], v)
	}
	if len(cells) > 0 && format.Columns[0].Key == "title" {
		indent := strings.Repeat("  ", max(depth-1, 0))
		switch n.Kind {
		case moviesets.MovieSetNode:
			cells[0] = indent + Set(values[0].Text)
		case moviesets.MovieNode:
			cells[0] = indent + Movie(values[0].Text)
		}
	}
	return cells
}

// Cell renders a single value for column c.
func Cell(c moviesets.Column, v moviesets.Value) string {
	if v.Blank() {
		return ""
	}
	if c.Kind == moviesets.CheckColumn {
		return CheckMark(v.Check)
	}
	return v.Text
}

// RenderTree writes the provider's tree as a table to w.
func RenderTree(w io.Writer, p tree.DataProvider[moviesets.Node], format *moviesets.TableFormat) int {
	t := TreeTable(p, format)
	t.Render(w)
	return t.Len()
}
