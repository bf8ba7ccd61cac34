package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Table creates a formatted table for output. Cells may contain styled text;
// widths are measured in terminal cells.
type Table struct {
	headers   []string
	rows      [][]string
	minWidths []int
	maxWidth  int // Maximum total table width
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		headers:   headers,
		minWidths: make([]int, len(headers)),
		maxWidth:  120,
	}
}

// SetMaxWidth sets the maximum table width; zero disables the limit.
func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = width
}

// SetMinWidth keeps column i at least width cells wide.
func (t *Table) SetMinWidth(i, width int) {
	if i >= 0 && i < len(t.minWidths) {
		t.minWidths[i] = width
	}
}

// AddRow adds a row to the table. Missing values are blank, extra ones dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

func (t *Table) Len() int {
	return len(t.rows)
}

// widths returns the content width of every column.
func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	total := 1
	for i, h := range t.headers {
		widths[i] = max(ansi.StringWidth(h), t.minWidths[i])
		for _, row := range t.rows {
			widths[i] = max(widths[i], ansi.StringWidth(row[i]))
		}
		total += widths[i] + 3
	}

	if t.maxWidth <= 0 {
		return widths
	}
	// shrink the widest column first, never below 10 cells or its minimum
	for excess := total - t.maxWidth; excess > 0; excess-- {
		widest := 0
		for i := 1; i < len(widths); i++ {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= max(10, t.minWidths[widest]) {
			break
		}
		widths[widest]--
	}
	return widths
}

// Render writes the table with box-drawing borders.
func (t *Table) Render(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}
	widths := t.widths()

	border := func(left, mid, right string) {
		var b strings.Builder
		b.WriteString(left)
		for i, cw := range widths {
			b.WriteString(strings.Repeat("─", cw+2))
			if i < len(widths)-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		fmt.Fprintln(w, b.String())
	}
	line := func(cells []string, style func(string) string) {
		var b strings.Builder
		b.WriteString("│")
		for i, cw := range widths {
			cell := truncate(cells[i], cw)
			if style != nil {
				cell = style(cell)
			}
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", cw-ansi.StringWidth(cell)))
			b.WriteString(" │")
		}
		fmt.Fprintln(w, b.String())
	}

	border("┌", "┬", "┐")
	line(t.headers, Header)
	border("├", "┼", "┤")
	for _, row := range t.rows {
		line(row, nil)
	}
	border("└", "┴", "┘")
}

// RenderCompact writes the table without borders.
func (t *Table) RenderCompact(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}
	widths := t.widths()

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			c = truncate(c, widths[i])
			parts[i] = c + strings.Repeat(" ", widths[i]-ansi.StringWidth(c))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(t.headers)
	seps := make([]string, len(widths))
	for i, cw := range widths {
		seps[i] = strings.Repeat("─", cw)
	}
	fmt.Fprintln(w, strings.Join(seps, "  "))
	for _, row := range t.rows {
		line(row)
	}
}

// truncate shortens s to maxLen cells with an ellipsis.
func truncate(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return ansi.Truncate(s, maxLen, "")
	}
	return ansi.Truncate(s, maxLen, "…")
}
