package display

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Table is an aligned text table. Widths count runes, so Turkish place
// names line up.
type Table struct {
	headers   []string
	rows      [][]string
	highlight int
}

// NewTable creates a table with the given headers and no highlighted row.
func NewTable(headers []string) *Table {
	return &Table{headers: headers, highlight: -1}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// SetHighlightRow marks row idx (0-based) with the accent color; -1 clears it.
func (t *Table) SetHighlightRow(idx int) {
	t.highlight = idx
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Render returns the table indented by two spaces, one line per row.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(joinCells(t.headers, widths)) + "\n")

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(rules, "  ")) + "\n")

	for i, row := range t.rows {
		line := joinCells(row, widths)
		if i == t.highlight {
			line = Accent(line)
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

// joinCells pads each cell to its column width. fmt widths are in runes.
func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = fmt.Sprintf("%-*s", w, cell)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
