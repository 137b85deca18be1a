package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// TableColumn defines one column of a rendered table.
type TableColumn struct {
	Name  string
	Width int
}

// Table renders fixed-width rows with a styled header.
type Table struct {
	w       io.Writer
	columns []TableColumn
}

// NewTable creates a table writing to w.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	return &Table{w: w, columns: columns}
}

// WriteHeader writes the header row.
func (t *Table) WriteHeader() {
	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		cells[i] = pad(col.Name, col.Width)
	}
	_, _ = fmt.Fprintln(t.w, StyleBold.Render(strings.Join(cells, "  ")))
}

// WriteRow writes one data row. Missing values render empty; oversized
// values are truncated with an ellipsis.
func (t *Table) WriteRow(values ...string) {
	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		cells[i] = pad(value, col.Width)
	}
	_, _ = fmt.Fprintln(t.w, strings.TrimRight(strings.Join(cells, "  "), " "))
}

// pad truncates or right-pads value to width display cells.
func pad(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) > width {
		value = runewidth.Truncate(value, width, "…")
	}
	return runewidth.FillRight(value, width)
}
