package output

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table collects rows for terminal display.
type Table struct {
	tw      table.Writer
	columns int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault

	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	tw.AppendHeader(row)
	return &Table{tw: tw, columns: len(headers)}
}

// AddRow adds a row, padding or trimming cells to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make(table.Row, t.columns)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	t.tw.AppendRow(row)
}

// AlignRight right-aligns the given 1-based columns.
func (t *Table) AlignRight(columns ...int) {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, n := range columns {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	t.tw.SetColumnConfigs(configs)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return t.tw.Length()
}

// Render returns the table as a string with a trailing newline.
func (t *Table) Render() string {
	if t.columns == 0 {
		return ""
	}
	out := t.tw.Render()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// WriteTo writes the rendered table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.Render())
	return int64(n), err
}
