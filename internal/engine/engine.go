// Package engine turns section text (or source PDFs) into table grids for
// the tabular extraction stages. Engines are best-effort: an engine that
// finds nothing returns an empty slice and the caller moves on to the next
// one.
package engine

// Table is a rectangular-ish grid of trimmed cell strings. Rows may have
// differing widths; consumers index defensively.
type Table struct {
	Rows      [][]string `json:"rows"`
	PageStart int        `json:"page_start"`
	PageEnd   int        `json:"page_end"`
	Engine    string     `json:"engine"`
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.Rows) }

// Cell returns the cell at (row, col) or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// TableEngine extracts candidate tables from a chunk of section text.
type TableEngine interface {
	Name() string
	Tables(text string) []Table
}
