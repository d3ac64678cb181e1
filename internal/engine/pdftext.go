package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// rowTolerance is how far apart (in points) two text fragments may sit
// vertically and still count as the same visual row.
const rowTolerance = 3.0

// PDFReader pulls page text out of PDF files via ledongthuc/pdf. Fragments
// are clustered by baseline into rows; wide horizontal gaps inside a row
// become cell boundaries when reconstructing tables.
type PDFReader struct {
	log *zap.Logger
}

func NewPDFReader(log *zap.Logger) *PDFReader {
	if log == nil {
		log = zap.NewNop()
	}
	return &PDFReader{log: log}
}

type fragment struct {
	s    string
	x, y float64
	w    float64
}

// ExtractText renders the whole document as plain text with a
// "---- PAGE <n> ----" marker ahead of every page, which is the input format
// the rest of the pipeline expects.
func (r *PDFReader) ExtractText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdf open %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			r.log.Warn("null page skipped", zap.String("file", path), zap.Int("page", pageNum))
			continue
		}
		fmt.Fprintf(&sb, "---- PAGE %d ----\n", pageNum)
		for _, row := range pageRows(page) {
			// tab separators survive normalization, so TextGrid can still
			// rebuild these columns downstream
			sb.WriteString(rowText(row, "\t"))
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// PageTables rebuilds table candidates for one page from fragment geometry.
// Rows with 2+ cells that stack consecutively form a table.
func (r *PDFReader) PageTables(path string, pageNum int) ([]Table, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdf open %s: %w", path, err)
	}
	defer f.Close()

	if pageNum < 1 || pageNum > reader.NumPage() {
		return nil, fmt.Errorf("pdf page %d out of range (1..%d)", pageNum, reader.NumPage())
	}
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	var (
		tables []Table
		cur    [][]string
	)
	flush := func() {
		if len(cur) >= 2 {
			tables = append(tables, Table{Rows: cur, PageStart: pageNum, PageEnd: pageNum, Engine: "pdftext"})
		}
		cur = nil
	}
	for _, row := range pageRows(page) {
		cells := rowCells(row)
		if len(cells) >= 2 {
			cur = append(cur, cells)
			continue
		}
		flush()
	}
	flush()
	return tables, nil
}

// pageRows clusters a page's text fragments into visual rows, top to bottom,
// each row sorted left to right.
func pageRows(page pdf.Page) [][]fragment {
	content := page.Content()
	frags := make([]fragment, 0, len(content.Text))
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		frags = append(frags, fragment{s: t.S, x: t.X, y: t.Y, w: t.W})
	}
	sort.Slice(frags, func(i, j int) bool {
		if frags[i].y != frags[j].y {
			return frags[i].y > frags[j].y // PDF y grows upward
		}
		return frags[i].x < frags[j].x
	})

	var rows [][]fragment
	for _, fr := range frags {
		if n := len(rows); n > 0 && math.Abs(rows[n-1][0].y-fr.y) <= rowTolerance {
			rows[n-1] = append(rows[n-1], fr)
			continue
		}
		rows = append(rows, []fragment{fr})
	}
	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].x < row[j].x })
	}
	return rows
}

// rowText joins one row's fragments, inserting sep at wide gaps so column
// structure survives into the plain-text rendering.
func rowText(row []fragment, sep string) string {
	var sb strings.Builder
	for i, fr := range row {
		if i > 0 {
			if gapIsColumn(row[i-1], fr) {
				sb.WriteString(sep)
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(fr.s)
	}
	return sb.String()
}

func rowCells(row []fragment) []string {
	var cells []string
	var cell strings.Builder
	for i, fr := range row {
		if i > 0 && gapIsColumn(row[i-1], fr) {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		} else if i > 0 {
			cell.WriteByte(' ')
		}
		cell.WriteString(fr.s)
	}
	if s := strings.TrimSpace(cell.String()); s != "" {
		cells = append(cells, s)
	}
	return cells
}

// gapIsColumn reports whether the horizontal gap between two adjacent
// fragments is wide enough to be a column boundary rather than word spacing.
func gapIsColumn(prev, next fragment) bool {
	return next.x-(prev.x+prev.w) > 8.0
}
