package engine

import (
	"regexp"
	"strings"
)

// TextGrid reconstructs tables from plain text. Lines are split into cells on
// hard delimiters (tabs, pipes) or runs of two or more spaces; consecutive
// multi-cell lines form one table.
type TextGrid struct{}

func NewTextGrid() *TextGrid { return &TextGrid{} }

func (g *TextGrid) Name() string { return "textgrid" }

var cellSplit = regexp.MustCompile(`\t+|\s*\|\s*|\s{2,}`)

// SplitCells breaks one line into trimmed cells. Leading and trailing pipe
// borders produce empty edge cells which are dropped.
func SplitCells(line string) []string {
	parts := cellSplit.Split(strings.TrimSpace(line), -1)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Tables groups consecutive lines that split into 2+ cells. Single-cell
// lines terminate the current table; separator rules made of dashes are
// ignored entirely.
func (g *TextGrid) Tables(text string) []Table {
	var (
		tables []Table
		cur    [][]string
	)
	flush := func() {
		if len(cur) >= 2 {
			tables = append(tables, Table{Rows: cur, Engine: g.Name()})
		}
		cur = nil
	}
	for _, line := range strings.Split(text, "\n") {
		if isRuleLine(line) {
			continue
		}
		cells := SplitCells(line)
		if len(cells) >= 2 {
			cur = append(cur, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

var ruleLine = regexp.MustCompile(`^[\s\-=ـ_┌┐└┘├┤┬┴┼─│|+]+$`)

func isRuleLine(line string) bool {
	t := strings.TrimSpace(line)
	return t != "" && ruleLine.MatchString(t)
}
