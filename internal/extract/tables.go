package extract

import (
	"regexp"
	"strings"

	"github.com/a3tai/msds-extract/internal/engine"
	"github.com/a3tai/msds-extract/internal/template"
)

var defaultCAS = regexp.MustCompile(template.DefaultCASRegex)

// tableColumns holds the resolved column indexes for one composition table.
type tableColumns struct {
	name, cas, conc int // -1 when unresolved
}

// pickColumns resolves name/cas/conc columns: header aliases first, then a
// content vote where the column with the most CAS-shaped (or
// concentration-shaped) cells wins.
func pickColumns(tbl engine.Table, rules template.CompositionRules, casRe *regexp.Regexp) tableColumns {
	cols := tableColumns{name: -1, cas: -1, conc: -1}
	if tbl.NumRows() == 0 {
		return cols
	}
	header := tbl.Rows[0]
	match := func(aliases []string, cell string) bool {
		for _, a := range aliases {
			re, err := regexp.Compile(a)
			if err != nil {
				continue
			}
			if re.MatchString(cell) {
				return true
			}
		}
		return false
	}
	for i, cell := range header {
		switch {
		case cols.name < 0 && match(rules.HeaderAliases["name"], cell):
			cols.name = i
		case cols.cas < 0 && match(rules.HeaderAliases["cas"], cell):
			cols.cas = i
		case cols.conc < 0 && match(rules.HeaderAliases["conc"], cell):
			cols.conc = i
		}
	}
	width := 0
	for _, r := range tbl.Rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if cols.cas < 0 {
		cols.cas = voteColumn(tbl, width, func(cell string) bool { return casRe.MatchString(cell) })
	}
	if cols.conc < 0 {
		cols.conc = voteColumn(tbl, width, func(cell string) bool {
			c := ParseConcentration(cell, "", rules.Concentration.DefaultUnit)
			return c != nil && !casRe.MatchString(cell)
		})
	}
	return cols
}

// voteColumn returns the column index with the most body cells satisfying
// pred, or -1 when no cell does.
func voteColumn(tbl engine.Table, width int, pred func(string) bool) int {
	best, bestScore := -1, 0
	for col := 0; col < width; col++ {
		score := 0
		for row := 1; row < tbl.NumRows(); row++ {
			if pred(tbl.Cell(row, col)) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = col, score
		}
	}
	return best
}

// tableRows reads ingredient rows from one reconstructed table. Rows without
// a CAS number anywhere are skipped; a stop-row pattern ends the table.
func tableRows(tbl engine.Table, rules template.CompositionRules, casRe *regexp.Regexp) []Ingredient {
	var stops []*regexp.Regexp
	for _, p := range rules.StopRowPatterns {
		if re, err := regexp.Compile(p); err == nil {
			stops = append(stops, re)
		}
	}
	cols := pickColumns(tbl, rules, casRe)

	var out []Ingredient
	for i := 1; i < tbl.NumRows(); i++ {
		rowStr := strings.Join(tbl.Rows[i], " | ")
		stopped := false
		for _, re := range stops {
			if re.MatchString(rowStr) {
				stopped = true
				break
			}
		}
		if stopped {
			break
		}

		cas := ""
		if cols.cas >= 0 {
			if m := casRe.FindStringSubmatch(tbl.Cell(i, cols.cas)); m != nil {
				cas = m[len(m)-1]
			}
		}
		if cas == "" {
			if m := casRe.FindStringSubmatch(rowStr); m != nil {
				cas = m[len(m)-1]
			}
		}
		if cas == "" {
			continue
		}

		row := Ingredient{CAS: cas, Source: "table:" + tbl.Engine}
		if cols.name >= 0 {
			row.Name = strings.TrimSpace(tbl.Cell(i, cols.name))
		}
		concCell := ""
		if cols.conc >= 0 {
			concCell = strings.TrimSpace(tbl.Cell(i, cols.conc))
		}
		if concCell != "" {
			c := ParseConcentration(concCell, cas, rules.Concentration.DefaultUnit)
			if c == nil && strings.ContainsAny(concCell, "0123456789") {
				c = ParseConcentration(concCell+rules.Concentration.DefaultUnit, cas, rules.Concentration.DefaultUnit)
			}
			if c != nil {
				c.fill(&row)
			} else {
				row.ConcRaw = concCell
			}
		}
		out = append(out, row)
	}
	return out
}
