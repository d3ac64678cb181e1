package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/msds-extract/internal/engine"
	"github.com/a3tai/msds-extract/internal/template"
)

var (
	exposureHint = regexp.MustCompile(`(?i)(?:국내기준|개인보호구|노출기준|\bACGIH\b|\bTWA\b|\bSTEL\b)`)
	anyConcHint  = regexp.MustCompile(`\d+\s*%|\d+\s*[~–\-]\s*\d+`)
)

// CompositionExtractor runs the three-stage composition cascade over a
// section body: reconstructed tables, vendor block layouts, and finally a
// CAS-anchored line parse.
type CompositionExtractor struct {
	engines []engine.TableEngine
	log     *zap.Logger
}

func NewCompositionExtractor(engines []engine.TableEngine, log *zap.Logger) *CompositionExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompositionExtractor{engines: engines, log: log}
}

// trimBody applies blocker patterns and the exposure-table heuristic before
// any parsing: text after the first blocker is dropped, and a body that
// reads like an exposure-limit table with no percentages is discarded
// entirely.
func trimBody(body string, rules template.CompositionRules, diags *[]string) string {
	for _, p := range rules.BlockerPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(body); loc != nil {
			*diags = append(*diags, "composition: blocker matched, body truncated")
			body = strings.TrimRight(body[:loc[0]], " \n")
			break
		}
	}
	if exposureHint.MatchString(body) && !anyConcHint.MatchString(body) {
		*diags = append(*diags, "composition: looks like exposure table, body dropped")
		return ""
	}
	return body
}

// dropNoise removes lines matched by the profile's cleanup patterns.
func dropNoise(body string, cleanup template.CleanupRules) string {
	if len(cleanup.DropLinePatterns) == 0 {
		return body
	}
	var res []*regexp.Regexp
	for _, p := range cleanup.DropLinePatterns {
		if re, err := regexp.Compile(p); err == nil {
			res = append(res, re)
		}
	}
	if len(res) == 0 {
		return body
	}
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, ln := range lines {
		drop := false
		for _, re := range res {
			if re.MatchString(ln) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, ln)
		}
	}
	return strings.Join(kept, "\n")
}

// Extract produces the deduplicated ingredient list for one composition
// section body, plus lines that carried a CAS number but no parseable
// concentration, plus diagnostics.
func (e *CompositionExtractor) Extract(body string, tpl *template.Template) (rows []Ingredient, missed []string, diags []string) {
	rules := tpl.Composition
	casRe, err := regexp.Compile(rules.CASRegex)
	if err != nil {
		diags = append(diags, "composition: invalid cas regex, using default")
		casRe = defaultCAS
	}

	body = dropNoise(body, tpl.Cleanup)
	body = trimBody(body, rules, &diags)
	if strings.TrimSpace(body) == "" {
		return nil, nil, diags
	}

	// stage 1: tables
	for _, eng := range orderEngines(e.engines, rules.EngineOrder) {
		got := 0
		for _, tbl := range eng.Tables(body) {
			tr := tableRows(tbl, rules, casRe)
			rows = append(rows, tr...)
			got += len(tr)
		}
		if got > 0 {
			e.log.Debug("composition table rows", zap.String("engine", eng.Name()), zap.Int("rows", got))
			break
		}
	}

	// stage 2: declared block layouts
	if len(rows) == 0 && rules.Block.Mode != "" {
		rows = blockRows(body, rules, casRe)
		if len(rows) > 0 {
			diags = append(diags, "composition: block layout matched ("+rules.Block.Mode+")")
		}
	}

	// stage 3: generic text parse. Stacked column labels, then labeled
	// vertical records, then the loose CAS-anchored line sweep. The sweep is
	// last because its name guesses are bogus on the structured layouts.
	if len(rows) == 0 {
		rows = stackedHeaderRows(body, rules, casRe)
		if len(rows) > 0 {
			diags = append(diags, "composition: stacked header layout matched")
		}
	}
	if len(rows) == 0 {
		rows = labelAnchoredRows(body, rules, casRe)
		if len(rows) > 0 {
			diags = append(diags, "composition: labeled layout matched")
		}
	}
	if len(rows) == 0 {
		rows, missed = lineRows(body, rules, casRe)
	}

	rows = filterRows(rows, rules)
	rows = dedupRows(rows)
	return rows, missed, diags
}

// orderEngines applies the profile's declared engine order; engines the
// profile does not mention run last in their configured order.
func orderEngines(engines []engine.TableEngine, order []string) []engine.TableEngine {
	if len(order) == 0 {
		return engines
	}
	byName := make(map[string]engine.TableEngine, len(engines))
	for _, e := range engines {
		byName[e.Name()] = e
	}
	var out []engine.TableEngine
	seen := map[string]bool{}
	for _, n := range order {
		if e, ok := byName[n]; ok && !seen[n] {
			out = append(out, e)
			seen[n] = true
		}
	}
	for _, e := range engines {
		if !seen[e.Name()] {
			out = append(out, e)
		}
	}
	return out
}

// lineRows walks the body line by line. Every CAS hit becomes a candidate
// row; the concentration is searched on the same line, then the next, then
// the previous one.
func lineRows(body string, rules template.CompositionRules, casRe *regexp.Regexp) (rows []Ingredient, missed []string) {
	lines := strings.Split(body, "\n")
	unit := rules.Concentration.DefaultUnit
	for i, ln := range lines {
		locs := casRe.FindAllStringSubmatchIndex(ln, -1)
		if locs == nil {
			continue
		}
		if exposureHint.MatchString(ln) {
			continue
		}
		prev, next := "", ""
		if i > 0 {
			prev = lines[i-1]
		}
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		for _, loc := range locs {
			gs, ge := loc[0], loc[1]
			if len(loc) >= 4 {
				gs, ge = loc[len(loc)-2], loc[len(loc)-1]
			}
			cas := ln[gs:ge]
			name := strings.Trim(ln[:loc[0]], " -:,;\t|·•")
			name = strings.Join(strings.Fields(name), " ")

			c := ParseConcentration(ln, cas, unit)
			if c == nil {
				c = ParseConcentration(next, cas, unit)
			}
			if c == nil {
				c = ParseConcentration(prev, cas, unit)
			}
			if c == nil {
				missed = append(missed, ln)
				continue
			}
			row := Ingredient{Name: name, CAS: cas, Source: "line"}
			c.fill(&row)
			rows = append(rows, row)
		}
	}
	return rows, missed
}

func filterRows(rows []Ingredient, rules template.CompositionRules) []Ingredient {
	out := rows[:0]
	for _, r := range rows {
		if r.CAS == "" || forbiddenCAS(r.CAS, rules.Concentration.ForbiddenCASFragments) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// dedupRows keeps the first row per (cas, conc_raw, name) key.
func dedupRows(rows []Ingredient) []Ingredient {
	seen := map[[3]string]bool{}
	out := rows[:0]
	for _, r := range rows {
		k := [3]string{r.CAS, r.ConcRaw, r.Name}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
