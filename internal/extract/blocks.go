package extract

import (
	"regexp"
	"strings"

	"github.com/a3tai/msds-extract/internal/template"
)

// blockRows parses vendor-declared fixed layouts in the composition section.
// "ltr" reads one record per Stride lines in FieldOrder; "ttb" scans for the
// fields in order, skipping up to MaxGapLines between them.
func blockRows(text string, rules template.CompositionRules, casRe *regexp.Regexp) []Ingredient {
	b := rules.Block
	switch b.Mode {
	case "ltr":
		return blockLTR(text, b, rules, casRe)
	case "ttb":
		return blockTTB(text, b, rules, casRe)
	}
	return nil
}

func fieldRegexps(b template.BlockLayout, casRe *regexp.Regexp) map[string]*regexp.Regexp {
	res := map[string]*regexp.Regexp{
		"cas":  casRe,
		"conc": regexp.MustCompile(`%|~|\d|<=|>=|≤|≥`),
	}
	for field, pat := range b.FieldPatterns {
		if re, err := regexp.Compile(pat); err == nil {
			res[field] = re
		}
	}
	return res
}

func cleanLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// looksLikeName accepts a line as an ingredient name when it carries letters
// and is neither a CAS number nor a concentration.
func looksLikeName(line string, casRe *regexp.Regexp) bool {
	if casRe.MatchString(line) || ParseConcentration(line, "", "%") != nil {
		return false
	}
	if strings.HasPrefix(strings.ToUpper(line), "CAS") {
		return false
	}
	for _, r := range line {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '가' && r <= '힣') {
			return true
		}
	}
	return false
}

func blockLTR(text string, b template.BlockLayout, rules template.CompositionRules, casRe *regexp.Regexp) []Ingredient {
	stride := b.Stride
	order := b.FieldOrder
	if stride <= 0 {
		stride = len(order)
	}
	if stride <= 0 || len(order) == 0 {
		return nil
	}
	res := fieldRegexps(b, casRe)
	lines := cleanLines(text)

	var out []Ingredient
	for i := 0; i+stride <= len(lines); {
		rec := map[string]string{}
		ok := true
		for off, field := range order {
			if off >= stride {
				break
			}
			line := lines[i+off]
			switch field {
			case "name", "alias":
				if !looksLikeName(line, casRe) {
					ok = false
				}
			default:
				re := res[field]
				if re == nil || !re.MatchString(line) {
					ok = false
				}
			}
			if !ok {
				break
			}
			rec[field] = line
		}
		if !ok {
			i++
			continue
		}
		if row := recordToRow(rec, rules, casRe, "block_ltr"); row != nil {
			out = append(out, *row)
			i += stride
			continue
		}
		i++
	}
	return out
}

func blockTTB(text string, b template.BlockLayout, rules template.CompositionRules, casRe *regexp.Regexp) []Ingredient {
	order := b.FieldOrder
	if len(order) == 0 {
		order = []string{"name", "cas", "conc"}
	}
	maxGap := b.MaxGapLines
	if maxGap <= 0 {
		maxGap = 3
	}
	res := fieldRegexps(b, casRe)
	lines := cleanLines(text)

	var out []Ingredient
	i := 0
	for i < len(lines) {
		j := i
		rec := map[string]string{}
		ok := true
		for _, field := range order {
			found := false
			for span := 0; j < len(lines) && span <= maxGap; span++ {
				line := lines[j]
				var hit bool
				if field == "name" || field == "alias" {
					hit = looksLikeName(line, casRe)
				} else if re := res[field]; re != nil {
					hit = re.MatchString(line)
				}
				j++
				if hit {
					rec[field] = line
					found = true
					break
				}
			}
			if !found {
				ok = false
				break
			}
		}
		if ok {
			if row := recordToRow(rec, rules, casRe, "block_ttb"); row != nil {
				out = append(out, *row)
				i = j
				continue
			}
		}
		i++
	}
	return out
}

// fieldForLabel classifies a column label line against the header aliases.
// A second name-alias hit becomes the alias column.
func fieldForLabel(label string, rules template.CompositionRules, taken map[string]bool) string {
	matches := func(field string) bool {
		for _, a := range rules.HeaderAliases[field] {
			re, err := regexp.Compile(a)
			if err != nil {
				continue
			}
			if re.MatchString(label) {
				return true
			}
		}
		return false
	}
	switch {
	case !taken["cas"] && matches("cas"):
		return "cas"
	case !taken["conc"] && matches("conc"):
		return "conc"
	case !taken["name"] && matches("name"):
		return "name"
	case taken["name"] && !taken["alias"] && matches("name"):
		return "alias"
	}
	return ""
}

// stackedHeaderRows handles tables rendered as a stack of 3 to 5 column
// label lines followed by repeating value blocks of the same stride.
func stackedHeaderRows(text string, rules template.CompositionRules, casRe *regexp.Regexp) []Ingredient {
	lines := cleanLines(text)
	for start := 0; start+2 < len(lines); start++ {
		taken := map[string]bool{}
		var order []string
		for n := 0; n < 5 && start+n < len(lines); n++ {
			f := fieldForLabel(lines[start+n], rules, taken)
			if f == "" {
				break
			}
			taken[f] = true
			order = append(order, f)
		}
		if len(order) < 3 || !taken["cas"] || !taken["conc"] {
			continue
		}
		stride := len(order)

		var out []Ingredient
	blocks:
		for i := start + stride; i+stride <= len(lines); i += stride {
			rec := map[string]string{}
			for off, field := range order {
				line := lines[i+off]
				switch field {
				case "name", "alias":
					if !looksLikeName(line, casRe) {
						break blocks
					}
				case "cas":
					if !casRe.MatchString(line) {
						break blocks
					}
				case "conc":
					if ParseConcentration(line, "", rules.Concentration.DefaultUnit) == nil {
						break blocks
					}
				}
				rec[field] = line
			}
			if row := recordToRow(rec, rules, casRe, "block_stack"); row != nil {
				out = append(out, *row)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

var labelValueSplit = regexp.MustCompile(`^(.{1,30}?)\s*[:：]\s*(.*)$`)

// labelAnchoredRows handles vertical records where every field sits on its
// own "label: value" line. A repeated field starts the next record.
func labelAnchoredRows(text string, rules template.CompositionRules, casRe *regexp.Regexp) []Ingredient {
	lines := cleanLines(text)
	var out []Ingredient
	rec := map[string]string{}
	flush := func() {
		if len(rec) > 0 {
			if row := recordToRow(rec, rules, casRe, "labeled"); row != nil {
				out = append(out, *row)
			}
		}
		rec = map[string]string{}
	}
	for i := 0; i < len(lines); i++ {
		m := labelValueSplit.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		field := fieldForLabel(m[1], rules, map[string]bool{})
		if field == "" {
			continue
		}
		value := strings.TrimSpace(m[2])
		if value == "" && i+1 < len(lines) && !labelValueSplit.MatchString(lines[i+1]) {
			i++
			value = lines[i]
		}
		if _, dup := rec[field]; dup {
			flush()
		}
		rec[field] = value
	}
	flush()
	return out
}

// recordToRow validates a captured field record against the CAS guard and
// concentration bounds; records without both fail.
func recordToRow(rec map[string]string, rules template.CompositionRules, casRe *regexp.Regexp, source string) *Ingredient {
	m := casRe.FindStringSubmatch(rec["cas"])
	if m == nil {
		return nil
	}
	cas := m[len(m)-1]
	if forbiddenCAS(cas, rules.Concentration.ForbiddenCASFragments) {
		return nil
	}
	row := &Ingredient{
		Name:   strings.TrimSpace(rec["name"]),
		Alias:  strings.TrimSpace(rec["alias"]),
		CAS:    cas,
		Source: source,
	}
	if c := ParseConcentration(rec["conc"], cas, rules.Concentration.DefaultUnit); c != nil {
		c.fill(row)
		return row
	}
	return nil
}

// forbiddenCAS rejects CAS numbers whose leading fragment is on the block
// list (solvent carriers such as water that are never reportable).
func forbiddenCAS(cas string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.HasPrefix(cas, f) {
			return true
		}
	}
	return false
}
