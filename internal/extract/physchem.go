package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/msds-extract/internal/engine"
	"github.com/a3tai/msds-extract/internal/template"
)

// propertyAliases maps canonical property keys to the label spellings seen
// across vendors, Korean and English. Profiles may append to it but the base
// vocabulary is fixed.
var propertyAliases = map[string][]string{
	"appearance1":        {"외관", "appearance", "appearance and odor", "appearance/odor", "외  관"},
	"appearance2":        {"성상", "형태", "form", "physical state"},
	"color":              {"색상", "color", "colour"},
	"odor":               {"냄새", "취기", "odor", "odour"},
	"odor_threshold":     {"냄새역치", "odor threshold"},
	"pH":                 {"ph", "피에이치", "수소이온농도"},
	"acid_base":          {"산/염기", "산도", "알칼리도"},
	"melting_point":      {"녹는점", "녹는점/어는점", "melting point", "freezing point", "어는점"},
	"boiling_point":      {"초기 끓는점과 끓는점 범위", "끓는점", "boiling point", "initial boiling point", "boiling range"},
	"flash_point":        {"인화점", "flash point"},
	"autoignition_temp":  {"자연발화온도", "autoignition temperature"},
	"decomposition_temp": {"분해온도", "decomposition temperature"},
	"flammability":       {"인화성(고체, 기체)", "가연성", "flammability", "flammability (solid, gas)"},
	"explosive_limits":   {"인화 또는 폭발 범위의 상한/하한", "폭발한계", "explosive limits", "flammability limits"},
	"evaporation_rate":   {"증발속도", "evaporation rate"},
	"vapor_pressure":     {"증기압", "vapor pressure"},
	"vapor_density":      {"증기밀도", "vapor density"},
	"relative_density":   {"비중", "relative density", "specific gravity"},
	"density":            {"밀도", "density"},
	"solubility":         {"용해도", "solubility", "water solubility", "용해도(물)", "용해도(수중)"},
	"partition_coeff":    {"n-옥탄올/물분배계수", "log kow", "partition coefficient", "octanol/water partition coefficient"},
	"viscosity":          {"점도", "viscosity"},
	"molecular_weight":   {"분자량", "분자 질량", "molecular weight", "molar mass"},
	"voc_content":        {"voc 함량", "voc content", "휘발성유기화합물 함량"},
	"percent_volatile":   {"휘발성분 함량", "percent volatile", "volatile %"},
}

// aliasOrder is the canonical key iteration order; map iteration is random
// and matching priority matters for overlapping labels.
var aliasOrder = []string{
	"appearance1", "appearance2", "color", "odor", "odor_threshold",
	"pH", "acid_base",
	"melting_point", "boiling_point", "flash_point", "autoignition_temp", "decomposition_temp",
	"flammability", "explosive_limits",
	"evaporation_rate", "vapor_pressure", "vapor_density",
	"relative_density", "density",
	"solubility", "partition_coeff", "viscosity",
	"molecular_weight", "voc_content", "percent_volatile",
}

var nextSectionHead = regexp.MustCompile(`(?m)^\s*1[0-6]\s*[\.\)]\s*\S`)

// PhysChemExtractor reads section 9 properties, trying reconstructed label
// value tables first and a mixed vertical/horizontal line parse second.
type PhysChemExtractor struct {
	engines []engine.TableEngine
}

func NewPhysChemExtractor(engines []engine.TableEngine) *PhysChemExtractor {
	return &PhysChemExtractor{engines: engines}
}

type aliasSet struct {
	byKey map[string][]string
	order []string
	all   []string
}

func buildAliases(extra map[string][]string) aliasSet {
	s := aliasSet{byKey: map[string][]string{}, order: aliasOrder}
	for k, v := range propertyAliases {
		s.byKey[k] = v
	}
	for k, v := range extra {
		s.byKey[k] = append(append([]string{}, s.byKey[k]...), v...)
		found := false
		for _, o := range s.order {
			if o == k {
				found = true
				break
			}
		}
		if !found {
			s.order = append(s.order, k)
		}
	}
	for _, k := range s.order {
		s.all = append(s.all, s.byKey[k]...)
	}
	return s
}

func normPropLabel(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := strings.NewReplacer("：", ":", "–", "-", "—", "-")
	return r.Replace(s)
}

// labelToKey maps a raw label onto the canonical vocabulary, "other" when
// nothing matches.
func (a aliasSet) labelToKey(label string) string {
	lab := strings.ToLower(strings.TrimSpace(label))
	for _, key := range a.order {
		for _, alias := range a.byKey[key] {
			if strings.Contains(lab, strings.ToLower(alias)) {
				return key
			}
		}
	}
	return "other"
}

func (a aliasSet) isLabelLine(line string) bool {
	l := strings.ToLower(normPropLabel(line))
	if l == "" {
		return false
	}
	for _, alias := range a.all {
		if strings.Contains(l, strings.ToLower(alias)) {
			return true
		}
	}
	return strings.HasSuffix(strings.TrimSpace(line), ":")
}

// splitInline detects "label: value" and "label value" horizontal lines.
func (a aliasSet) splitInline(line string) (label, value string, ok bool) {
	s := normPropLabel(line)
	if i := strings.IndexByte(s, ':'); i > 0 {
		lab, val := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
		if lab != "" && val != "" {
			return lab, val, true
		}
	}
	low := strings.ToLower(s)
	for _, alias := range a.all {
		al := strings.ToLower(alias)
		if strings.HasPrefix(low, al) {
			val := strings.Trim(s[len(alias):], " -\t")
			if val != "" {
				return s[:len(alias)], val, true
			}
		}
	}
	return "", "", false
}

func cleanPropValue(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	if len(v) > 300 {
		cut := 300
		for cut > 0 && !utf8.RuneStart(v[cut]) {
			cut--
		}
		v = v[:cut]
	}
	return v
}

// Extract returns the property list for one section 9 body.
func (e *PhysChemExtractor) Extract(body string, tpl *template.Template) []Property {
	aliases := buildAliases(tpl.PhysChem.LabelAliases)

	// later section headers occasionally bleed into the body
	if loc := nextSectionHead.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}

	if props := e.fromTables(body, aliases); len(props) >= 5 {
		return dedupProps(props)
	}
	return dedupProps(parseMixedLines(body, aliases))
}

// fromTables reads label/value pairs out of reconstructed tables. Every
// column pair is scored and the best pair wins, so a leading row-number or
// numbering column does not hide the real label column.
func (e *PhysChemExtractor) fromTables(body string, aliases aliasSet) []Property {
	var props []Property
	for _, eng := range e.engines {
		for _, tbl := range eng.Tables(body) {
			lc, vc, ok := bestColumnPair(tbl.Rows, aliases)
			if !ok {
				continue
			}
			for _, row := range tbl.Rows {
				if lc >= len(row) || vc >= len(row) {
					continue
				}
				label := strings.TrimSpace(row[lc])
				value := cleanPropValue(row[vc])
				if label == "" || value == "" {
					continue
				}
				key := aliases.labelToKey(label)
				if key == "other" && !aliases.isLabelLine(label) {
					continue
				}
				props = append(props, Property{Key: key, Label: label, Value: value, Source: "table"})
			}
		}
		if len(props) > 0 {
			break
		}
	}
	return props
}

var valueHint = regexp.MustCompile(`(?i)[0-9]|℃|°c|mmhg|kpa|g/(?:m?l|cm|kg)|%|없음|액체|고체|기체`)

// bestColumnPair scores every ordered column pair: one point per row whose
// label cell hits the canonical vocabulary against a non-empty value cell,
// one more when the value carries a number, unit or state word. A pair needs
// at least three label hits to qualify.
func bestColumnPair(rows [][]string, aliases aliasSet) (labelCol, valueCol int, ok bool) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	bestScore, bl, bv := 0, -1, -1
	for lc := 0; lc < width; lc++ {
		for vc := 0; vc < width; vc++ {
			if vc == lc || numberingColumn(rows, vc) {
				continue
			}
			hits, score := 0, 0
			for _, row := range rows {
				if lc >= len(row) || vc >= len(row) {
					continue
				}
				label, value := strings.TrimSpace(row[lc]), strings.TrimSpace(row[vc])
				if label == "" || value == "" || aliases.labelToKey(label) == "other" {
					continue
				}
				hits++
				score++
				if valueHint.MatchString(value) {
					score++
				}
			}
			if hits >= 3 && score > bestScore {
				bestScore, bl, bv = score, lc, vc
			}
		}
	}
	return bl, bv, bl >= 0
}

var bareInt = regexp.MustCompile(`^\d{1,3}$`)

// numberingColumn reports whether a column holds only bare small integers,
// which marks it as row numbering rather than property values.
func numberingColumn(rows [][]string, col int) bool {
	n := 0
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		c := strings.TrimSpace(row[col])
		if c == "" {
			continue
		}
		if !bareInt.MatchString(c) {
			return false
		}
		n++
	}
	return n >= 2
}

// parseMixedLines handles vertical label-then-value stacks and horizontal
// "label value" lines interleaved in one block. Vertical values absorb at
// most two lines.
func parseMixedLines(body string, aliases aliasSet) []Property {
	var out []Property
	lines := strings.Split(body, "\n")
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}
		if lab, val, ok := aliases.splitInline(line); ok {
			key := aliases.labelToKey(lab)
			if key != "other" {
				out = append(out, Property{Key: key, Label: lab, Value: cleanPropValue(val), Source: "text"})
				i++
				continue
			}
		}
		if aliases.isLabelLine(line) {
			var collected []string
			j := i + 1
			for j < len(lines) {
				cand := strings.TrimSpace(lines[j])
				if cand == "" {
					j++
					continue
				}
				if aliases.isLabelLine(cand) {
					break
				}
				collected = append(collected, cand)
				j++
				if len(collected) >= 2 && !strings.HasSuffix(cand, ")") {
					break
				}
			}
			if len(collected) > 0 {
				out = append(out, Property{
					Key:    aliases.labelToKey(line),
					Label:  line,
					Value:  cleanPropValue(strings.Join(collected, " ")),
					Source: "text",
				})
			}
			i = j
			continue
		}
		i++
	}
	return out
}

func dedupProps(props []Property) []Property {
	seen := map[[3]string]bool{}
	out := props[:0]
	for _, p := range props {
		k := [3]string{p.Key, p.Label, p.Value}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
