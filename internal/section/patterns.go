package section

import (
	"fmt"
	"regexp"
)

// Canonical section keys recognized by the segmenter. SDS sheets number up to
// 16 sections; only the keys the extractors consume are anchored.
const (
	KeyIdentification = "1_identification"
	KeyHazards        = "2_hazards"
	KeyComposition    = "3_composition"
	KeyFirstAid       = "4_first_aid"
	KeyPhysChem       = "9_physical_chemical"
	KeyStability      = "10_stability_reactivity"
	KeyToxicological  = "11_toxicological"
	KeyTransport      = "14_transport"
	KeyRegulatory     = "15_regulatory"
	KeyOther          = "16_other_information"
)

// CanonicalKeys lists all keys in document order.
func CanonicalKeys() []string {
	return []string{
		KeyIdentification, KeyHazards, KeyComposition, KeyFirstAid,
		KeyPhysChem, KeyStability, KeyToxicological, KeyTransport,
		KeyRegulatory, KeyOther,
	}
}

// Header building blocks. Keyword alternations are deliberately loose: they
// run inside a single line, so a missing particle or extra spacing still hits.
const (
	numToken = `(?:①|②|③|④|⑤|⑥|⑦|⑧|⑨|⑩|[0-9]{1,2}|[IVX]{1,4}|[ⅠⅡⅢⅣⅤⅥⅦⅧⅨⅩ])`
	sepToken = `[ \t]*[.)\]:>-]?[ \t]*`
	secWord  = `(?:section[ \t]*)?`
)

// koreanHints maps each key to the loose Korean keyword alternation used both
// for anchors and for boundary hints.
var koreanHints = map[string]string{
	KeyIdentification: `(?:화학제품|제품)[^\n]*(?:회사|제조회사|공급자)|제품[ \t]*(?:및)?[ \t]*회사[ \t]*식별|식별[ \t]*및[ \t]*공급자`,
	KeyHazards:        `(?:유해|위험)[^\n]*성|위험성[ \t]*및[ \t]*유해성`,
	KeyComposition:    `(?:구성|성분)[^\n]*(?:명칭|정보|함유량|함량)`,
	KeyFirstAid:       `응급[ \t]*조치|응급조치`,
	KeyPhysChem:       `(?:물리|화학)[^\n]*(?:특성|성질)`,
	KeyStability:      `안정성[^\n]*반응성|안정성/반응성`,
	KeyToxicological:  `독성[^\n]*정보|독성`,
	KeyTransport:      `운송[^\n]*정보|운송[ \t]*정보`,
	KeyRegulatory:     `(?:법규|규제)[^\n]*(?:현황|정보|사항)|관련[ \t]*법규|법적[ \t]*규제`,
	KeyOther:          `(?:기타|참고)[^\n]*정보|그[ \t]*밖의[ \t]*참고사항`,
}

// englishLabels maps each key to its English header form; the section number
// is fixed per key, so the numbered variant is unambiguous.
var englishLabels = map[string]string{
	KeyIdentification: `product[ \t]*(?:and[ \t]*company[ \t]*)?identification`,
	KeyHazards:        `hazards?[ \t]*identification|hazards?`,
	KeyComposition:    `(?:composition|information[ \t]+on[ \t]+ingredients|ingredients?)`,
	KeyFirstAid:       `first[ \t]*-?[ \t]*aid`,
	KeyPhysChem:       `physical[ \t]*(?:and[ \t]*)?chemical[ \t]*propert(?:y|ies)`,
	KeyStability:      `stability[ \t]*and[ \t]*reactivity`,
	KeyToxicological:  `(?:toxicology|toxicological[ \t]*information)`,
	KeyTransport:      `transport[ \t]*information`,
	KeyRegulatory:     `regulatory[ \t]*(?:information|status)`,
	KeyOther:          `other[ \t]*information`,
}

// sectionNumber extracts the fixed number prefix of a canonical key.
func sectionNumber(key string) string {
	var n int
	fmt.Sscanf(key, "%d_", &n)
	return fmt.Sprintf("%d", n)
}

// anchorPatterns compiles the ordered anchor list for one key:
// numbered Korean header, bare Korean keyword line, numbered English label,
// bare English label. First hit wins.
func anchorPatterns(key string) []*regexp.Regexp {
	kw := koreanHints[key]
	en := englishLabels[key]
	no := sectionNumber(key)
	pats := []string{
		`(?mi)^[ \t]*` + secWord + numToken + sepToken + `[^\n]*(?:` + kw + `)[^\n]*$`,
		`(?mi)^[ \t]*[^\n]*(?:` + kw + `)[^\n]*$`,
	}
	if en != "" {
		pats = append(pats,
			`(?mi)^[ \t]*`+secWord+no+sepToken+`(?:`+en+`)\b`,
			`(?mi)^[ \t]*(?:`+en+`)\b`,
		)
	}
	out := make([]*regexp.Regexp, 0, len(pats))
	for _, p := range pats {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// nextHintKeys lists, per key, which later sections are probed inside the
// body to catch a following section that lost its formal header.
var nextHintKeys = map[string][]string{
	KeyIdentification: {KeyHazards, KeyComposition},
	KeyHazards:        {KeyComposition, KeyFirstAid},
	KeyComposition:    {KeyFirstAid, KeyPhysChem},
	KeyFirstAid:       {KeyPhysChem, KeyStability},
	KeyPhysChem:       {KeyStability, KeyToxicological},
	KeyStability:      {KeyToxicological, KeyTransport},
	KeyToxicological:  {KeyTransport},
	KeyTransport:      {KeyRegulatory, KeyOther},
	KeyRegulatory:     {KeyOther},
	KeyOther:          nil,
}

// hintPatterns compiles the boundary-hint regexes for one hinted key: the
// numbered header form and the bare keyword-at-line-start form.
func hintPatterns(key string) []*regexp.Regexp {
	kw := koreanHints[key]
	return []*regexp.Regexp{
		regexp.MustCompile(`(?mi)^[ \t]*` + secWord + numToken + sepToken + `[^\n]*(?:` + kw + `)[^\n]*$`),
		regexp.MustCompile(`(?mi)^[ \t]*(?:` + kw + `)`),
	}
}
