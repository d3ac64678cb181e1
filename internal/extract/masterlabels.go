package extract

import (
	"regexp"
	"strings"

	"github.com/a3tai/msds-extract/internal/textnorm"
)

// masterLabels is the vendor-independent canonical regulatory vocabulary.
var masterLabels = []string{
	"기존화학물질",
	"등록대상기존화학물질",
	"관리대상유해물질",
	"노출기준설정대상물질",
	"작업환경측정물질",
	"PRTR물질",
	"유독물질",
	"지정폐기물",
}

// labelRegexMap absorbs spacing and suffix variants; first hit wins.
var labelRegexMap = []struct {
	re    *regexp.Regexp
	canon string
}{
	{regexp.MustCompile(`(?i)작업\s*환경\s*측정\s*(?:대상)?\s*물질`), "작업환경측정물질"},
	{regexp.MustCompile(`(?i)노출\s*기준\s*설정\s*(?:대상)?\s*물질`), "노출기준설정대상물질"},
	{regexp.MustCompile(`(?i)관리\s*대상\s*유해\s*물질`), "관리대상유해물질"},
	{regexp.MustCompile(`(?i)(?:pollutant\s*release\s*and\s*transfer|prtr)\s*물질`), "PRTR물질"},
	{regexp.MustCompile(`(?i)유독\s*물질`), "유독물질"},
	{regexp.MustCompile(`(?i)지정\s*폐기\s*물`), "지정폐기물"},
}

var masterIndex = func() map[string]string {
	idx := make(map[string]string, len(masterLabels))
	for _, m := range masterLabels {
		idx[textnorm.NormalizeLabel(m)] = m
	}
	return idx
}()

func regexFirstPass(text string) string {
	if text == "" {
		return ""
	}
	for _, e := range labelRegexMap {
		if e.re.MatchString(text) {
			return e.canon
		}
	}
	return ""
}

// repairRules patches labels with a dropped suffix after normalization.
func repairRules(norm string) (canon string, score int, ok bool) {
	switch {
	case strings.HasSuffix(norm, "작업환경측정"):
		return "작업환경측정물질", 95, true
	case strings.HasSuffix(norm, "노출기준설정"):
		return "노출기준설정대상물질", 95, true
	case strings.ReplaceAll(norm, " ", "") == "prtr":
		return "PRTR물질", 95, true
	}
	return "", 0, false
}

// MapLabel resolves one raw regulatory label to a canonical master label.
// Tiers: regex on raw text, regex on the normalized form, suffix repair,
// fuzzy match, then none. Source is one of regex, rule, fuzzy, none.
func MapLabel(raw string, minFuzzy int) (canon string, score int, source, normed string) {
	normed = textnorm.NormalizeLabel(raw)
	if hit := regexFirstPass(raw); hit != "" {
		return hit, 100, "regex", normed
	}
	if hit := regexFirstPass(normed); hit != "" {
		return hit, 100, "regex", normed
	}
	if c, s, ok := repairRules(normed); ok {
		return c, s, "rule", normed
	}
	if c, s := fuzzyMaster(normed); c != "" && s >= minFuzzy {
		return c, s, "fuzzy", normed
	}
	return "", 0, "none", normed
}

// fuzzyMaster finds the closest master label by similarity ratio.
func fuzzyMaster(normed string) (string, int) {
	if normed == "" {
		return "", 0
	}
	if canon, ok := masterIndex[normed]; ok {
		return canon, 100
	}
	best, bestScore := "", 0
	for key, canon := range masterIndex {
		if s := similarityRatio(normed, key); s > bestScore {
			best, bestScore = canon, s
		}
	}
	return best, bestScore
}
