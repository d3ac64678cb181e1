package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/msds-extract/internal/template"
)

var regHintTokens = []string{
	"규제", "규정", "법규", "법적", "관련법령", "대상물질",
	"PRTR", "유독", "지정폐기", "작업환경측정", "노출기준설정",
	"Regulatory", "Regulation",
}

var (
	fallbackHeaderStrip = regexp.MustCompile(`(?i)^\s*(?:PRODUCT|항목|대상물질)\s*[:：]\s*`)
	fallbackSplit       = regexp.MustCompile(`[;,/｜|·•ㆍ∙‧・]\s*`)
	numericOnly         = regexp.MustCompile(`^[\d\.\%\s\(\)\[\]\-–~]+$`)
	thresholdParen      = regexp.MustCompile(`[(（]\s*([^()（）]{1,40})\s*[)）]`)
)

var defaultSplitTokens = []string{",", ";", "·", "•", "ㆍ", "∙", "‧", "・", "/", "｜", "|"}

// RegulatoryExtractor turns a section 15 body into scored regulatory items.
type RegulatoryExtractor struct {
	minFuzzy int
}

func NewRegulatoryExtractor(minFuzzy int) *RegulatoryExtractor {
	if minFuzzy <= 0 {
		minFuzzy = 82
	}
	return &RegulatoryExtractor{minFuzzy: minFuzzy}
}

// splitByTemplate cuts the body into candidate labels using the profile's
// split tokens after stripping bullet and header prefixes.
func splitByTemplate(body string, rules template.RegulatoryRules) []string {
	tokens := rules.SplitTokens
	if len(tokens) == 0 {
		tokens = defaultSplitTokens
	}
	var items []string
	for _, raw := range strings.Split(body, "\n") {
		ln := strings.TrimSpace(raw)
		if len([]rune(ln)) < 2 {
			continue
		}
		for _, b := range rules.BulletPrefixes {
			ln = strings.TrimSpace(strings.TrimPrefix(ln, b))
		}
		for _, h := range rules.HeaderPrefixes {
			if strings.HasPrefix(ln, h) {
				ln = strings.TrimLeft(strings.TrimPrefix(ln, h), " :：")
			}
		}
		parts := []string{ln}
		for _, tok := range tokens {
			var next []string
			for _, p := range parts {
				for _, q := range strings.Split(p, tok) {
					next = append(next, strings.TrimSpace(q))
				}
			}
			parts = next
		}
		for _, p := range parts {
			if len([]rune(p)) >= 2 {
				items = append(items, p)
			}
		}
	}
	return dedupStrings(items)
}

// splitByRegex is the template-free fallback: strip known headers, split on
// delimiter glyphs, then scan for canonical label shapes with a 40-rune
// trailing context window.
func splitByRegex(body string) []string {
	var rough []string
	for _, ln := range strings.Split(body, "\n") {
		ln = fallbackHeaderStrip.ReplaceAllString(ln, "")
		for _, p := range fallbackSplit.Split(ln, -1) {
			if p = strings.TrimSpace(p); p != "" {
				rough = append(rough, p)
			}
		}
	}
	var cands []string
	for _, text := range append(rough, body) {
		for _, e := range labelRegexMap {
			for _, loc := range e.re.FindAllStringIndex(text, -1) {
				end := loc[1]
				runesLeft := 40
				for end < len(text) && runesLeft > 0 && text[end] != '\n' {
					_, size := utf8.DecodeRuneInString(text[end:])
					end += size
					runesLeft--
				}
				cands = append(cands, strings.TrimSpace(text[loc[0]:end]))
			}
		}
	}
	return dedupStrings(cands)
}

// hintWindow collects two lines of context around every hint token line.
func hintWindow(body string) []string {
	lines := strings.Split(body, "\n")
	var ctx []string
	for i, ln := range lines {
		low := strings.ToLower(ln)
		hit := false
		for _, k := range regHintTokens {
			if strings.Contains(low, strings.ToLower(k)) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		for j := max(0, i-2); j < min(len(lines), i+3); j++ {
			if s := strings.TrimSpace(lines[j]); s != "" {
				ctx = append(ctx, s)
			}
		}
	}
	return dedupStrings(ctx)
}

// Extract produces the ranked regulatory item list for one section 15 body.
// Unmatched candidates stay in the output with source "none" and score 0.
func (e *RegulatoryExtractor) Extract(body string, tpl *template.Template) []RegulatoryItem {
	cands := splitByTemplate(body, tpl.Regulatory)
	if len(cands) == 0 {
		cands = splitByRegex(body)
	}
	if len(cands) == 0 {
		cands = hintWindow(body)
	}

	var items []RegulatoryItem
	for _, raw := range cands {
		if numericOnly.MatchString(raw) {
			continue
		}
		threshold := ""
		if m := thresholdParen.FindStringSubmatch(raw); m != nil {
			threshold = strings.TrimSpace(m[1])
		}
		canon, score, source, normed := MapLabel(raw, e.minFuzzy)
		items = append(items, RegulatoryItem{
			Chemical:  "PRODUCT",
			Raw:       raw,
			Norm:      normed,
			Threshold: threshold,
			Category:  canon,
			Score:     score,
			Source:    source,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := itemTier(items[i]), itemTier(items[j])
		if ti != tj {
			return ti < tj
		}
		if items[i].Chemical != items[j].Chemical {
			return items[i].Chemical < items[j].Chemical
		}
		return items[i].Score > items[j].Score
	})
	return items
}

// itemTier ranks confident matches first: regex hits or scores of 90+, then
// fuzzy matches, then everything else.
func itemTier(it RegulatoryItem) int {
	if it.Source == "regex" || it.Score >= 90 {
		return 0
	}
	if it.Source == "fuzzy" {
		return 1
	}
	return 2
}

func dedupStrings(in []string) []string {
	seen := map[string]bool{}
	out := in[:0]
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
