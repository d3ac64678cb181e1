package template

import (
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Synthesize builds a new profile from the section titles observed in one
// document. Each title becomes a seed pattern: the literal text, escaped,
// with whitespace runs relaxed so spacing jitter between renders of the same
// layout still matches. The body rulesets start from the generic profile so
// a freshly synthesized profile extracts at least as well as the fallback.
func Synthesize(sectionTitles []string) *Template {
	var seeds []string
	seen := map[string]bool{}
	for _, title := range sectionTitles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		pat := seedPattern(title)
		if seen[pat] {
			continue
		}
		seen[pat] = true
		seeds = append(seeds, pat)
	}
	if len(seeds) == 0 {
		return nil
	}
	t := Generic()
	t.Name = ""
	t.Detect.SeedPatterns = seeds
	return t
}

func seedPattern(title string) string {
	parts := spaceRun.Split(title, -1)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, `\s+`)
}
