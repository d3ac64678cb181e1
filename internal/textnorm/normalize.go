// Package textnorm normalizes raw page-marked SDS text before segmentation.
//
// Supplier PDFs arrive with a wide mix of full-width punctuation, dash and
// bullet variants, and OCR artifacts. Downstream anchor patterns assume the
// canonical forms produced here, so normalization must be idempotent:
// Normalize(Normalize(s)) == Normalize(s).
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	lineEdgeSpace = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	tabRun        = regexp.MustCompile(`[ ]*\t[ \t]*`)
	multiSpace    = regexp.MustCompile(` {2,}`)

	replacer = strings.NewReplacer(
		" ", " ", // NBSP
		"：", ":",
		"‐", "-", "–", "-", "—", "-",
		"・", "·", "∙", "·", "•", "·", "ㆍ", "·", "ᆞ", "·",
		// common OCR misread of 규제 (regulation)
		"규졔", "규제",
	)
)

// Normalize applies NFKC normalization, unifies punctuation variants and
// collapses horizontal whitespace while preserving line structure and tab
// column separators.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// replacer first: NFKC rewrites ㆍ (U+318D) to the conjoining jamo
	// U+119E, which the bullet entry would then miss
	s = replacer.Replace(s)
	s = norm.NFKC.String(s)
	s = lineEdgeSpace.ReplaceAllString(s, "\n")
	// tabs are column separators in text-rendered tables; keep one per run
	s = tabRun.ReplaceAllString(s, "\t")
	s = multiSpace.ReplaceAllString(s, " ")
	return s
}

// NormalizeLabel reduces a free-text label to a lookup key: NFKC, bullets and
// bracket characters stripped, ASCII letters lowercased. Hangul is left as-is.
func NormalizeLabel(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = bulletRun.ReplaceAllString(s, "")
	s = brackets.ReplaceAllString(s, "")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

var (
	bulletRun = regexp.MustCompile(`[\s\x{00A0}\x{2007}\x{202F}\x{2060}\x{00B7}\x{2022}\x{2219}\x{2027}\x{30FB}·•ㆍ∙‧・]+`)
	brackets  = regexp.MustCompile(`[【】\[\]{}<>〈〉()（）]`)
)
