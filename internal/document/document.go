// Package document models one page-marked SDS text dump: the normalized full
// text plus the page-boundary index derived from the literal
// "---- PAGE <n> ----" markers inserted by the upstream text/OCR layer.
package document

import (
	"errors"
	"regexp"
	"sort"

	"github.com/a3tai/msds-extract/internal/textnorm"
)

// Fatal ingestion errors. Everything downstream is best-effort, but without
// usable marked text there is nothing to run.
var (
	ErrNoUsableText  = errors.New("document: too little usable text")
	ErrNoPageMarkers = errors.New("document: no page markers found")
)

// MinChars is the minimum non-marker text length accepted by New.
const MinChars = 40

var pageMarkRe = regexp.MustCompile(`(?i)----\s*PAGE\s+(\d+)\s*----`)

// pageMark is one marker occurrence: its offset and the page number it opens.
type pageMark struct {
	offset int
	page   int
}

// Document is normalized full text plus its page-boundary index.
type Document struct {
	Text   string
	Source string // originating file path, informational only

	marks []pageMark
}

// New normalizes raw text and builds the page index. The source path is
// carried through for diagnostics and engine binding.
func New(raw, source string) (*Document, error) {
	text := textnorm.Normalize(raw)

	locs := pageMarkRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil, ErrNoPageMarkers
	}

	stripped := pageMarkRe.ReplaceAllString(text, "")
	if countNonSpace(stripped) < MinChars {
		return nil, ErrNoUsableText
	}

	d := &Document{Text: text, Source: source}
	for _, loc := range locs {
		n := atoi(text[loc[2]:loc[3]])
		d.marks = append(d.marks, pageMark{offset: loc[0], page: n})
	}
	sort.Slice(d.marks, func(i, j int) bool { return d.marks[i].offset < d.marks[j].offset })
	return d, nil
}

// PageCount reports the highest page number seen in the markers.
func (d *Document) PageCount() int {
	max := 0
	for _, m := range d.marks {
		if m.page > max {
			max = m.page
		}
	}
	return max
}

// PagesForSpan returns the sorted physical page numbers whose marker-delimited
// segments overlap [start, end). Used to tell table engines which pages back
// a logical section span.
func (d *Document) PagesForSpan(start, end int) []int {
	if len(d.marks) == 0 || start >= end {
		return nil
	}
	seen := map[int]bool{}
	for i, m := range d.marks {
		segStart := m.offset
		segEnd := len(d.Text)
		if i+1 < len(d.marks) {
			segEnd = d.marks[i+1].offset
		}
		if max(segStart, start) < min(segEnd, end) {
			seen[m.page] = true
		}
	}
	// Text before the first marker belongs to that marker's page.
	if start < d.marks[0].offset {
		seen[d.marks[0].page] = true
	}
	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			n++
		}
	}
	return n
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
