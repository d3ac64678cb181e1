// Package section splits normalized SDS text into canonical numbered
// sections. Anchors are tried per key from strictest to loosest; boundaries
// are corrected with keyword hints so a following section that lost its
// formal header still terminates the current body.
package section

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Section is one canonical logical section of a document. Offsets index into
// the normalized document text. Body spans [HeaderEnd, End).
type Section struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	HeaderStart int    `json:"header_start"`
	HeaderEnd   int    `json:"header_end"`
	Body        string `json:"body"`
}

// Segmenter locates canonical sections. Safe for concurrent use; all state is
// compiled patterns built at construction.
type Segmenter struct {
	anchors map[string][]*regexp.Regexp
	hints   map[string][]*regexp.Regexp
	log     *zap.Logger
}

// NewSegmenter compiles the anchor and hint pattern tables.
func NewSegmenter(log *zap.Logger) *Segmenter {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Segmenter{
		anchors: make(map[string][]*regexp.Regexp),
		hints:   make(map[string][]*regexp.Regexp),
		log:     log,
	}
	for _, key := range CanonicalKeys() {
		s.anchors[key] = anchorPatterns(key)
		s.hints[key] = hintPatterns(key)
	}
	return s
}

type anchorHit struct {
	key        string
	start, end int
}

// Segment splits normalized text into sections. It never fails: a document
// with zero recognizable headers yields an empty map, an empty order slice
// and a diagnostic entry.
func (s *Segmenter) Segment(text string) (map[string]Section, []string, []string) {
	var hits []anchorHit
	for _, key := range CanonicalKeys() {
		if loc := findFirst(s.anchors[key], text); loc != nil {
			hits = append(hits, anchorHit{key: key, start: loc[0], end: loc[1]})
		}
	}
	if len(hits) == 0 {
		s.log.Warn("segmenter: no section headers detected")
		return map[string]Section{}, nil, []string{"segment: no section headers detected"}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	sections := make(map[string]Section, len(hits))
	order := make([]string, 0, len(hits))
	for i, h := range hits {
		end := len(text)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}
		if cut, ok := s.cutByHints(text, h.end, h.key); ok && cut < end {
			end = cut
		}
		// two keys can anchor on the same line, leaving the next hit's
		// start before this header's end
		if end < h.end {
			end = h.end
		}
		sections[h.key] = Section{
			Key:         h.key,
			Title:       strings.TrimSpace(text[h.start:h.end]),
			Start:       h.start,
			End:         end,
			HeaderStart: h.start,
			HeaderEnd:   h.end,
			Body:        strings.TrimSpace(text[h.end:end]),
		}
		order = append(order, h.key)
	}

	diags := []string{"segment: detected " + strconv.Itoa(len(sections)) + " sections"}
	s.log.Debug("segmenter: sections detected",
		zap.Int("count", len(sections)), zap.Strings("order", order))
	return sections, order, diags
}

// cutByHints scans the body after bodyStart for the earliest hinted start of
// a later section; returns the absolute cut offset.
func (s *Segmenter) cutByHints(text string, bodyStart int, key string) (int, bool) {
	body := text[bodyStart:]
	best := -1
	for _, nextKey := range nextHintKeys[key] {
		for _, re := range s.hints[nextKey] {
			loc := re.FindStringIndex(body)
			if loc == nil {
				continue
			}
			cand := bodyStart + loc[0]
			if best < 0 || cand < best {
				best = cand
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// findFirst returns the match location of the first pattern that matches at
// all, preserving anchor precedence.
func findFirst(patterns []*regexp.Regexp, text string) []int {
	for _, re := range patterns {
		if loc := re.FindStringIndex(text); loc != nil {
			return loc
		}
	}
	return nil
}
