// Package pipeline drives one document from raw marked text to a structured
// extraction result, and runs batches of documents concurrently.
package pipeline

import (
	"github.com/a3tai/msds-extract/internal/extract"
	"github.com/a3tai/msds-extract/internal/section"
	"github.com/a3tai/msds-extract/internal/template"
)

// Confidence summarizes how much of the pipeline produced signal, all on a
// 0..1 scale. Fields holds per-field-group scores; a group that extracted
// nothing scores zero explicitly.
type Confidence struct {
	Overall      float64            `json:"overall"`
	Segmentation float64            `json:"segmentation"`
	Routing      float64            `json:"routing"`
	Fields       map[string]float64 `json:"fields"`
}

// Result is the full outcome for one document. Err is set only for the
// fatal class of failures (unusable input); everything else degrades into
// empty slices plus diagnostics.
type Result struct {
	Source string `json:"source"`

	Sections     map[string]section.Section `json:"sections"`
	SectionOrder []string                   `json:"section_order"`
	SectionPages map[string][]int           `json:"section_pages,omitempty"`
	Routing      template.Decision          `json:"routing"`

	Composition    []extract.Ingredient     `json:"composition"`
	MissedLines    []string                 `json:"missed_lines,omitempty"`
	Properties     []extract.Property       `json:"properties"`
	Regulatory     []extract.RegulatoryItem `json:"regulatory"`
	Identification extract.Identification   `json:"identification"`
	Hazards        extract.Hazards          `json:"hazards"`

	PageCount   int        `json:"page_count"`
	Confidence  Confidence `json:"confidence"`
	Diagnostics []string   `json:"diagnostics,omitempty"`
	Err         error      `json:"-"`
	ErrMessage  string     `json:"error,omitempty"`
}

// Failed reports whether the document hit a fatal error.
func (r *Result) Failed() bool { return r.Err != nil }
