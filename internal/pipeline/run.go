package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/a3tai/msds-extract/internal/document"
	"github.com/a3tai/msds-extract/internal/engine"
	"github.com/a3tai/msds-extract/internal/extract"
	"github.com/a3tai/msds-extract/internal/section"
	"github.com/a3tai/msds-extract/internal/template"
)

// Options configures a Pipeline.
type Options struct {
	Scoring     template.ScoringConfig
	MinFuzzy    int
	AutoProfile bool // synthesize a profile when only the generic fallback routes
	Workers     int
}

// Pipeline wires the stages together around a shared template store. It is
// safe for concurrent use; template creation serializes inside the store.
type Pipeline struct {
	store     *template.Store
	router    *template.Router
	segmenter *section.Segmenter
	comp      *extract.CompositionExtractor
	phys      *extract.PhysChemExtractor
	reg       *extract.RegulatoryExtractor
	opts      Options
	log       *zap.Logger
}

func New(store *template.Store, opts Options, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Scoring == (template.ScoringConfig{}) {
		opts.Scoring = template.DefaultScoring()
	}
	if opts.MinFuzzy <= 0 {
		opts.MinFuzzy = 82
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	engines := []engine.TableEngine{engine.NewTextGrid()}
	return &Pipeline{
		store:     store,
		router:    template.NewRouter(store, opts.Scoring, log),
		segmenter: section.NewSegmenter(log),
		comp:      extract.NewCompositionExtractor(engines, log),
		phys:      extract.NewPhysChemExtractor(engines),
		reg:       extract.NewRegulatoryExtractor(opts.MinFuzzy),
		opts:      opts,
		log:       log,
	}
}

// Run processes one document's marked text. Fatal input errors (no usable
// text, no page markers) set Result.Err and skip the stages; anything later
// degrades to empty output plus diagnostics.
func (p *Pipeline) Run(ctx context.Context, raw, source string) *Result {
	r := &Result{Source: source, Composition: []extract.Ingredient{}, Properties: []extract.Property{}, Regulatory: []extract.RegulatoryItem{}}

	doc, err := document.New(raw, source)
	if err != nil {
		r.Err = err
		r.ErrMessage = err.Error()
		p.log.Warn("document rejected", zap.String("source", source), zap.Error(err))
		scoreConfidence(r)
		return r
	}
	r.PageCount = doc.PageCount()

	if err := ctx.Err(); err != nil {
		r.Err = err
		r.ErrMessage = err.Error()
		return r
	}

	sections, order, diags := p.segmenter.Segment(doc.Text)
	r.Sections, r.SectionOrder = sections, order
	r.Diagnostics = append(r.Diagnostics, diags...)

	// physical pages backing each section span, for provenance and for
	// page-scoped table engines
	if len(order) > 0 {
		r.SectionPages = make(map[string][]int, len(order))
		for _, key := range order {
			s := sections[key]
			r.SectionPages[key] = doc.PagesForSpan(s.Start, s.End)
		}
	}

	var titles []string
	for _, key := range order {
		titles = append(titles, sections[key].Title)
	}
	if p.opts.AutoProfile {
		r.Routing = p.router.RouteOrGenerate(doc.Text, titles)
	} else {
		r.Routing = p.router.Route(doc.Text)
	}
	tpl := r.Routing.Template
	if tpl == nil {
		tpl = p.store.Generic()
	}
	p.log.Debug("routed",
		zap.String("source", source),
		zap.String("template", r.Routing.Name),
		zap.Float64("score", r.Routing.Score),
		zap.Bool("generated", r.Routing.Generated))

	// composition: section body when present, whole document as fallback
	compBody := doc.Text
	if s, ok := sections[section.KeyComposition]; ok {
		compBody = s.Body
	} else {
		r.Diagnostics = append(r.Diagnostics, "composition: section missing, scanning whole document")
	}
	rows, missed, cdiags := p.comp.Extract(compBody, tpl)
	if rows != nil {
		r.Composition = rows
	}
	r.MissedLines = missed
	r.Diagnostics = append(r.Diagnostics, cdiags...)

	if s, ok := sections[section.KeyPhysChem]; ok {
		if props := p.phys.Extract(s.Body, tpl); props != nil {
			r.Properties = props
		}
	}
	if s, ok := sections[section.KeyRegulatory]; ok {
		if items := p.reg.Extract(s.Body, tpl); items != nil {
			r.Regulatory = items
		}
	}

	sec1 := ""
	if s, ok := sections[section.KeyIdentification]; ok {
		sec1 = s.Body
	}
	r.Identification = extract.ExtractIdentification(sec1, doc.Text, tpl)

	if s, ok := sections[section.KeyHazards]; ok {
		r.Hazards = extract.ExtractHazards(s.Body)
	}

	scoreConfidence(r)
	return r
}
