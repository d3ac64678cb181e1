package template

import (
	"regexp"

	"go.uber.org/zap"
)

// ScoringConfig collects every knob of the routing score in one place.
type ScoringConfig struct {
	CoreWeight    float64 // weight of core-pattern hit rate in the blend
	SeedWeight    float64 // weight of seed-pattern hit rate in the blend
	SeedCap       float64 // ceiling applied to the seed rate before blending
	MinConfidence float64 // routing threshold; below it the generic wins
	MinSections   int     // documents with fewer sections never auto-generate
}

// DefaultScoring mirrors the production tuning.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		CoreWeight:    0.6,
		SeedWeight:    0.4,
		SeedCap:       100,
		MinConfidence: 80,
		MinSections:   3,
	}
}

// Candidate is one scored profile considered during routing.
type Candidate struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	DocLock bool    `json:"doc_lock"`
}

// Decision is the routing outcome for one document.
type Decision struct {
	Template   *Template   `json:"-"`
	Name       string      `json:"name"`
	Score      float64     `json:"score"`
	DocLock    bool        `json:"doc_lock"`
	Generated  bool        `json:"generated"`
	Reason     string      `json:"reason"`
	Candidates []Candidate `json:"candidates"`
}

// Router scores stored profiles against document text.
type Router struct {
	store *Store
	cfg   ScoringConfig
	log   *zap.Logger
}

func NewRouter(store *Store, cfg ScoringConfig, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{store: store, cfg: cfg, log: log}
}

// Score evaluates one profile against the text. A profile whose every seed
// pattern matches is considered locked to the document and scores 100
// regardless of its core hit rate.
func (r *Router) Score(t *Template, text string) (score float64, docLock bool) {
	corePct := matchRate(t.Detect.CorePatterns, text)
	if len(t.Detect.SeedPatterns) > 0 {
		seedPct := matchRate(t.Detect.SeedPatterns, text)
		if seedPct >= 100 {
			return 100, true
		}
		if seedPct > r.cfg.SeedCap {
			seedPct = r.cfg.SeedCap
		}
		blended := r.cfg.CoreWeight*corePct + r.cfg.SeedWeight*seedPct
		if blended > corePct {
			return blended, false
		}
	}
	return corePct, false
}

// Route scores every stored profile and picks the best one. Doc-locked
// profiles win outright, ties broken by name so routing is deterministic.
// Below the confidence threshold the generic profile is returned instead.
func (r *Router) Route(text string) Decision {
	var (
		best  *Template
		d     Decision
		cands []Candidate
	)
	for _, t := range r.store.All() {
		if t.Name == GenericName {
			continue
		}
		score, lock := r.Score(t, text)
		cands = append(cands, Candidate{Name: t.Name, Score: score, DocLock: lock})
		better := best == nil ||
			(lock && !d.DocLock) ||
			(lock == d.DocLock && score > d.Score)
		if better {
			best, d.Score, d.DocLock = t, score, lock
		}
	}
	d.Candidates = cands
	if best == nil {
		g := r.store.Generic()
		return Decision{Template: g, Name: g.Name, Reason: "no layout profiles defined", Candidates: cands}
	}
	if d.DocLock {
		d.Template, d.Name, d.Score, d.Reason = best, best.Name, 100, "seed lock"
		return d
	}
	if d.Score < r.cfg.MinConfidence {
		g := r.store.Generic()
		d.Template, d.Name, d.Reason = g, g.Name, "below confidence threshold"
		return d
	}
	d.Template, d.Name, d.Reason = best, best.Name, "core match"
	return d
}

// RouteOrGenerate routes the document and, when only the generic fallback
// applies and the document shows enough structure, synthesizes a dedicated
// profile from its section titles, persists it, and routes again. The second
// pass is expected to lock onto the new profile.
func (r *Router) RouteOrGenerate(text string, sectionTitles []string) Decision {
	d := r.Route(text)
	if d.Name != GenericName || len(sectionTitles) < r.cfg.MinSections {
		return d
	}
	t := Synthesize(sectionTitles)
	if t == nil {
		return d
	}
	if err := r.store.Add(t); err != nil {
		r.log.Warn("profile synthesis failed to persist", zap.Error(err))
		return d
	}
	r.log.Info("profile synthesized",
		zap.String("name", t.Name),
		zap.Int("seed_patterns", len(t.Detect.SeedPatterns)))
	d2 := r.Route(text)
	d2.Generated = true
	if d2.Name == t.Name {
		d2.Reason = "generated from document"
	}
	return d2
}

// matchRate compiles each pattern lazily and returns the percentage that
// match. Patterns that fail to compile count as misses.
func matchRate(patterns []string, text string) float64 {
	if len(patterns) == 0 {
		return 0
	}
	hits := 0
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			hits++
		}
	}
	return 100 * float64(hits) / float64(len(patterns))
}
