// Package template holds the extraction rulesets ("profiles") that describe
// one observed SDS layout: how to recognize it, and how to pull composition,
// property, regulatory and identification fields out of it. Profiles live as
// YAML files in a directory owned by the Store; the Router scores them
// against a document and can synthesize a new profile when nothing matches.
package template

// Default rule constants shared by the generic profile and synthesized
// profiles.
const (
	GenericName = "_generic"

	DefaultCASRegex    = `\b(\d{2,7}-\d{2}-\d)\b`
	DefaultRangeRegex  = `(\d+(?:\.\d+)?)\s*[~\-]\s*(\d+(?:\.\d+)?)(?:\s*%)?`
	DefaultCmpRegex    = `(<=|>=|<|>|≤|≥)\s*(\d+(?:\.\d+)?)(?:\s*%)?`
	DefaultSingleRegex = `(\d+(?:\.\d+)?)(?:\s*%)?`
	DefaultUnit        = "%"
)

// Template is one named profile. All pattern fields are uncompiled regex
// source; compilation happens at use time and a malformed pattern disables
// only itself.
type Template struct {
	Name string `yaml:"name" json:"name"`

	Detect      Detect           `yaml:"detect" json:"detect"`
	Composition CompositionRules `yaml:"composition" json:"composition"`
	PhysChem    PhysChemRules    `yaml:"physchem" json:"physchem"`
	Regulatory  RegulatoryRules  `yaml:"regulatory" json:"regulatory"`
	Ident       IdentRules       `yaml:"ident" json:"ident"`
	Cleanup     CleanupRules     `yaml:"cleanup" json:"cleanup"`
}

// Detect carries the routing signatures. Core patterns identify a layout
// family; seed patterns are minimal regexes captured from the exact document
// a synthesized profile was born from.
type Detect struct {
	CorePatterns []string `yaml:"core_patterns" json:"core_patterns"`
	SeedPatterns []string `yaml:"seed_patterns,omitempty" json:"seed_patterns,omitempty"`
}

// ConcentrationRules configures the shared concentration parser.
type ConcentrationRules struct {
	RangeRegex            string   `yaml:"range_regex" json:"range_regex"`
	CmpRegex              string   `yaml:"cmp_regex" json:"cmp_regex"`
	SingleRegex           string   `yaml:"single_regex" json:"single_regex"`
	DefaultUnit           string   `yaml:"default_unit" json:"default_unit"`
	ForbiddenCASFragments []string `yaml:"forbidden_cas_fragments" json:"forbidden_cas_fragments"`
}

// BlockLayout describes a vendor-declared fixed-stride textual layout for the
// composition section. Mode "ltr" repeats one record every Stride lines in
// FieldOrder; mode "ttb" stacks all names, then all CAS numbers, then all
// concentrations.
type BlockLayout struct {
	Mode          string            `yaml:"mode,omitempty" json:"mode,omitempty"` // "", "ltr", "ttb"
	Stride        int               `yaml:"stride,omitempty" json:"stride,omitempty"`
	FieldOrder    []string          `yaml:"field_order,omitempty" json:"field_order,omitempty"`
	FieldPatterns map[string]string `yaml:"field_patterns,omitempty" json:"field_patterns,omitempty"`
	MaxGapLines   int               `yaml:"max_gap_lines,omitempty" json:"max_gap_lines,omitempty"`
}

// CompositionRules drives the three-stage composition cascade.
type CompositionRules struct {
	EngineOrder     []string            `yaml:"engine_order" json:"engine_order"`
	HeaderAliases   map[string][]string `yaml:"header_aliases" json:"header_aliases"` // keys: name, cas, conc
	CASRegex        string              `yaml:"cas_regex" json:"cas_regex"`
	Concentration   ConcentrationRules  `yaml:"concentration" json:"concentration"`
	Block           BlockLayout         `yaml:"block,omitempty" json:"block,omitempty"`
	BlockerPatterns []string            `yaml:"blocker_patterns,omitempty" json:"blocker_patterns,omitempty"`
	StopRowPatterns []string            `yaml:"stop_row_patterns,omitempty" json:"stop_row_patterns,omitempty"`
}

// PhysChemRules lets a profile extend the canonical property alias table.
type PhysChemRules struct {
	LabelAliases map[string][]string `yaml:"label_aliases,omitempty" json:"label_aliases,omitempty"`
}

// RegulatoryRules configures candidate splitting for section 15.
type RegulatoryRules struct {
	SplitTokens    []string `yaml:"split_tokens,omitempty" json:"split_tokens,omitempty"`
	HeaderPrefixes []string `yaml:"header_prefixes,omitempty" json:"header_prefixes,omitempty"`
	BulletPrefixes []string `yaml:"bullet_prefixes,omitempty" json:"bullet_prefixes,omitempty"`
}

// IdentRules appends vendor-specific identification patterns to the built-in
// base lists.
type IdentRules struct {
	ProductPatterns []string `yaml:"product_patterns,omitempty" json:"product_patterns,omitempty"`
	CompanyPatterns []string `yaml:"company_patterns,omitempty" json:"company_patterns,omitempty"`
	AddressPatterns []string `yaml:"address_patterns,omitempty" json:"address_patterns,omitempty"`
	DocNoPatterns   []string `yaml:"doc_no_patterns,omitempty" json:"doc_no_patterns,omitempty"`
}

// CleanupRules drops noise lines before any parsing stage runs.
type CleanupRules struct {
	DropLinePatterns []string `yaml:"drop_line_patterns,omitempty" json:"drop_line_patterns,omitempty"`
}

// Generic returns the fallback profile: loose detection, every engine
// enabled, generic header aliases and default concentration patterns.
func Generic() *Template {
	return &Template{
		Name: GenericName,
		Detect: Detect{
			CorePatterns: []string{
				`(?i)(MSDS|SDS|물질안전보건자료)`,
				`(?i)composition|ingredients|성분|함유량`,
				`(?i)physical|chemical|물리|화학적\s*특성`,
				`(?i)regulatory|규제\s*정보|법적\s*규제`,
			},
		},
		Composition: CompositionRules{
			EngineOrder: []string{"textgrid"},
			HeaderAliases: map[string][]string{
				"name": {`(?i)구성성분|성분|물질명|관용명|name|chemical|substance|component|ingredient`},
				"cas":  {`(?i)cas\s*no\.?|cas\s*번호|\bcas\b|식별번호`},
				"conc": {`(?i)함유율|함유량|함량|농도|content|concentration|conc|weight\s*%`},
			},
			CASRegex: DefaultCASRegex,
			Concentration: ConcentrationRules{
				RangeRegex:            DefaultRangeRegex,
				CmpRegex:              DefaultCmpRegex,
				SingleRegex:           DefaultSingleRegex,
				DefaultUnit:           DefaultUnit,
				ForbiddenCASFragments: []string{"7732-18"},
			},
			BlockerPatterns: []string{`(?m)^\s*표기되지\s*않은\s*구성성분`},
		},
		Regulatory: RegulatoryRules{
			SplitTokens:    []string{",", ";", "·", "/", "|"},
			HeaderPrefixes: []string{"PRODUCT", "항목", "대상물질"},
			BulletPrefixes: []string{"-", "·", "•", "○"},
		},
	}
}
