// Package extract pulls structured fields out of segmented safety data
// sheet text: ingredient composition, physical and chemical properties,
// regulatory listings, hazard communication elements and product identity.
package extract

// Ingredient is one composition row. Low/High are set for ranges, Value for
// single or comparator concentrations; Rep is the representative number used
// downstream (midpoint of a range, otherwise the value).
type Ingredient struct {
	Name    string   `json:"name"`
	Alias   string   `json:"alias,omitempty"`
	CAS     string   `json:"cas"`
	ConcRaw string   `json:"conc_raw"`
	Low     *float64 `json:"low,omitempty"`
	High    *float64 `json:"high,omitempty"`
	Value   *float64 `json:"value,omitempty"`
	Cmp     string   `json:"cmp,omitempty"`
	Unit    string   `json:"unit,omitempty"`
	Rep     *float64 `json:"rep,omitempty"`
	Source  string   `json:"source"` // parser that produced the row
}

// Property is one physical/chemical characteristic, keyed to the canonical
// property vocabulary when the label is recognized, "other" when not.
type Property struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Source string `json:"source"` // table | text
}

// RegulatoryItem is one candidate regulatory listing with its mapping
// outcome. Unmapped candidates are kept with an empty Category and score 0.
type RegulatoryItem struct {
	Chemical  string `json:"chemical"`
	Raw       string `json:"raw"`
	Norm      string `json:"norm"`
	Threshold string `json:"threshold,omitempty"`
	Category  string `json:"match_category"`
	Score     int    `json:"match_score"`
	Source    string `json:"match_source"` // regex | rule | fuzzy | none
}

// Classification is one GHS hazard class / category pair.
type Classification struct {
	HazardClass string `json:"hazard_class"`
	Category    string `json:"category"`
	Raw         string `json:"raw"`
}

// Hazards aggregates the section 2 label elements.
type Hazards struct {
	Classifications []Classification `json:"classifications"`
	HCodes          []string         `json:"h_codes"`
	PCodes          []string         `json:"p_codes"`
	Pictograms      []string         `json:"pictograms"`
	SignalWord      string           `json:"signal_word,omitempty"`
	HazardText      string           `json:"hazard_text,omitempty"`
	PrecautionText  string           `json:"precaution_text,omitempty"`
}

// Identification carries the section 1 identity fields.
type Identification struct {
	ProductName string `json:"product_name"`
	Company     string `json:"company"`
	Address     string `json:"address"`
	DocNo       string `json:"doc_no,omitempty"`
}
