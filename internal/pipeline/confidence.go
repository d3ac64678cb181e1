package pipeline

// fieldWeights balance the field groups when blending the overall score.
// Composition dominates: it is the primary downstream payload.
var fieldWeights = map[string]float64{
	"composition":    0.4,
	"properties":     0.2,
	"regulatory":     0.2,
	"identification": 0.1,
	"hazards":        0.1,
}

const canonicalSectionCount = 16

// scoreConfidence fills in the confidence block from what the stages
// produced. Field scores are presence-based: extracted nothing means zero,
// never an invented value.
func scoreConfidence(r *Result) {
	c := Confidence{Fields: map[string]float64{}}

	c.Segmentation = float64(len(r.Sections)) / canonicalSectionCount
	if c.Segmentation > 1 {
		c.Segmentation = 1
	}
	c.Routing = r.Routing.Score / 100

	c.Fields["composition"] = presence(len(r.Composition))
	c.Fields["properties"] = presence(len(r.Properties))
	c.Fields["regulatory"] = regScore(r)
	c.Fields["identification"] = identScore(r)
	c.Fields["hazards"] = hazardScore(r)

	var fields float64
	for name, w := range fieldWeights {
		fields += w * c.Fields[name]
	}
	c.Overall = 0.2*c.Segmentation + 0.2*c.Routing + 0.6*fields
	r.Confidence = c
}

func presence(n int) float64 {
	if n > 0 {
		return 1
	}
	return 0
}

// regScore rewards mapped categories over raw-only candidates.
func regScore(r *Result) float64 {
	if len(r.Regulatory) == 0 {
		return 0
	}
	mapped := 0
	for _, it := range r.Regulatory {
		if it.Category != "" {
			mapped++
		}
	}
	if mapped == 0 {
		return 0.3
	}
	return 0.5 + 0.5*float64(mapped)/float64(len(r.Regulatory))
}

func identScore(r *Result) float64 {
	score := 0.0
	if r.Identification.ProductName != "" {
		score += 0.5
	}
	if r.Identification.Company != "" {
		score += 0.3
	}
	if r.Identification.Address != "" {
		score += 0.2
	}
	return score
}

func hazardScore(r *Result) float64 {
	score := 0.0
	if len(r.Hazards.HCodes) > 0 {
		score += 0.4
	}
	if len(r.Hazards.PCodes) > 0 {
		score += 0.3
	}
	if len(r.Hazards.Classifications) > 0 {
		score += 0.3
	}
	return score
}
