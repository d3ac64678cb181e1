package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	concUnit = `(?:wt/?%|w/?w%|vol/?%|v/?v%|%|ppm|mg/?m\^?3|mg/?m3|mg/?L|g/?L|µg/?L|ug/?L|mg/?kg|g/?kg)`
	concVal  = `(?:\d{1,3}(?:,\d{3})*(?:\.\d+)?|\d{1,4}(?:\.\d+)?)`
)

var (
	rxRangeStrict  = regexp.MustCompile(`(?i)(` + concVal + `)\s*(?:[-–~∼]\s*|to\s+)(` + concVal + `)\s*(` + concUnit + `)`)
	rxCmpStrict    = regexp.MustCompile(`(?i)(<=|>=|<|>|≤|≥)\s*(` + concVal + `)\s*(` + concUnit + `)`)
	rxSingleStrict = regexp.MustCompile(`(?i)(` + concVal + `)\s*(` + concUnit + `)`)

	rxRangeLoose  = regexp.MustCompile(`(?i)(` + concVal + `)\s*(?:[-–~∼]\s*|to\s+)(` + concVal + `)`)
	rxCmpLoose    = regexp.MustCompile(`(?i)(<=|>=|<|>|≤|≥)\s*(` + concVal + `)`)
	rxSingleLoose = regexp.MustCompile(`(?i)(` + concVal + `)`)
)

var cmpGlyphs = map[string]string{
	"<=": "≤", ">=": "≥", "<": "<", ">": ">", "≤": "≤", "≥": "≥",
}

// Concentration is the parsed form of one concentration cell or phrase.
type Concentration struct {
	Raw   string
	Low   *float64
	High  *float64
	Value *float64
	Cmp   string
	Unit  string
	Rep   *float64
}

func toFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	return v, err == nil
}

func validPercentRange(lo, hi float64) bool {
	return lo >= 0 && lo <= 100 && hi >= 0 && hi <= 100 && lo <= hi
}

func validPercentValue(v float64) bool { return v >= 0 && v <= 100 }

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

func fptr(v float64) *float64 { return &v }

// isCASFragment reports whether the token is the leading "NNNNN-NN" fragment
// of the given CAS number; such fragments must never be read as ranges.
func isCASFragment(token, cas string) bool {
	parts := strings.Split(cas, "-")
	if len(parts) < 3 {
		return false
	}
	return strings.ReplaceAll(token, " ", "") == parts[0]+"-"+parts[1]
}

// digitAdjacent reports whether the match at [start,end) touches a digit on
// either side, which means it is a fragment of a larger number (typically a
// CAS segment) rather than a standalone concentration.
func digitAdjacent(s string, start, end int) bool {
	if start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		return true
	}
	if start > 0 && (s[start-1] == '-' || s[start-1] == '.') {
		return true
	}
	rest := strings.TrimLeft(s[end:], " ")
	if strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "–") {
		after := strings.TrimLeft(strings.TrimPrefix(strings.TrimPrefix(rest, "-"), "–"), " ")
		if after != "" && after[0] >= '0' && after[0] <= '9' {
			return true
		}
	}
	return false
}

// ParseConcentration reads the first concentration out of raw, trying
// range, comparator and finally single-value forms; explicit units first,
// then a loose pass that assumes percent. cas is the row's CAS number, used
// to reject its own fragments. Returns nil when nothing usable parses.
func ParseConcentration(raw, cas, defaultUnit string) *Concentration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if defaultUnit == "" {
		defaultUnit = "%"
	}

	// strict pass: the unit is on the page
	if loc := rxRangeStrict.FindStringSubmatchIndex(raw); loc != nil {
		m := rxRangeStrict.FindStringSubmatch(raw)
		if !isCASFragment(m[0], cas) {
			lo, ok1 := toFloat(m[1])
			hi, ok2 := toFloat(m[2])
			if ok1 && ok2 && lo <= hi {
				return rangeConc(m[0], lo, hi, m[3])
			}
		}
	}
	if m := rxCmpStrict.FindStringSubmatch(raw); m != nil && !isCASFragment(m[0], cas) {
		if v, ok := toFloat(m[2]); ok {
			return cmpConc(m[0], cmpGlyphs[m[1]], v, m[3])
		}
	}
	if m := rxSingleStrict.FindStringSubmatch(raw); m != nil && !isCASFragment(m[0], cas) {
		if v, ok := toFloat(m[1]); ok {
			return valueConc(m[0], v, m[2])
		}
	}

	// loose pass: unitless numbers are read as percent, bounds enforced
	if loc := rxRangeLoose.FindStringSubmatchIndex(raw); loc != nil {
		m := raw[loc[0]:loc[1]]
		lo, ok1 := toFloat(raw[loc[2]:loc[3]])
		hi, ok2 := toFloat(raw[loc[4]:loc[5]])
		if ok1 && ok2 && !isCASFragment(m, cas) && !digitAdjacent(raw, loc[0], loc[1]) && validPercentRange(lo, hi) {
			return rangeConc(m, lo, hi, defaultUnit)
		}
	}
	if loc := rxCmpLoose.FindStringSubmatchIndex(raw); loc != nil {
		m := raw[loc[0]:loc[1]]
		v, ok := toFloat(raw[loc[4]:loc[5]])
		if ok && !isCASFragment(m, cas) && !digitAdjacent(raw, loc[0], loc[1]) && validPercentValue(v) {
			return cmpConc(m, cmpGlyphs[raw[loc[2]:loc[3]]], v, defaultUnit)
		}
	}
	if loc := rxSingleLoose.FindStringSubmatchIndex(raw); loc != nil {
		m := raw[loc[0]:loc[1]]
		v, ok := toFloat(m)
		if ok && !isCASFragment(m, cas) && !digitAdjacent(raw, loc[0], loc[1]) && validPercentValue(v) {
			return valueConc(m, v, defaultUnit)
		}
	}
	return nil
}

func rangeConc(raw string, lo, hi float64, unit string) *Concentration {
	return &Concentration{Raw: raw, Low: fptr(lo), High: fptr(hi), Unit: unit, Rep: fptr(round6((lo + hi) / 2))}
}

func cmpConc(raw, cmp string, v float64, unit string) *Concentration {
	return &Concentration{Raw: raw, Cmp: cmp, Value: fptr(v), Unit: unit, Rep: fptr(v)}
}

func valueConc(raw string, v float64, unit string) *Concentration {
	return &Concentration{Raw: raw, Value: fptr(v), Unit: unit, Rep: fptr(v)}
}

// fill copies the parsed concentration into an ingredient row.
func (c *Concentration) fill(row *Ingredient) {
	row.ConcRaw = c.Raw
	row.Low, row.High = c.Low, c.High
	row.Value, row.Cmp = c.Value, c.Cmp
	row.Unit, row.Rep = c.Unit, c.Rep
}
