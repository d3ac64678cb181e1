package extract

import (
	"regexp"
	"sort"
	"strings"
)

var (
	hCodeRe      = regexp.MustCompile(`\bH\s*[1-4]\d{2}[A-Z]?\b`)
	pCodeComboRe = regexp.MustCompile(`\bP\d{3}[A-Z]?(?:\s*[+＋]\s*P\d{3}[A-Z]?)+\b`)
	pCodeRe      = regexp.MustCompile(`\bP\d{3}[A-Z]?\b`)

	classLineRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*[-•]?\s*([^:\n]+?)\s*(?:구분|Category)\s*(\d+[A-Z]?)\b`),
		regexp.MustCompile(`(?i)^\s*[-•]?\s*([^:\n]+?)\s*[:\-]\s*구분\s*(\d+[A-Z]?)\b`),
	}

	hazardStopRe = regexp.MustCompile(`(?i)^\s*(?:예방조치문구|유해[·/\s]?위험문구|그림문자|표지요소|label elements|신호어|저장|폐기|대응|응급조치|취급 및 저장|handling|first[-\s]?aid)(?:[\s:：,.]|$)`)
	bulletLead   = regexp.MustCompile(`^\s*[-•·▪▫▶]+\s*`)
	signalWordRe = regexp.MustCompile(`(?im)^\s*(?:신호어|signal\s*word)\s*[:：]?\s*(위험|경고|danger|warning)`)
	wsRun        = regexp.MustCompile(`\s+`)
)

var defaultHazardLabels = []string{"유해·위험문구", "유해/위험문구", "hazard statements", "유해 위험문구", "경고문"}
var defaultPrecautionLabels = []string{"예방조치문구", "precautionary statements", "예방", "주의문"}

// hToPictogram maps H-code families onto GHS pictogram codes.
var hToPictogram = map[string]string{
	"H290": "GHS05", "H314": "GHS05", "H318": "GHS05",
	"H302": "GHS07", "H312": "GHS07", "H315": "GHS07", "H319": "GHS07", "H335": "GHS07",
	"H300": "GHS06", "H310": "GHS06", "H330": "GHS06",
	"H340": "GHS08", "H341": "GHS08", "H350": "GHS08", "H351": "GHS08",
	"H360": "GHS08", "H361": "GHS08", "H370": "GHS08", "H372": "GHS08",
	"H224": "GHS02", "H225": "GHS02", "H226": "GHS02", "H228": "GHS02", "H250": "GHS02",
	"H280": "GHS04",
	"H400": "GHS09", "H410": "GHS09", "H411": "GHS09", "H412": "GHS09", "H413": "GHS09",
}

// ExtractHazards reads section 2 label elements: hazard classifications, H
// and P codes, derived pictograms, signal word and the statement blocks.
func ExtractHazards(body string) Hazards {
	h := Hazards{
		Classifications: hazardClassifications(body),
		HCodes:          hazardHCodes(body),
		PCodes:          hazardPCodes(body),
		HazardText:      sliceLabelBlock(body, defaultHazardLabels),
		PrecautionText:  slicePrecautionBlock(body, defaultPrecautionLabels),
	}
	h.Pictograms = pictogramsFor(h.HCodes)
	if m := signalWordRe.FindStringSubmatch(body); m != nil {
		h.SignalWord = canonicalSignal(m[1])
	}
	return h
}

func canonicalSignal(w string) string {
	switch strings.ToLower(w) {
	case "위험", "danger":
		return "위험"
	case "경고", "warning":
		return "경고"
	}
	return w
}

func hazardClassifications(body string) []Classification {
	var rows []Classification
	for _, ln := range strings.Split(body, "\n") {
		s := strings.TrimSpace(ln)
		if s == "" {
			continue
		}
		for _, re := range classLineRes {
			m := re.FindStringSubmatch(s)
			if m == nil {
				continue
			}
			cls := strings.Trim(wsRun.ReplaceAllString(m[1], " "), " -:·")
			rows = append(rows, Classification{HazardClass: cls, Category: strings.TrimSpace(m[2]), Raw: s})
			break
		}
	}
	seen := map[[2]string]bool{}
	out := rows[:0]
	for _, r := range rows {
		k := [2]string{r.HazardClass, r.Category}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func hazardHCodes(body string) []string {
	set := map[string]bool{}
	for _, c := range hCodeRe.FindAllString(body, -1) {
		set[strings.ReplaceAll(c, " ", "")] = true
	}
	return sortedKeys(set)
}

func hazardPCodes(body string) []string {
	set := map[string]bool{}
	for _, blk := range pCodeComboRe.FindAllString(body, -1) {
		combo := strings.ReplaceAll(wsRun.ReplaceAllString(blk, ""), "＋", "+")
		set[combo] = true
		for _, c := range pCodeRe.FindAllString(blk, -1) {
			set[c] = true
		}
	}
	for _, c := range pCodeRe.FindAllString(body, -1) {
		set[c] = true
	}
	return sortedKeys(set)
}

func pictogramsFor(hCodes []string) []string {
	set := map[string]bool{}
	for _, h := range hCodes {
		base := h
		if len(base) > 4 {
			base = base[:4]
		}
		if g, ok := hToPictogram[base]; ok {
			set[g] = true
		}
	}
	return sortedKeys(set)
}

// sliceLabelBlock collects text under the first matching label line, until a
// stop label terminates the block.
func sliceLabelBlock(body string, labels []string) string {
	lines := strings.Split(body, "\n")
	start := findLabelLine(lines, labels, 0)
	if start < 0 {
		return ""
	}
	return collectBlock(lines, start)
}

// slicePrecautionBlock handles sheets where the precaution label appears
// twice (once on the warning label reproduction, once in the body): among
// candidate label lines, the one followed by the most P codes in the next
// 80 lines wins.
func slicePrecautionBlock(body string, labels []string) string {
	lines := strings.Split(body, "\n")
	bestIdx, bestScore := -1, -1
	for i := 0; i < len(lines); i++ {
		idx := findLabelLine(lines, labels, i)
		if idx < 0 {
			break
		}
		i = idx
		end := idx + 81
		if end > len(lines) {
			end = len(lines)
		}
		score := len(pCodeRe.FindAllString(strings.Join(lines[idx+1:end], "\n"), -1))
		if score > bestScore {
			bestIdx, bestScore = idx, score
		}
	}
	if bestIdx < 0 {
		return ""
	}
	return collectBlock(lines, bestIdx)
}

func findLabelLine(lines, labels []string, from int) int {
	for i := from; i < len(lines); i++ {
		low := strings.ToLower(strings.TrimSpace(lines[i]))
		for _, lbl := range labels {
			if strings.Contains(low, strings.ToLower(lbl)) {
				return i
			}
		}
	}
	return -1
}

func collectBlock(lines []string, labelIdx int) string {
	var out []string
	for _, ln := range lines[labelIdx+1:] {
		if hazardStopRe.MatchString(ln) {
			break
		}
		out = append(out, strings.TrimRight(bulletLead.ReplaceAllString(ln, ""), " "))
	}
	for len(out) > 0 && strings.TrimSpace(out[0]) == "" {
		out = out[1:]
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
