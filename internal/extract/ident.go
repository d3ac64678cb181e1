package extract

import (
	"regexp"
	"strings"

	"github.com/a3tai/msds-extract/internal/template"
)

// Base identity patterns, vendor independent. Profiles only ever append.
var (
	productPatsBase = []string{
		`(?mi)^\s*(?:제품명|제품\s*식별자|표지명|상품명|상표명|제품명칭|Product\s*(?:name|identifier))\s*[:：]\s*(.+)$`,
		`(?mi)^\s*(?:제품명|Product\s*name)\s*\n(.{2,80})$`,
	}
	companyPatsBase = []string{
		`(?mi)^\s*(?:제조사|회사명|공급사|수입사|Manufacturer|Supplier|Company(?:\s*name)?)\s*[:：]\s*(.+)$`,
	}
	addressPatsBase = []string{
		`(?mis)^[ \t]*(?:주소|Address)\s*[:：]\s*([\s\S]{5,400})`,
	}
	docNoPatsBase = []string{
		`\bAA\d{5}-\d{10}\b`,
		`(?i)\b(?:MSDS|SDS)\s*(?:관리번호|No\.?|번호|#)\s*[:：]?\s*([A-Z0-9\-]{10,})`,
		`\b[A-Z0-9]{2,}-[A-Z0-9]{6,}\b`,
	}

	addressStopRe = regexp.MustCompile(`(?mi)\n\s*(?:TEL\b|전화|Fax\b|E-?mail\b|Homepage\b|Website\b|웹|홈페이지)|\n\s*\d+\s*[\.\)]`)
	trimEdges     = regexp.MustCompile(`\s{2,}`)
	addrSpaceRun  = regexp.MustCompile(`[ \t\x{00A0}]+`)
)

// firstHit returns the first capture (or whole match) of the first pattern
// that fires. Broken patterns are skipped.
func firstHit(text string, patterns []string) string {
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[0])
	}
	return ""
}

// kvFallback catches label/value rows rendered with tab or multi-space gaps,
// and label lines followed by a bare value line.
func kvFallback(text string, labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = regexp.QuoteMeta(l)
	}
	lbl := "(?:" + strings.Join(quoted, "|") + ")"
	if re, err := regexp.Compile(`(?mi)^\s*` + lbl + `\s{2,}(.+)$`); err == nil {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if re, err := regexp.Compile(`(?mi)^\s*` + lbl + `\s*\n(.+)$`); err == nil {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ExtractIdentification reads product, company, address and document number
// from the section 1 body, falling back to the whole document for anything
// section 1 did not yield.
func ExtractIdentification(sec1, fullText string, tpl *template.Template) Identification {
	productPats := append(append([]string{}, productPatsBase...), tpl.Ident.ProductPatterns...)
	companyPats := append(append([]string{}, companyPatsBase...), tpl.Ident.CompanyPatterns...)
	addressPats := append(append([]string{}, addressPatsBase...), tpl.Ident.AddressPatterns...)
	docNoPats := append(append([]string{}, tpl.Ident.DocNoPatterns...), docNoPatsBase...)

	id := Identification{
		ProductName: firstHit(sec1, productPats),
		Company:     firstHit(sec1, companyPats),
		Address:     firstHit(sec1, addressPats),
	}
	if id.ProductName == "" {
		id.ProductName = firstHit(fullText, productPats)
		if id.ProductName == "" {
			id.ProductName = kvFallback(fullText, []string{"제품명", "Product name"})
		}
	}
	if id.Company == "" {
		id.Company = firstHit(fullText, companyPats)
		if id.Company == "" {
			id.Company = kvFallback(fullText, []string{"제조사", "회사명", "Manufacturer", "Supplier"})
		}
	}
	if id.Address == "" {
		id.Address = firstHit(fullText, addressPats)
	}
	id.DocNo = firstHit(fullText, docNoPats)

	id.ProductName = strings.Trim(trimEdges.ReplaceAllString(id.ProductName, " "), " -:·•")
	id.Company = strings.Trim(trimEdges.ReplaceAllString(id.Company, " "), " -:·•")
	id.Address = strings.TrimSpace(cutAddress(id.Address))
	return id
}

// cutAddress trims the captured address at contact-detail lines or the next
// numbered heading; the capture itself is deliberately greedy.
func cutAddress(addr string) string {
	if loc := addressStopRe.FindStringIndex(addr); loc != nil {
		addr = addr[:loc[0]]
	}
	addr = addrSpaceRun.ReplaceAllString(addr, " ")
	return addr
}
