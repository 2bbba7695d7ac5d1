package agents

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/clearclaim/claims-engine/internal/core/domain"
)

// Shared regex helpers for the rule-based fallback extractors. Patterns
// target the section headers and label conventions of Indian hospital
// paperwork, the corpus these documents come from.

const datePattern = `(\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}-\d{1,2}-\d{1,2}|\d{1,2} [A-Za-z]{3,9},? \d{4})`

var (
	amountPattern = regexp.MustCompile(`(?:Rs\.?|INR|₹)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(?:/-)?`)

	personNamePattern = regexp.MustCompile(`(?:Mr\.?|Mrs\.?|Ms\.?)?\s*([A-Z][a-z]+(?: [A-Z][a-z]+)+)`)

	hospitalNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(Max Healthcare|Fortis|Apollo|AIIMS|Medanta|PGIMER)`),
		regexp.MustCompile(`((?:[A-Z][A-Za-z]+ )+(?:Hospital|Healthcare|Medical Centre|Medical Center|Clinic))`),
		regexp.MustCompile(`([A-Z][A-Z ]+HOSPITAL)`),
	}

	insurerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(ACKO General Insurance|SBI General Insurance|Family Health Plan)`),
		regexp.MustCompile(`((?:[A-Z][A-Za-z]+ )+(?:General )?Insurance(?: Company)?(?: Ltd\.?)?)`),
	}

	policyNumberPattern = regexp.MustCompile(`(?i)policy\s*(?:no\.?|number)?\s*[:\-]?\s*([A-Z0-9][A-Z0-9/\-]{5,})`)
)

func labeledValue(text string, labels []string, valuePattern string) (string, bool) {
	for _, label := range labels {
		re := regexp.MustCompile(`(?i)` + label + `\s*[:\-]?\s*` + valuePattern)
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

func findDateNear(text string, labels ...string) (domain.FieldValue, bool) {
	raw, ok := labeledValue(text, labels, datePattern)
	if !ok {
		return domain.FieldValue{}, false
	}
	iso, valid := NormalizeDate(raw)
	if !valid {
		return domain.FieldValue{}, false
	}
	return domain.DateField(iso), true
}

// findTotalAmount scans every labeled amount and keeps the largest: the
// grand total dominates line items and subtotals.
func findTotalAmount(text string, labels ...string) (domain.FieldValue, bool) {
	best := decimal.Decimal{}
	found := false
	for _, label := range labels {
		re := regexp.MustCompile(`(?i)` + label + `\s*[:\-]?\s*` + amountPattern.String())
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			amount, ok := ParseAmount(m[1])
			if !ok {
				continue
			}
			if !found || amount.GreaterThan(best) {
				best = amount
				found = true
			}
		}
	}
	if !found {
		return domain.FieldValue{}, false
	}
	return domain.AmountField(best), true
}

func findAmountNear(text string, labels ...string) (domain.FieldValue, bool) {
	raw, ok := labeledValue(text, labels, `(?:Rs\.?|INR|₹)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	if !ok {
		return domain.FieldValue{}, false
	}
	amount, valid := ParseAmount(raw)
	if !valid {
		return domain.FieldValue{}, false
	}
	return domain.AmountField(amount), true
}

func findPersonName(text string, labels ...string) (domain.FieldValue, bool) {
	raw, ok := labeledValue(text, labels, personNamePattern.String())
	if !ok {
		return domain.FieldValue{}, false
	}
	return domain.TextField(raw), true
}

func findFirst(text string, patterns []*regexp.Regexp) (domain.FieldValue, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return domain.TextField(strings.TrimSpace(m[1])), true
		}
	}
	return domain.FieldValue{}, false
}

func findLine(text string, labels ...string) (domain.FieldValue, bool) {
	raw, ok := labeledValue(text, labels, `([^\n]+)`)
	if !ok {
		return domain.FieldValue{}, false
	}
	return domain.TextField(strings.TrimSpace(raw)), true
}

func setIfFound(values map[string]domain.FieldValue, name string, value domain.FieldValue, ok bool) {
	if ok {
		values[name] = value
	}
}
