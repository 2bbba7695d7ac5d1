package usecase

import (
	"fmt"

	"github.com/clearclaim/claims-engine/internal/core/domain"
)

const defaultWarnConfidenceBelow = 0.6

// ClaimValidator cross-checks the extracted fields of one submission for
// completeness and mutual consistency. It is deterministic and never calls
// external services.
type ClaimValidator struct {
	warnBelow float64
	match     MatchPolicy
}

type ValidatorConfig struct {
	WarnConfidenceBelow float64
	Match               MatchPolicy
}

func NewClaimValidator(cfg ValidatorConfig) *ClaimValidator {
	if cfg.WarnConfidenceBelow <= 0 {
		cfg.WarnConfidenceBelow = defaultWarnConfidenceBelow
	}
	if cfg.Match.MinSimilarity <= 0 {
		cfg.Match = DefaultMatchPolicy()
	}
	return &ClaimValidator{warnBelow: cfg.WarnConfidenceBelow, match: cfg.Match}
}

func (v *ClaimValidator) Validate(submission domain.ClaimSubmission) domain.ValidationResult {
	result := domain.ValidationResult{
		MissingDocuments: []string{},
		Discrepancies:    []string{},
		Warnings:         []string{},
	}

	v.checkCompleteness(submission, &result)
	v.checkConsistency(submission, &result)
	v.checkQuality(submission, &result)

	return result
}

func (v *ClaimValidator) checkCompleteness(submission domain.ClaimSubmission, result *domain.ValidationResult) {
	for _, required := range domain.RequiredDocumentTypes() {
		if len(submission.DocumentsOfType(required)) == 0 {
			result.MissingDocuments = append(result.MissingDocuments,
				fmt.Sprintf("missing required document: %s", required))
		}
	}
}

func (v *ClaimValidator) checkConsistency(submission domain.ClaimSubmission, result *domain.ValidationResult) {
	bills := submission.DocumentsOfType(domain.TypeHospitalBill)
	discharges := submission.DocumentsOfType(domain.TypeDischargeSummary)
	cards := submission.DocumentsOfType(domain.TypeInsuranceCard)

	// Patient identity across all three types. The card names the field
	// card_holder_name; bill and discharge both call it patient_name.
	v.comparePair(result, "patient_name", bills, "patient_name", discharges, "patient_name", v.match.NamesMatch)
	v.comparePair(result, "patient_name", bills, "patient_name", cards, "card_holder_name", v.match.NamesMatch)
	v.comparePair(result, "patient_name", discharges, "patient_name", cards, "card_holder_name", v.match.NamesMatch)

	v.comparePair(result, "hospital_name", bills, "hospital_name", discharges, "hospital_name", v.match.HospitalsMatch)
	v.comparePair(result, "insurance_company", bills, "insurance_company", cards, "insurance_company", v.match.InsurersMatch)

	v.compareDates(result, "admission_date", bills, discharges)
	v.compareDates(result, "discharge_date", bills, discharges)

	// A bill without a recoverable total is a discrepancy, not a decision
	// concern: the decision engine must always see a consistent signal.
	for _, bill := range bills {
		result.ChecksRun++
		if !bill.Fields.Present("total_amount") {
			result.Discrepancies = append(result.Discrepancies,
				fmt.Sprintf("hospital_bill %q has no recoverable total_amount", bill.Filename))
		}
	}
}

// comparePair checks one shared semantic field between the first document of
// each group, naming both sources in the finding on mismatch.
func (v *ClaimValidator) comparePair(
	result *domain.ValidationResult,
	field string,
	left []domain.ProcessedDocument, leftField string,
	right []domain.ProcessedDocument, rightField string,
	matches func(a, b string) bool,
) {
	if len(left) == 0 || len(right) == 0 {
		return
	}
	a := left[0].Fields.Get(leftField)
	b := right[0].Fields.Get(rightField)
	if !a.Present || !b.Present {
		return
	}
	result.ChecksRun++
	if !matches(a.Text, b.Text) {
		result.Discrepancies = append(result.Discrepancies, fmt.Sprintf(
			"%s mismatch: %s %q vs %s %q",
			field,
			left[0].Classification.Type, a.Display(),
			right[0].Classification.Type, b.Display(),
		))
	}
}

func (v *ClaimValidator) compareDates(
	result *domain.ValidationResult,
	field string,
	bills, discharges []domain.ProcessedDocument,
) {
	if len(bills) == 0 || len(discharges) == 0 {
		return
	}
	a := bills[0].Fields.Get(field)
	b := discharges[0].Fields.Get(field)
	if !a.Present || !b.Present {
		return
	}
	result.ChecksRun++
	if a.Date != b.Date {
		result.Discrepancies = append(result.Discrepancies, fmt.Sprintf(
			"%s mismatch: %s %q vs %s %q",
			field,
			domain.TypeHospitalBill, a.Date,
			domain.TypeDischargeSummary, b.Date,
		))
	}
}

func (v *ClaimValidator) checkQuality(submission domain.ClaimSubmission, result *domain.ValidationResult) {
	for _, doc := range submission.Documents {
		if doc.Text.Degraded {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("degraded text extraction for %q", doc.Filename))
		}
		if doc.Classification.Confidence < v.warnBelow {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"low classification confidence for %q (%s): %.2f",
				doc.Filename, doc.Classification.Type, doc.Classification.Confidence))
		}
		if doc.Classification.Type.Known() && doc.Fields.Confidence < v.warnBelow {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"low extraction confidence for %q (%s): %.2f",
				doc.Filename, doc.Classification.Type, doc.Fields.Confidence))
		}
	}

	for _, discharge := range submission.DocumentsOfType(domain.TypeDischargeSummary) {
		if !discharge.Fields.Present("diagnosis") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("discharge summary %q is missing a diagnosis", discharge.Filename))
		}
	}
	for _, card := range submission.DocumentsOfType(domain.TypeInsuranceCard) {
		if !card.Fields.Present("policy_number") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("insurance card %q is missing a policy number", card.Filename))
		}
		if !card.Fields.Present("sum_insured") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("insurance card %q does not state the sum insured", card.Filename))
		}
	}
}
