package usecase

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/clearclaim/claims-engine/internal/core/domain"
)

func processedDoc(filename string, docType domain.DocumentType, confidence float64, fields domain.ExtractedFields) domain.ProcessedDocument {
	return domain.ProcessedDocument{
		ID:             filename,
		Filename:       filename,
		Classification: domain.Classification{Type: docType, Confidence: confidence},
		Fields:         fields,
	}
}

func consistentSubmission() domain.ClaimSubmission {
	return domain.ClaimSubmission{
		ID: "sub-1",
		Documents: []domain.ProcessedDocument{
			processedDoc("bill.pdf", domain.TypeHospitalBill, 0.9, billFields("John Doe")),
			processedDoc("discharge.pdf", domain.TypeDischargeSummary, 0.9, dischargeFields("John Doe")),
			processedDoc("card.pdf", domain.TypeInsuranceCard, 0.9, cardFields("John Doe")),
		},
	}
}

func TestValidateCleanSubmission(t *testing.T) {
	v := NewClaimValidator(ValidatorConfig{})

	result := v.Validate(consistentSubmission())
	if !result.Clean() {
		t.Fatalf("expected clean result, got %+v", result)
	}
	// Three patient pairs, hospital, insurer, two dates, one bill total.
	if result.ChecksRun != 8 {
		t.Fatalf("expected 8 checks, got %d", result.ChecksRun)
	}
}

func TestValidateReportsMissingDocuments(t *testing.T) {
	v := NewClaimValidator(ValidatorConfig{})

	result := v.Validate(domain.ClaimSubmission{
		Documents: []domain.ProcessedDocument{
			processedDoc("bill.pdf", domain.TypeHospitalBill, 0.9, billFields("John Doe")),
		},
	})
	if len(result.MissingDocuments) != 2 {
		t.Fatalf("expected 2 missing documents, got %v", result.MissingDocuments)
	}
	for _, want := range []string{"discharge_summary", "insurance_card"} {
		found := false
		for _, m := range result.MissingDocuments {
			if strings.Contains(m, want) {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing documents do not cite %s: %v", want, result.MissingDocuments)
		}
	}
}

func TestValidateSkipsChecksOnAbsentFields(t *testing.T) {
	v := NewClaimValidator(ValidatorConfig{})

	discharge := dischargeFields("John Doe")
	delete(discharge.Values, "patient_name")
	delete(discharge.Values, "admission_date")

	submission := domain.ClaimSubmission{
		Documents: []domain.ProcessedDocument{
			processedDoc("bill.pdf", domain.TypeHospitalBill, 0.9, billFields("John Doe")),
			processedDoc("discharge.pdf", domain.TypeDischargeSummary, 0.9, discharge),
			processedDoc("card.pdf", domain.TypeInsuranceCard, 0.9, cardFields("John Doe")),
		},
	}
	result := v.Validate(submission)
	if len(result.Discrepancies) != 0 {
		t.Fatalf("absent fields must not produce discrepancies: %v", result.Discrepancies)
	}
	// Two patient pairs and one date comparison drop out.
	if result.ChecksRun != 5 {
		t.Fatalf("expected 5 checks, got %d", result.ChecksRun)
	}
}

func TestValidateDateMismatch(t *testing.T) {
	v := NewClaimValidator(ValidatorConfig{})

	discharge := dischargeFields("John Doe")
	discharge.Values["admission_date"] = domain.DateField("2024-03-02")

	submission := consistentSubmission()
	submission.Documents[1].Fields = discharge

	result := v.Validate(submission)
	if len(result.Discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %v", result.Discrepancies)
	}
	if !strings.Contains(result.Discrepancies[0], "admission_date mismatch") {
		t.Fatalf("unexpected discrepancy: %s", result.Discrepancies[0])
	}
}

func TestValidateBillWithoutTotalIsDiscrepancy(t *testing.T) {
	v := NewClaimValidator(ValidatorConfig{})

	bill := billFields("John Doe")
	bill.Values["total_amount"] = domain.AbsentField(domain.FieldAmount)

	submission := consistentSubmission()
	submission.Documents[0].Fields = bill

	result := v.Validate(submission)
	if len(result.Discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %v", result.Discrepancies)
	}
	if !strings.Contains(result.Discrepancies[0], "no recoverable total_amount") {
		t.Fatalf("unexpected discrepancy: %s", result.Discrepancies[0])
	}
}

func TestValidateQualityWarnings(t *testing.T) {
	v := NewClaimValidator(ValidatorConfig{WarnConfidenceBelow: 0.6})

	discharge := dischargeFields("John Doe")
	delete(discharge.Values, "diagnosis")
	card := cardFields("John Doe")
	delete(card.Values, "sum_insured")
	delete(card.Values, "policy_number")

	submission := domain.ClaimSubmission{
		Documents: []domain.ProcessedDocument{
			processedDoc("bill.pdf", domain.TypeHospitalBill, 0.4, billFields("John Doe")),
			processedDoc("discharge.pdf", domain.TypeDischargeSummary, 0.9, discharge),
			processedDoc("card.pdf", domain.TypeInsuranceCard, 0.9, card),
		},
	}
	submission.Documents[0].Text.Degraded = true

	result := v.Validate(submission)
	if len(result.Discrepancies) != 0 {
		t.Fatalf("quality findings must be warnings, got discrepancies: %v", result.Discrepancies)
	}

	joined := strings.Join(result.Warnings, "\n")
	for _, want := range []string{
		"degraded text extraction",
		"low classification confidence",
		"missing a diagnosis",
		"missing a policy number",
		"does not state the sum insured",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("warnings missing %q: %v", want, result.Warnings)
		}
	}
}

func TestValidateLowExtractionConfidenceWarns(t *testing.T) {
	v := NewClaimValidator(ValidatorConfig{})

	bill := billFields("John Doe")
	bill.Confidence = 0.3

	submission := consistentSubmission()
	submission.Documents[0].Fields = bill

	result := v.Validate(submission)
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "low extraction confidence") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected low extraction confidence warning, got %v", result.Warnings)
	}
}

// Amounts survive decimal round-trips exactly; a quick guard that the
// display form used in findings is not float-formatted.
func TestAmountDisplayIsExact(t *testing.T) {
	amount, err := decimal.NewFromString("325624.50")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := domain.AmountField(amount).Display(); got != "325624.5" {
		t.Fatalf("unexpected display: %s", got)
	}
}
