package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
)

type extractorFake struct {
	err error
}

func (f *extractorFake) Extract(_ context.Context, raw domain.RawDocument) (domain.ExtractedText, error) {
	if f.err != nil {
		return domain.ExtractedText{}, f.err
	}
	return domain.ExtractedText{Text: string(raw.Content)}, nil
}

// classifierFake labels text by marker substrings so each test controls
// classification through document content alone.
type classifierFake struct {
	confidence float64
	err        error
}

func (f *classifierFake) Classify(_ context.Context, text domain.ExtractedText) (domain.Classification, error) {
	if f.err != nil {
		return domain.Classification{}, f.err
	}
	confidence := f.confidence
	if confidence == 0 {
		confidence = 0.9
	}
	switch {
	case strings.Contains(text.Text, "BILL"):
		return domain.Classification{Type: domain.TypeHospitalBill, Confidence: confidence}, nil
	case strings.Contains(text.Text, "DISCHARGE"):
		return domain.Classification{Type: domain.TypeDischargeSummary, Confidence: confidence}, nil
	case strings.Contains(text.Text, "CARD"):
		return domain.Classification{Type: domain.TypeInsuranceCard, Confidence: confidence}, nil
	default:
		return domain.Classification{Type: domain.TypeUnknown}, nil
	}
}

type agentFake struct {
	docType domain.DocumentType
	fields  domain.ExtractedFields
	err     error
}

func (f *agentFake) DocumentType() domain.DocumentType { return f.docType }

func (f *agentFake) Extract(context.Context, domain.ExtractedText) (domain.ExtractedFields, error) {
	if f.err != nil {
		return domain.EmptyFields(), f.err
	}
	return f.fields, nil
}

type notifierFake struct {
	mu     sync.Mutex
	events []domain.DecisionEvent
	err    error
}

func (f *notifierFake) PublishDecision(_ context.Context, event domain.DecisionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

type metricsFake struct {
	mu        sync.Mutex
	claims    []string
	documents []string
	fallbacks []string
}

func (f *metricsFake) ObserveClaim(status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims = append(f.claims, status)
}

func (f *metricsFake) CountDocument(documentType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents = append(f.documents, documentType)
}

func (f *metricsFake) CountFallback(stage string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallbacks = append(f.fallbacks, stage)
}

func fieldsWith(confidence float64, values map[string]domain.FieldValue) domain.ExtractedFields {
	return domain.ExtractedFields{Values: values, Confidence: confidence}
}

func billFields(patient string) domain.ExtractedFields {
	return fieldsWith(0.95, map[string]domain.FieldValue{
		"patient_name":      domain.TextField(patient),
		"hospital_name":     domain.TextField("Max Healthcare"),
		"total_amount":      domain.AmountField(decimal.NewFromInt(325624)),
		"admission_date":    domain.DateField("2024-03-01"),
		"discharge_date":    domain.DateField("2024-03-05"),
		"insurance_company": domain.TextField("ACKO General Insurance"),
	})
}

func dischargeFields(patient string) domain.ExtractedFields {
	return fieldsWith(0.95, map[string]domain.FieldValue{
		"patient_name":   domain.TextField(patient),
		"diagnosis":      domain.TextField("Acute appendicitis"),
		"admission_date": domain.DateField("2024-03-01"),
		"discharge_date": domain.DateField("2024-03-05"),
		"hospital_name":  domain.TextField("Max Healthcare Hospital"),
	})
}

func cardFields(holder string) domain.ExtractedFields {
	return fieldsWith(0.95, map[string]domain.FieldValue{
		"card_holder_name":  domain.TextField(holder),
		"insurance_company": domain.TextField("ACKO General Insurance Ltd"),
		"policy_number":     domain.TextField("POL-1234567"),
		"sum_insured":       domain.AmountField(decimal.NewFromInt(500000)),
	})
}

func newTestUseCase(cardHolder string) (*ProcessClaimUseCase, *notifierFake, *metricsFake) {
	notifier := &notifierFake{}
	recorder := &metricsFake{}
	uc := NewProcessClaimUseCase(
		&extractorFake{},
		&classifierFake{},
		[]ports.FieldAgent{
			&agentFake{docType: domain.TypeHospitalBill, fields: billFields("John Doe")},
			&agentFake{docType: domain.TypeDischargeSummary, fields: dischargeFields("John Doe")},
			&agentFake{docType: domain.TypeInsuranceCard, fields: cardFields(cardHolder)},
		},
		NewClaimValidator(ValidatorConfig{}),
		NewDecisionEngine(DefaultConfidencePolicy()),
		notifier,
		recorder,
	)
	return uc, notifier, recorder
}

func fullSubmission() []domain.RawDocument {
	return []domain.RawDocument{
		{Filename: "bill.pdf", Content: []byte("BILL")},
		{Filename: "discharge.pdf", Content: []byte("DISCHARGE")},
		{Filename: "card.pdf", Content: []byte("CARD")},
	}
}

func TestProcessApprovesConsistentSubmission(t *testing.T) {
	uc, notifier, recorder := newTestUseCase("John Doe")

	result, err := uc.Process(context.Background(), fullSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Decision.Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %s (%s)", result.Decision.Status, result.Decision.Reason)
	}
	if result.Decision.RecommendedAmount == nil {
		t.Fatal("expected a recommended amount")
	}
	if got := result.Decision.RecommendedAmount.String(); got != "325624" {
		t.Fatalf("expected recommended amount 325624, got %s", got)
	}
	// 0.4*0.9 classification + 0.6*0.95 extraction on every document.
	want := 0.4*0.9 + 0.6*0.95
	if diff := result.Decision.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected confidence %.3f, got %.3f", want, result.Decision.Confidence)
	}
	if !result.Validation.Clean() {
		t.Fatalf("expected clean validation, got %+v", result.Validation)
	}

	if len(result.Submission.Documents) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(result.Submission.Documents))
	}
	for i, want := range []string{"bill.pdf", "discharge.pdf", "card.pdf"} {
		if got := result.Submission.Documents[i].Filename; got != want {
			t.Fatalf("document %d: expected %s, got %s", i, want, got)
		}
	}

	if result.Summary.TotalDocuments != 3 || result.Summary.ClassifiedKnown != 3 || result.Summary.ExtractedDocuments != 3 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(notifier.events))
	}
	if notifier.events[0].SubmissionID != result.Submission.ID {
		t.Fatal("event submission id does not match result")
	}
	if len(recorder.claims) != 1 || recorder.claims[0] != "approved" {
		t.Fatalf("unexpected claim observations: %v", recorder.claims)
	}
}

func TestProcessPendingWhenDocumentsMissing(t *testing.T) {
	uc, _, _ := newTestUseCase("John Doe")

	result, err := uc.Process(context.Background(), []domain.RawDocument{
		{Filename: "bill.pdf", Content: []byte("BILL")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Decision.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", result.Decision.Status)
	}
	if len(result.Validation.MissingDocuments) != 2 {
		t.Fatalf("expected 2 missing documents, got %v", result.Validation.MissingDocuments)
	}
	if !strings.Contains(result.Decision.Reason, string(domain.TypeDischargeSummary)) ||
		!strings.Contains(result.Decision.Reason, string(domain.TypeInsuranceCard)) {
		t.Fatalf("reason does not name missing documents: %s", result.Decision.Reason)
	}
}

func TestProcessRejectsPatientNameMismatch(t *testing.T) {
	// "Jon Doe" is close to "John Doe" but outside the similarity
	// tolerance, so identity cannot be established across documents.
	uc, _, _ := newTestUseCase("Jon Doe")

	result, err := uc.Process(context.Background(), fullSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Decision.Status != domain.StatusRejected {
		t.Fatalf("expected rejected, got %s (%s)", result.Decision.Status, result.Decision.Reason)
	}
	if !strings.Contains(result.Decision.Reason, "patient_name mismatch") {
		t.Fatalf("reason does not cite the mismatch: %s", result.Decision.Reason)
	}
	if len(result.Validation.Discrepancies) != 2 {
		t.Fatalf("expected 2 discrepancies (bill vs card, discharge vs card), got %v", result.Validation.Discrepancies)
	}
	// Two failing checks out of eight.
	want := 1.0 - 2.0/8.0
	if diff := result.Decision.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected confidence %.3f, got %.3f", want, result.Decision.Confidence)
	}
	if result.Decision.RecommendedAmount != nil {
		t.Fatal("rejected claims must not carry a recommended amount")
	}
}

func TestProcessRejectsEmptySubmission(t *testing.T) {
	uc, notifier, _ := newTestUseCase("John Doe")

	_, err := uc.Process(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for empty submission")
	}
	if !domain.IsKind(err, domain.ErrEmptySubmission) {
		t.Fatalf("expected empty submission kind, got %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatal("no event should be published for a failed submission")
	}
}

func TestProcessTreatsEmptyTextAsDegradedUnknown(t *testing.T) {
	uc, _, _ := newTestUseCase("John Doe")

	result, err := uc.Process(context.Background(), []domain.RawDocument{
		{Filename: "scan.pdf", Content: []byte("   ")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := result.Submission.Documents[0]
	if doc.Classification.Type != domain.TypeUnknown || doc.Classification.Confidence != 0 {
		t.Fatalf("expected unknown at zero confidence, got %+v", doc.Classification)
	}
	if !doc.Text.Degraded {
		t.Fatal("expected degraded text")
	}
	if result.Decision.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", result.Decision.Status)
	}
}

func TestProcessExtractionFailureDoesNotFailSubmission(t *testing.T) {
	notifier := &notifierFake{}
	uc := NewProcessClaimUseCase(
		&extractorFake{err: errors.New("unreadable")},
		&classifierFake{},
		nil,
		NewClaimValidator(ValidatorConfig{}),
		NewDecisionEngine(DefaultConfidencePolicy()),
		notifier,
		&metricsFake{},
	)

	result, err := uc.Process(context.Background(), []domain.RawDocument{
		{Filename: "broken.pdf", Content: []byte("BILL")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := result.Submission.Documents[0]
	if !doc.Text.Degraded || doc.Classification.Type != domain.TypeUnknown {
		t.Fatalf("expected degraded unknown document, got %+v", doc)
	}
}

func TestProcessCancelledContextYieldsNoDecision(t *testing.T) {
	uc, notifier, recorder := newTestUseCase("John Doe")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := uc.Process(ctx, fullSubmission())
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if result != nil {
		t.Fatal("no partial result after cancellation")
	}
	if len(notifier.events) != 0 {
		t.Fatal("no event should be published after cancellation")
	}
	if len(recorder.claims) != 1 || recorder.claims[0] != "cancelled" {
		t.Fatalf("unexpected claim observations: %v", recorder.claims)
	}
}

func TestProcessPublishFailureIsBestEffort(t *testing.T) {
	notifier := &notifierFake{err: errors.New("nats down")}
	uc := NewProcessClaimUseCase(
		&extractorFake{},
		&classifierFake{},
		[]ports.FieldAgent{
			&agentFake{docType: domain.TypeHospitalBill, fields: billFields("John Doe")},
			&agentFake{docType: domain.TypeDischargeSummary, fields: dischargeFields("John Doe")},
			&agentFake{docType: domain.TypeInsuranceCard, fields: cardFields("John Doe")},
		},
		NewClaimValidator(ValidatorConfig{}),
		NewDecisionEngine(DefaultConfidencePolicy()),
		notifier,
		&metricsFake{},
	)

	result, err := uc.Process(context.Background(), fullSubmission())
	if err != nil {
		t.Fatalf("publish failures must not fail the claim: %v", err)
	}
	if result.Decision.Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %s", result.Decision.Status)
	}
}
