package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/clearclaim/claims-engine/internal/core/domain"
)

// ConfidencePolicy is the named, tunable weighting used when aggregating
// per-document classification and extraction confidences into a decision
// confidence.
type ConfidencePolicy struct {
	ClassificationWeight float64
	ExtractionWeight     float64
}

// DefaultConfidencePolicy weighs extraction above classification because
// adjudication consumes field values, not type labels.
func DefaultConfidencePolicy() ConfidencePolicy {
	return ConfidencePolicy{ClassificationWeight: 0.4, ExtractionWeight: 0.6}
}

func (p ConfidencePolicy) normalized() ConfidencePolicy {
	total := p.ClassificationWeight + p.ExtractionWeight
	if total <= 0 {
		return DefaultConfidencePolicy()
	}
	return ConfidencePolicy{
		ClassificationWeight: p.ClassificationWeight / total,
		ExtractionWeight:     p.ExtractionWeight / total,
	}
}

// DecisionEngine synthesizes the final adjudication from the submission and
// validation findings. The policy is ordered; the first matching rule wins.
type DecisionEngine struct {
	policy ConfidencePolicy
}

func NewDecisionEngine(policy ConfidencePolicy) *DecisionEngine {
	return &DecisionEngine{policy: policy.normalized()}
}

func (e *DecisionEngine) Decide(submission domain.ClaimSubmission, validation domain.ValidationResult) domain.ClaimDecision {
	if len(validation.MissingDocuments) > 0 {
		return e.pending(submission, validation)
	}
	if len(validation.Discrepancies) > 0 {
		return e.rejected(validation)
	}
	return e.approved(submission, validation)
}

func (e *DecisionEngine) pending(submission domain.ClaimSubmission, validation domain.ValidationResult) domain.ClaimDecision {
	return domain.ClaimDecision{
		Status:     domain.StatusPending,
		Reason:     "awaiting required documents: " + strings.Join(validation.MissingDocuments, "; "),
		Confidence: clamp01(e.meanConfidence(submission)),
	}
}

func (e *DecisionEngine) rejected(validation domain.ValidationResult) domain.ClaimDecision {
	total := validation.ChecksRun
	if total < len(validation.Discrepancies) {
		total = len(validation.Discrepancies)
	}
	confidence := 1.0
	if total > 0 {
		confidence = 1.0 - float64(len(validation.Discrepancies))/float64(total)
	}
	return domain.ClaimDecision{
		Status:     domain.StatusRejected,
		Reason:     "cross-document discrepancies found: " + strings.Join(validation.Discrepancies, "; "),
		Confidence: clamp01(confidence),
	}
}

func (e *DecisionEngine) approved(submission domain.ClaimSubmission, validation domain.ValidationResult) domain.ClaimDecision {
	amount := e.recommendedAmount(submission)

	reason := "all documents verified and cross-document checks passed"
	if n := len(validation.Warnings); n > 0 {
		reason = fmt.Sprintf("%s; %d warning(s): %s", reason, n, strings.Join(validation.Warnings, "; "))
	}

	return domain.ClaimDecision{
		Status:            domain.StatusApproved,
		Reason:            reason,
		Confidence:        clamp01(e.meanConfidence(submission)),
		RecommendedAmount: amount,
	}
}

// recommendedAmount sums total_amount across bill documents. Approval
// implies at least one bill with a present total: a bill without one is
// recorded upstream as a discrepancy and never reaches this rule.
func (e *DecisionEngine) recommendedAmount(submission domain.ClaimSubmission) *decimal.Decimal {
	total := decimal.Zero
	found := false
	for _, bill := range submission.DocumentsOfType(domain.TypeHospitalBill) {
		amount := bill.Fields.Get("total_amount")
		if amount.Present {
			total = total.Add(amount.Amount)
			found = true
		}
	}
	if !found {
		return nil
	}
	return &total
}

func (e *DecisionEngine) meanConfidence(submission domain.ClaimSubmission) float64 {
	if len(submission.Documents) == 0 {
		return 0
	}
	var sum float64
	for _, doc := range submission.Documents {
		sum += e.policy.ClassificationWeight*doc.Classification.Confidence +
			e.policy.ExtractionWeight*doc.Fields.Confidence
	}
	return sum / float64(len(submission.Documents))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
