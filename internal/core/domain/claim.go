package domain

import "github.com/shopspring/decimal"

type DocumentType string

const (
	TypeHospitalBill     DocumentType = "hospital_bill"
	TypeDischargeSummary DocumentType = "discharge_summary"
	TypeInsuranceCard    DocumentType = "insurance_card"
	TypeUnknown          DocumentType = "unknown"
)

// RequiredDocumentTypes lists the types every submission is expected to carry.
func RequiredDocumentTypes() []DocumentType {
	return []DocumentType{TypeHospitalBill, TypeDischargeSummary, TypeInsuranceCard}
}

func (t DocumentType) Known() bool {
	switch t {
	case TypeHospitalBill, TypeDischargeSummary, TypeInsuranceCard:
		return true
	default:
		return false
	}
}

// RawDocument is the caller-owned input. The pipeline never retains it
// beyond the current call.
type RawDocument struct {
	Filename string
	MimeType string
	Content  []byte
}

// ExtractedText is plain text derived from a RawDocument. Degraded marks
// fallback extraction or otherwise low-quality text.
type ExtractedText struct {
	Text     string `json:"-"`
	Degraded bool   `json:"degraded"`
}

func (t ExtractedText) Empty() bool {
	return t.Text == ""
}

type Classification struct {
	Type       DocumentType `json:"document_type"`
	Confidence float64      `json:"confidence"`
}

// ProcessedDocument is one document after classification and field
// extraction, merged into the submission in upload order.
type ProcessedDocument struct {
	ID             string          `json:"id"`
	Filename       string          `json:"filename"`
	Text           ExtractedText   `json:"text_quality"`
	Classification Classification  `json:"classification"`
	Fields         ExtractedFields `json:"fields"`
}

// ClaimSubmission is one adjudication unit: the ordered set of documents
// uploaded together. It is constructed at pipeline entry and discarded once
// the response is produced.
type ClaimSubmission struct {
	ID        string              `json:"id"`
	Documents []ProcessedDocument `json:"documents"`
}

func (s ClaimSubmission) DocumentsOfType(t DocumentType) []ProcessedDocument {
	var out []ProcessedDocument
	for _, doc := range s.Documents {
		if doc.Classification.Type == t {
			out = append(out, doc)
		}
	}
	return out
}

// ValidationResult carries ordered human-readable findings. Empty sequences
// denote a clean pass. ChecksRun counts consistency checks attempted so the
// decision stage can weigh discrepancies against the total.
type ValidationResult struct {
	MissingDocuments []string `json:"missing_documents"`
	Discrepancies    []string `json:"discrepancies"`
	Warnings         []string `json:"warnings"`
	ChecksRun        int      `json:"checks_run"`
}

func (r ValidationResult) Clean() bool {
	return len(r.MissingDocuments) == 0 && len(r.Discrepancies) == 0 && len(r.Warnings) == 0
}

type DecisionStatus string

const (
	StatusApproved DecisionStatus = "approved"
	StatusRejected DecisionStatus = "rejected"
	StatusPending  DecisionStatus = "pending"
)

// ClaimDecision is the terminal artifact of the pipeline. RecommendedAmount
// is set only when Status is approved.
type ClaimDecision struct {
	Status            DecisionStatus   `json:"status"`
	Reason            string           `json:"reason"`
	Confidence        float64          `json:"confidence"`
	RecommendedAmount *decimal.Decimal `json:"recommended_amount,omitempty"`
}

type ProcessingSummary struct {
	TotalDocuments     int `json:"total_documents"`
	ClassifiedKnown    int `json:"classified_documents"`
	ExtractedDocuments int `json:"extracted_documents"`
}

// ClaimResult is the full structured record handed to the response surface.
type ClaimResult struct {
	Submission ClaimSubmission   `json:"submission"`
	Validation ValidationResult  `json:"validation"`
	Decision   ClaimDecision     `json:"claim_decision"`
	Summary    ProcessingSummary `json:"processing_summary"`
}

// DecisionEvent is published after adjudication for downstream consumers.
type DecisionEvent struct {
	SubmissionID      string           `json:"submission_id"`
	Status            DecisionStatus   `json:"status"`
	Confidence        float64          `json:"confidence"`
	RecommendedAmount *decimal.Decimal `json:"recommended_amount,omitempty"`
	OccurredAt        string           `json:"occurred_at"`
}
