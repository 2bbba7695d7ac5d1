package classify

import (
	"context"
	"strings"

	"github.com/clearclaim/claims-engine/internal/core/domain"
)

// Keyword sets keyed on section headers and phrasing typical for each
// document type. Scores are the fraction of keywords seen in the text.
var heuristicKeywords = map[domain.DocumentType][]string{
	domain.TypeHospitalBill: {
		"bill", "invoice", "charges", "total amount", "grand total", "net amount", "tariff", "gst",
	},
	domain.TypeDischargeSummary: {
		"discharge summary", "diagnosis", "admission", "discharge date", "treatment", "doctor", "patient",
	},
	domain.TypeInsuranceCard: {
		"insurance", "policy number", "sum insured", "coverage", "premium", "card holder",
	},
}

// HeuristicClassifier is the deterministic fallback: keyword scoring with a
// capped confidence. It never fails, so the pipeline always obtains some
// classification.
type HeuristicClassifier struct {
	maxConfidence float64
}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{maxConfidence: 0.5}
}

func (c *HeuristicClassifier) Classify(_ context.Context, text domain.ExtractedText) (domain.Classification, error) {
	lower := strings.ToLower(text.Text)

	best := domain.TypeUnknown
	bestScore := 0.0
	// Fixed iteration order keeps ties deterministic.
	for _, docType := range domain.RequiredDocumentTypes() {
		keywords := heuristicKeywords[docType]
		hits := 0
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				hits++
			}
		}
		score := float64(hits) / float64(len(keywords))
		if score > bestScore {
			best = docType
			bestScore = score
		}
	}

	if bestScore == 0 {
		return domain.Classification{Type: domain.TypeUnknown, Confidence: 0}, nil
	}

	confidence := c.maxConfidence * (0.5 + 0.5*bestScore)
	if confidence > c.maxConfidence {
		confidence = c.maxConfidence
	}
	return domain.Classification{Type: best, Confidence: confidence}, nil
}
