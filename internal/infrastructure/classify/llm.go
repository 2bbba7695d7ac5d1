package classify

import (
	"context"
	"encoding/json"

	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
	"github.com/clearclaim/claims-engine/internal/infrastructure/llm/schema"
)

// Confidence assumed when a specific type comes back without a
// self-reported certainty.
const specificAnswerConfidence = 0.6

// LLMClassifier delegates classification to the completion backend and
// validates the strict-JSON reply before trusting it.
type LLMClassifier struct {
	client ports.CompletionClient
}

func NewLLMClassifier(client ports.CompletionClient) *LLMClassifier {
	return &LLMClassifier{client: client}
}

func (c *LLMClassifier) Classify(ctx context.Context, text domain.ExtractedText) (domain.Classification, error) {
	raw, err := c.client.CompleteJSON(ctx, buildClassificationPrompt(text.Text))
	if err != nil {
		return domain.Classification{}, err
	}

	payload := []byte(schema.ExtractObject(raw))
	if err := schema.Validate(classificationSchema(), payload); err != nil {
		return domain.Classification{}, domain.WrapError(domain.ErrSchemaParse, "classify document", err)
	}

	var reply struct {
		DocumentType string  `json:"document_type"`
		Confidence   float64 `json:"confidence"`
	}
	if err := json.Unmarshal(payload, &reply); err != nil {
		return domain.Classification{}, domain.WrapError(domain.ErrSchemaParse, "classify document", err)
	}

	result := domain.Classification{
		Type:       domain.DocumentType(reply.DocumentType),
		Confidence: reply.Confidence,
	}
	if !result.Type.Known() {
		result.Type = domain.TypeUnknown
	}
	if result.Confidence <= 0 && result.Type.Known() {
		result.Confidence = specificAnswerConfidence
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	return result, nil
}
