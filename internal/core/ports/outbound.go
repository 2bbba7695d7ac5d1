package ports

import (
	"context"
	"time"

	"github.com/clearclaim/claims-engine/internal/core/domain"
)

// TextExtractor converts raw document bytes into plain text. Extraction
// quality problems are reported through ExtractedText.Degraded, not errors.
type TextExtractor interface {
	Extract(ctx context.Context, raw domain.RawDocument) (domain.ExtractedText, error)
}

// CompletionClient is the single call contract against the LLM backend.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// DocumentClassifier assigns a document type and confidence to extracted
// text. Implementations backed by an external model may fail; the pipeline
// composes them with a deterministic fallback satisfying the same contract.
type DocumentClassifier interface {
	Classify(ctx context.Context, text domain.ExtractedText) (domain.Classification, error)
}

// FieldAgent parses type-specific structured fields from text. One agent
// exists per known document type.
type FieldAgent interface {
	DocumentType() domain.DocumentType
	Extract(ctx context.Context, text domain.ExtractedText) (domain.ExtractedFields, error)
}

// DecisionNotifier publishes the adjudication outcome for downstream
// consumers. Publishing is best-effort and never blocks the response.
type DecisionNotifier interface {
	PublishDecision(ctx context.Context, event domain.DecisionEvent) error
}

// PipelineMetrics records pipeline-level counters.
type PipelineMetrics interface {
	ObserveClaim(status string, duration time.Duration)
	CountDocument(documentType string)
	CountFallback(stage string)
}
