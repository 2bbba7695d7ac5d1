package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
)

// ProcessClaimUseCase orchestrates one synchronous adjudication: text
// extraction, classification and field extraction per document (in
// parallel), then validation and decision over the merged submission.
type ProcessClaimUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	agents     map[domain.DocumentType]ports.FieldAgent
	validator  *ClaimValidator
	engine     *DecisionEngine
	notifier   ports.DecisionNotifier
	metrics    ports.PipelineMetrics
}

func NewProcessClaimUseCase(
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	agents []ports.FieldAgent,
	validator *ClaimValidator,
	engine *DecisionEngine,
	notifier ports.DecisionNotifier,
	metrics ports.PipelineMetrics,
) *ProcessClaimUseCase {
	byType := make(map[domain.DocumentType]ports.FieldAgent, len(agents))
	for _, agent := range agents {
		byType[agent.DocumentType()] = agent
	}
	return &ProcessClaimUseCase{
		extractor:  extractor,
		classifier: classifier,
		agents:     byType,
		validator:  validator,
		engine:     engine,
		notifier:   notifier,
		metrics:    metrics,
	}
}

func (uc *ProcessClaimUseCase) Process(ctx context.Context, docs []domain.RawDocument) (*domain.ClaimResult, error) {
	if len(docs) == 0 {
		return nil, domain.WrapError(domain.ErrEmptySubmission, "process claim", errors.New("submission contains no documents"))
	}

	start := time.Now()
	submissionID := uuid.NewString()

	// Per-document tasks are independent: each writes its own slot, so the
	// merged order is upload order, not completion order.
	results := make([]domain.ProcessedDocument, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = uc.processDocument(ctx, docs[idx])
		}(i)
	}
	wg.Wait()

	// No partial decision after cancellation.
	if err := ctx.Err(); err != nil {
		uc.metrics.ObserveClaim("cancelled", time.Since(start))
		return nil, err
	}

	submission := domain.ClaimSubmission{ID: submissionID, Documents: results}
	validation := uc.validator.Validate(submission)
	decision := uc.engine.Decide(submission, validation)

	uc.metrics.ObserveClaim(string(decision.Status), time.Since(start))
	uc.publish(ctx, submission, decision)

	return &domain.ClaimResult{
		Submission: submission,
		Validation: validation,
		Decision:   decision,
		Summary:    summarize(submission),
	}, nil
}

func (uc *ProcessClaimUseCase) processDocument(ctx context.Context, raw domain.RawDocument) domain.ProcessedDocument {
	doc := domain.ProcessedDocument{
		ID:             uuid.NewString(),
		Filename:       raw.Filename,
		Classification: domain.Classification{Type: domain.TypeUnknown},
		Fields:         domain.EmptyFields(),
	}

	text, err := uc.extractor.Extract(ctx, raw)
	if err != nil {
		// Extraction problems are an input condition. The document stays
		// unknown at zero confidence instead of failing the submission.
		slog.Warn("text_extraction_failed", "filename", raw.Filename, "error", err)
		doc.Text = domain.ExtractedText{Degraded: true}
		return doc
	}
	doc.Text = text
	if strings.TrimSpace(text.Text) == "" {
		doc.Text.Degraded = true
		return doc
	}

	classification, err := uc.classifier.Classify(ctx, text)
	if err != nil {
		// Only cancellation escapes the classifier composite.
		slog.Warn("classification_failed", "filename", raw.Filename, "error", err)
		return doc
	}
	doc.Classification = classification
	uc.metrics.CountDocument(string(classification.Type))

	agent, ok := uc.agents[classification.Type]
	if !ok {
		// Unknown documents skip extraction by contract.
		return doc
	}

	fields, err := agent.Extract(ctx, text)
	if err != nil {
		slog.Warn("field_extraction_failed",
			"filename", raw.Filename,
			"document_type", classification.Type,
			"error", err,
		)
		return doc
	}
	doc.Fields = fields
	return doc
}

func (uc *ProcessClaimUseCase) publish(ctx context.Context, submission domain.ClaimSubmission, decision domain.ClaimDecision) {
	event := domain.DecisionEvent{
		SubmissionID:      submission.ID,
		Status:            decision.Status,
		Confidence:        decision.Confidence,
		RecommendedAmount: decision.RecommendedAmount,
		OccurredAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := uc.notifier.PublishDecision(ctx, event); err != nil {
		slog.Warn("decision_publish_failed", "submission_id", submission.ID, "error", err)
	}
}

func summarize(submission domain.ClaimSubmission) domain.ProcessingSummary {
	summary := domain.ProcessingSummary{TotalDocuments: len(submission.Documents)}
	for _, doc := range submission.Documents {
		if doc.Classification.Type.Known() {
			summary.ClassifiedKnown++
		}
		if len(doc.Fields.Values) > 0 {
			summary.ExtractedDocuments++
		}
	}
	return summary
}
