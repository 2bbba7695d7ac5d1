package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clearclaim/claims-engine/internal/config"
	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
	"github.com/clearclaim/claims-engine/internal/core/usecase"
	"github.com/clearclaim/claims-engine/internal/infrastructure/agents"
	"github.com/clearclaim/claims-engine/internal/infrastructure/classify"
	"github.com/clearclaim/claims-engine/internal/infrastructure/extractor/pdftext"
	"github.com/clearclaim/claims-engine/internal/infrastructure/llm/ollama"
	natspub "github.com/clearclaim/claims-engine/internal/infrastructure/queue/nats"
	"github.com/clearclaim/claims-engine/internal/infrastructure/resilience"
	"github.com/clearclaim/claims-engine/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Processor ports.ClaimProcessor
	Metrics   *metrics.PipelineMetrics

	closeFn func()
}

func New(_ context.Context, cfg config.Config) (*App, error) {
	pipelineMetrics := metrics.NewPipelineMetrics("claims-engine")

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		RetryInitialBackoff: time.Duration(cfg.RetryInitialDelayMillis) * time.Millisecond,
		RetryMaxBackoff:     time.Duration(cfg.RetryMaxDelayMillis) * time.Millisecond,

		BreakerEnabled:          cfg.BreakerEnabled,
		BreakerMinRequests:      uint32(cfg.BreakerMinRequests),
		BreakerFailureRatio:     cfg.BreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(cfg.BreakerOpenSeconds) * time.Second,
		BreakerHalfOpenMaxCalls: uint32(cfg.BreakerHalfOpenRequests),
	})

	llmClient := ollama.New(cfg.OllamaURL, cfg.OllamaModel, ollama.Options{
		RequestTimeout:    time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.LLMRequestsPerSecond,
		Burst:             cfg.LLMBurst,
		Executor:          executor,
	})

	classifier := classify.WithFallback(
		classify.NewLLMClassifier(llmClient),
		classify.NewHeuristicClassifier(),
		pipelineMetrics,
		classify.FallbackOptions{
			MinTextChars: cfg.ClassifyMinTextChars,
			UnknownBelow: cfg.ClassifyUnknownBelow,
		},
	)

	validator := usecase.NewClaimValidator(usecase.ValidatorConfig{
		WarnConfidenceBelow: cfg.WarnConfidenceBelow,
		Match:               usecase.MatchPolicy{MinSimilarity: cfg.MatchMinSimilarity},
	})
	engine := usecase.NewDecisionEngine(usecase.ConfidencePolicy{
		ClassificationWeight: cfg.ClassificationWeight,
		ExtractionWeight:     cfg.ExtractionWeight,
	})

	var notifier ports.DecisionNotifier = noopNotifier{}
	closeFn := func() {}
	if cfg.NATSURL != "" {
		publisher, err := natspub.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natspub.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init decision publisher: %w", err)
		}
		notifier = publisher
		closeFn = publisher.Close
	} else {
		slog.Info("nats disabled, decision events will not be published")
	}

	processor := usecase.NewProcessClaimUseCase(
		pdftext.New(),
		classifier,
		agents.Registry(llmClient, pipelineMetrics),
		validator,
		engine,
		notifier,
		pipelineMetrics,
	)

	return &App{
		Config:    cfg,
		Processor: processor,
		Metrics:   pipelineMetrics,
		closeFn:   closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

type noopNotifier struct{}

func (noopNotifier) PublishDecision(context.Context, domain.DecisionEvent) error {
	return nil
}
