package classify

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
)

const defaultMinTextChars = 20

// FallbackClassifier composes a primary (LLM-backed) classifier with a
// deterministic fallback behind the same port. Only cancellation escapes as
// an error; every other failure degrades to the fallback result.
type FallbackClassifier struct {
	primary      ports.DocumentClassifier
	fallback     ports.DocumentClassifier
	metrics      ports.PipelineMetrics
	minTextChars int
	unknownBelow float64
}

type FallbackOptions struct {
	// MinTextChars is the length below which text is classified unknown at
	// zero confidence without calling the primary.
	MinTextChars int
	// UnknownBelow coerces a known label to unknown when its confidence is
	// under this threshold.
	UnknownBelow float64
}

func WithFallback(primary, fallback ports.DocumentClassifier, metrics ports.PipelineMetrics, options FallbackOptions) *FallbackClassifier {
	minChars := options.MinTextChars
	if minChars <= 0 {
		minChars = defaultMinTextChars
	}
	return &FallbackClassifier{
		primary:      primary,
		fallback:     fallback,
		metrics:      metrics,
		minTextChars: minChars,
		unknownBelow: options.UnknownBelow,
	}
}

func (c *FallbackClassifier) Classify(ctx context.Context, text domain.ExtractedText) (domain.Classification, error) {
	if utf8.RuneCountInString(text.Text) < c.minTextChars {
		return domain.Classification{Type: domain.TypeUnknown, Confidence: 0}, nil
	}

	result, err := c.primary.Classify(ctx, text)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return domain.Classification{}, err
		}
		slog.Warn("classifier_fallback", "error", err)
		c.metrics.CountFallback("classify")
		result, err = c.fallback.Classify(ctx, text)
		if err != nil {
			return domain.Classification{}, err
		}
	}

	if result.Type.Known() && result.Confidence < c.unknownBelow {
		result = domain.Classification{Type: domain.TypeUnknown, Confidence: result.Confidence}
	}
	return result, nil
}
