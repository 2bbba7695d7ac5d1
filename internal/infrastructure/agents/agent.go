// Package agents holds the per-document-type field extraction agents. Each
// agent asks the completion backend for schema-constrained JSON and falls
// back to deterministic rule-based parsing when the call or the reply fails.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
	"github.com/clearclaim/claims-engine/internal/infrastructure/llm/schema"
)

const (
	llmPathConfidence  = 0.95
	rulePathConfidence = 0.6
	maxPromptChars     = 6000
)

type fieldDef struct {
	name     string
	kind     domain.FieldKind
	required bool
	hint     string
}

type agentSpec struct {
	docType     domain.DocumentType
	label       string
	fields      []fieldDef
	ruleExtract func(text string) map[string]domain.FieldValue
}

// Agent is one concrete field extractor. It is a pure transformation over
// its input text: no side effects beyond the returned structure.
type Agent struct {
	spec    agentSpec
	client  ports.CompletionClient
	metrics ports.PipelineMetrics
}

func newAgent(spec agentSpec, client ports.CompletionClient, metrics ports.PipelineMetrics) *Agent {
	return &Agent{spec: spec, client: client, metrics: metrics}
}

// Registry builds one agent per known document type.
func Registry(client ports.CompletionClient, metrics ports.PipelineMetrics) []ports.FieldAgent {
	return []ports.FieldAgent{
		NewBillAgent(client, metrics),
		NewDischargeAgent(client, metrics),
		NewInsuranceAgent(client, metrics),
	}
}

func (a *Agent) DocumentType() domain.DocumentType {
	return a.spec.docType
}

func (a *Agent) Extract(ctx context.Context, text domain.ExtractedText) (domain.ExtractedFields, error) {
	values, err := a.llmExtract(ctx, text.Text)
	usedFallback := false
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return domain.EmptyFields(), err
		}
		slog.Warn("extraction_fallback", "document_type", a.spec.docType, "error", err)
		a.metrics.CountFallback("extract_" + string(a.spec.docType))
		values = a.spec.ruleExtract(text.Text)
		usedFallback = true
	}
	return a.finalize(values, usedFallback), nil
}

func (a *Agent) llmExtract(ctx context.Context, text string) (map[string]domain.FieldValue, error) {
	raw, err := a.client.CompleteJSON(ctx, a.buildPrompt(text))
	if err != nil {
		return nil, err
	}

	payload := []byte(schema.ExtractObject(raw))
	if err := schema.Validate(a.jsonSchema(), payload); err != nil {
		return nil, domain.WrapError(domain.ErrSchemaParse, fmt.Sprintf("extract %s fields", a.spec.docType), err)
	}

	var reply map[string]any
	if err := json.Unmarshal(payload, &reply); err != nil {
		return nil, domain.WrapError(domain.ErrSchemaParse, fmt.Sprintf("extract %s fields", a.spec.docType), err)
	}
	return a.typedValues(reply), nil
}

func (a *Agent) buildPrompt(text string) string {
	snippet := text
	if len(snippet) > maxPromptChars {
		snippet = snippet[:maxPromptChars]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Extract the following fields from this %s and return a strict JSON object.\n", a.spec.label)
	b.WriteString("Use null for any field not found. No markdown, no extra keys.\n\nFields:\n")
	for _, f := range a.spec.fields {
		fmt.Fprintf(&b, "- %s: %s\n", f.name, f.hint)
	}
	b.WriteString("\nDocument text:\n")
	b.WriteString(snippet)
	return b.String()
}

// jsonSchema mirrors the prompt contract: every field nullable, amounts
// accepted as number or string.
func (a *Agent) jsonSchema() map[string]any {
	props := map[string]any{}
	for _, f := range a.spec.fields {
		switch f.kind {
		case domain.FieldAmount:
			props[f.name] = map[string]any{"type": []any{"number", "string", "null"}}
		default:
			props[f.name] = map[string]any{"type": []any{"string", "null"}}
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func (a *Agent) typedValues(reply map[string]any) map[string]domain.FieldValue {
	values := map[string]domain.FieldValue{}
	for _, f := range a.spec.fields {
		raw, ok := reply[f.name]
		if !ok || raw == nil {
			continue
		}
		switch f.kind {
		case domain.FieldText:
			if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
				values[f.name] = domain.TextField(strings.TrimSpace(s))
			}
		case domain.FieldDate:
			if s, ok := raw.(string); ok {
				if iso, valid := NormalizeDate(s); valid {
					values[f.name] = domain.DateField(iso)
				}
			}
		case domain.FieldAmount:
			switch v := raw.(type) {
			case float64:
				values[f.name] = domain.AmountField(decimal.NewFromFloat(v))
			case string:
				if amount, valid := ParseAmount(v); valid {
					values[f.name] = domain.AmountField(amount)
				}
			}
		}
	}
	return values
}

// finalize records every schema field (absent when unrecovered) and scores
// confidence proportionally to the fraction of required fields recovered.
func (a *Agent) finalize(values map[string]domain.FieldValue, usedFallback bool) domain.ExtractedFields {
	out := domain.ExtractedFields{Values: make(map[string]domain.FieldValue, len(a.spec.fields))}

	requiredTotal := 0
	requiredFound := 0
	for _, f := range a.spec.fields {
		value, ok := values[f.name]
		if !ok {
			value = domain.AbsentField(f.kind)
		}
		out.Values[f.name] = value
		if f.required {
			requiredTotal++
			if value.Present {
				requiredFound++
			}
		}
	}

	base := llmPathConfidence
	if usedFallback {
		base = rulePathConfidence
	}
	if requiredTotal > 0 {
		out.Confidence = base * float64(requiredFound) / float64(requiredTotal)
	}
	return out
}
