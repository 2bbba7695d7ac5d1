package classify

const maxPromptSnippet = 4000

func buildClassificationPrompt(text string) string {
	snippet := text
	if len(snippet) > maxPromptSnippet {
		snippet = snippet[:maxPromptSnippet]
	}

	return `You are an insurance claim document classifier.
Classify the document into exactly one of:
- hospital_bill: medical bills, invoices, billing statements
- discharge_summary: hospital discharge summaries, medical reports
- insurance_card: insurance cards, policy documents
- unknown: anything else

Return a strict JSON object with keys:
document_type (one of the four values above), confidence (number from 0 to 1).
No markdown, no extra keys.

Document:
` + snippet
}

func classificationSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"document_type": map[string]any{
				"type": "string",
				"enum": []any{"hospital_bill", "discharge_summary", "insurance_card", "unknown"},
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0.0,
				"maximum": 1.0,
			},
		},
		"required": []any{"document_type"},
	}
}
