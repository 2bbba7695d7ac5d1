package agents

import (
	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
)

// NewInsuranceAgent extracts structured fields from insurance cards and
// policy documents.
func NewInsuranceAgent(client ports.CompletionClient, metrics ports.PipelineMetrics) *Agent {
	return newAgent(agentSpec{
		docType: domain.TypeInsuranceCard,
		label:   "insurance card",
		fields: []fieldDef{
			{name: "insurance_company", kind: domain.FieldText, required: true, hint: "insurance company name"},
			{name: "policy_number", kind: domain.FieldText, required: true, hint: "policy number"},
			{name: "card_holder_name", kind: domain.FieldText, hint: "card holder's full name"},
			{name: "sum_insured", kind: domain.FieldAmount, hint: "sum insured, numeric, no currency symbols"},
			{name: "validity_date", kind: domain.FieldDate, hint: "validity date, YYYY-MM-DD"},
		},
		ruleExtract: extractInsuranceFields,
	}, client, metrics)
}

func extractInsuranceFields(text string) map[string]domain.FieldValue {
	values := map[string]domain.FieldValue{}

	v, ok := findFirst(text, insurerPatterns)
	setIfFound(values, "insurance_company", v, ok)

	if m := policyNumberPattern.FindStringSubmatch(text); m != nil {
		values["policy_number"] = domain.TextField(m[1])
	}

	v, ok = findPersonName(text, "card holder", "cardholder", "member name", "insured name", "name")
	setIfFound(values, "card_holder_name", v, ok)

	v, ok = findAmountNear(text, "sum insured", "coverage amount", "cover")
	setIfFound(values, "sum_insured", v, ok)

	v, ok = findDateNear(text, "valid till", "valid until", "validity", "expiry date", "expiry")
	setIfFound(values, "validity_date", v, ok)

	return values
}
