package agents

import (
	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
)

// NewDischargeAgent extracts structured fields from discharge summaries.
func NewDischargeAgent(client ports.CompletionClient, metrics ports.PipelineMetrics) *Agent {
	return newAgent(agentSpec{
		docType: domain.TypeDischargeSummary,
		label:   "hospital discharge summary",
		fields: []fieldDef{
			{name: "patient_name", kind: domain.FieldText, required: true, hint: "patient's full name"},
			{name: "diagnosis", kind: domain.FieldText, required: true, hint: "primary diagnosis"},
			{name: "admission_date", kind: domain.FieldDate, required: true, hint: "admission date, YYYY-MM-DD"},
			{name: "discharge_date", kind: domain.FieldDate, required: true, hint: "discharge date, YYYY-MM-DD"},
			{name: "doctor_name", kind: domain.FieldText, hint: "treating doctor's name"},
			{name: "hospital_name", kind: domain.FieldText, hint: "hospital name"},
			{name: "treatment_summary", kind: domain.FieldText, hint: "one-line summary of the treatment given"},
		},
		ruleExtract: extractDischargeFields,
	}, client, metrics)
}

func extractDischargeFields(text string) map[string]domain.FieldValue {
	values := map[string]domain.FieldValue{}

	v, ok := findPersonName(text, "patient name", "patient", "name")
	setIfFound(values, "patient_name", v, ok)

	v, ok = findLine(text, "final diagnosis", "diagnosis")
	setIfFound(values, "diagnosis", v, ok)

	v, ok = findDateNear(text, "admission date", "date of admission", "admitted on", "admission")
	setIfFound(values, "admission_date", v, ok)

	v, ok = findDateNear(text, "discharge date", "date of discharge", "discharged on", "discharge")
	setIfFound(values, "discharge_date", v, ok)

	v, ok = findPersonName(text, "consultant", "attending doctor", "doctor", `dr\.?`)
	setIfFound(values, "doctor_name", v, ok)

	v, ok = findFirst(text, hospitalNamePatterns)
	setIfFound(values, "hospital_name", v, ok)

	v, ok = findLine(text, "treatment given", "treatment summary", "course in hospital")
	setIfFound(values, "treatment_summary", v, ok)

	return values
}
