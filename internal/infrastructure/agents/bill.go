package agents

import (
	"github.com/clearclaim/claims-engine/internal/core/domain"
	"github.com/clearclaim/claims-engine/internal/core/ports"
)

// NewBillAgent extracts structured fields from hospital bills.
func NewBillAgent(client ports.CompletionClient, metrics ports.PipelineMetrics) *Agent {
	return newAgent(agentSpec{
		docType: domain.TypeHospitalBill,
		label:   "hospital bill",
		fields: []fieldDef{
			{name: "hospital_name", kind: domain.FieldText, required: true, hint: "name of the hospital issuing the bill"},
			{name: "total_amount", kind: domain.FieldAmount, required: true, hint: "final billed amount, numeric, no currency symbols"},
			{name: "patient_name", kind: domain.FieldText, required: true, hint: "patient's full name"},
			{name: "date_of_service", kind: domain.FieldDate, hint: "date of service, YYYY-MM-DD"},
			{name: "admission_date", kind: domain.FieldDate, hint: "admission date, YYYY-MM-DD"},
			{name: "discharge_date", kind: domain.FieldDate, hint: "discharge date, YYYY-MM-DD"},
			{name: "insurance_company", kind: domain.FieldText, hint: "insurance company named on the bill"},
			{name: "policy_number", kind: domain.FieldText, hint: "insurance policy number"},
		},
		ruleExtract: extractBillFields,
	}, client, metrics)
}

func extractBillFields(text string) map[string]domain.FieldValue {
	values := map[string]domain.FieldValue{}

	v, ok := findFirst(text, hospitalNamePatterns)
	setIfFound(values, "hospital_name", v, ok)

	v, ok = findTotalAmount(text, "total", "grand total", "net amount", "bill amount", "net payable", "amount payable")
	setIfFound(values, "total_amount", v, ok)

	v, ok = findPersonName(text, "patient name", "patient", "name")
	setIfFound(values, "patient_name", v, ok)

	v, ok = findDateNear(text, "date of service", "service date", "treatment date", "bill date")
	setIfFound(values, "date_of_service", v, ok)

	v, ok = findDateNear(text, "admission date", "date of admission", "admitted on", "admission")
	setIfFound(values, "admission_date", v, ok)

	v, ok = findDateNear(text, "discharge date", "date of discharge", "discharged on", "discharge")
	setIfFound(values, "discharge_date", v, ok)

	v, ok = findFirst(text, insurerPatterns)
	setIfFound(values, "insurance_company", v, ok)

	if m := policyNumberPattern.FindStringSubmatch(text); m != nil {
		values["policy_number"] = domain.TextField(m[1])
	}

	return values
}
