package domain

import "github.com/shopspring/decimal"

type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldDate   FieldKind = "date"
	FieldAmount FieldKind = "amount"
)

// FieldValue is a typed extracted value. A required field that could not be
// recovered is stored with Present=false rather than omitted, so every
// schema field is always addressable.
type FieldValue struct {
	Kind    FieldKind       `json:"kind"`
	Present bool            `json:"present"`
	Text    string          `json:"text,omitempty"`
	Date    string          `json:"date,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

func AbsentField(kind FieldKind) FieldValue {
	return FieldValue{Kind: kind}
}

func TextField(value string) FieldValue {
	return FieldValue{Kind: FieldText, Present: true, Text: value}
}

// DateField stores a date already normalized to ISO form (2006-01-02).
func DateField(iso string) FieldValue {
	return FieldValue{Kind: FieldDate, Present: true, Date: iso}
}

func AmountField(amount decimal.Decimal) FieldValue {
	return FieldValue{Kind: FieldAmount, Present: true, Amount: amount}
}

// Display renders the value for validation findings and decision reasons.
func (v FieldValue) Display() string {
	if !v.Present {
		return "<absent>"
	}
	switch v.Kind {
	case FieldDate:
		return v.Date
	case FieldAmount:
		return v.Amount.String()
	default:
		return v.Text
	}
}

type ExtractedFields struct {
	Values     map[string]FieldValue `json:"values"`
	Confidence float64               `json:"confidence"`
}

// EmptyFields is the zero-confidence result recorded for unknown documents
// and for documents whose extraction could not run at all.
func EmptyFields() ExtractedFields {
	return ExtractedFields{Values: map[string]FieldValue{}}
}

func (f ExtractedFields) Get(name string) FieldValue {
	if v, ok := f.Values[name]; ok {
		return v
	}
	return FieldValue{}
}

func (f ExtractedFields) Present(name string) bool {
	return f.Get(name).Present
}
