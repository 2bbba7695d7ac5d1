// Package pdftext adapts raw document bytes into plain text. PDF content is
// read with ledongthuc/pdf; anything else passes through when it is valid
// UTF-8. Extraction failures degrade the text instead of failing the
// submission: quality is an input condition for the pipeline, not an error.
package pdftext

import (
	"bytes"
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/clearclaim/claims-engine/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, raw domain.RawDocument) (domain.ExtractedText, error) {
	if isPDF(raw) {
		if text, ok := extractPDF(raw.Content); ok {
			return domain.ExtractedText{Text: cleanText(text)}, nil
		}
		// Unreadable PDF: salvage nothing, mark degraded.
		return domain.ExtractedText{Degraded: true}, nil
	}

	if !utf8.Valid(raw.Content) {
		return domain.ExtractedText{Degraded: true}, nil
	}
	return domain.ExtractedText{Text: cleanText(string(raw.Content))}, nil
}

func isPDF(raw domain.RawDocument) bool {
	if strings.EqualFold(raw.MimeType, "application/pdf") {
		return true
	}
	if strings.HasSuffix(strings.ToLower(raw.Filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(raw.Content, []byte("%PDF-"))
}

func extractPDF(content []byte) (string, bool) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", false
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", false
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", false
	}
	return string(text), true
}

// cleanText trims each line and drops empty ones, normalizing the ragged
// spacing PDF extraction tends to produce.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
