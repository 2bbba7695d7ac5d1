package usecase

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// MatchPolicy is the injectable fuzzy-comparison policy used by the
// validator. OCR and LLM extraction introduce minor formatting drift, so
// shared fields are compared on normalized similarity instead of equality.
type MatchPolicy struct {
	// MinSimilarity is the normalized Levenshtein similarity in [0,1] below
	// which two values count as a mismatch.
	MinSimilarity float64
}

func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{MinSimilarity: 0.90}
}

var (
	hospitalStopwords = []string{"hospital", "medical", "healthcare", "health", "care", "centre", "center", "clinic"}
	insurerStopwords  = []string{"insurance", "general", "health", "assurance", "company", "ltd", "limited", "plan"}
)

// NamesMatch compares person names case- and whitespace-insensitively with
// edit-distance tolerance.
func (p MatchPolicy) NamesMatch(a, b string) bool {
	return p.similar(normalize(a), normalize(b))
}

// HospitalsMatch compares facility names after stripping common suffixes.
func (p MatchPolicy) HospitalsMatch(a, b string) bool {
	return p.similar(stripWords(normalize(a), hospitalStopwords), stripWords(normalize(b), hospitalStopwords))
}

// InsurersMatch compares insurance company names after stripping common
// corporate words.
func (p MatchPolicy) InsurersMatch(a, b string) bool {
	return p.similar(stripWords(normalize(a), insurerStopwords), stripWords(normalize(b), insurerStopwords))
}

func (p MatchPolicy) similar(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return levenshtein.Similarity(a, b, nil) >= p.MinSimilarity
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func stripWords(s string, stopwords []string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		drop := false
		for _, w := range stopwords {
			if f == w {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		// Name consisted only of stopwords; fall back to the full form.
		return s
	}
	return strings.Join(kept, " ")
}
