// Package glossary finds term candidates in transcript text: known glossary
// terms, plus capitalized or acronym-like tokens that may need review.
package glossary

import (
	"regexp"
	"strings"
)

const (
	// ConfidenceKnown is assigned to terms found in the glossary.
	ConfidenceKnown = 0.9
	// ConfidenceGuess is assigned to capitalized tokens not in the glossary.
	ConfidenceGuess = 0.6

	contextWindow = 40
	sourceRule    = "rule"
)

var tokenPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9-]{2,}\b`)

// Candidate is a term worth checking in the rewritten text.
type Candidate struct {
	Term       string  `json:"term"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Context    string  `json:"context,omitempty"`
}

// Extract returns candidates in discovery order. Glossary terms present in
// text come first. Duplicates are dropped case-insensitively.
func Extract(text string, glossary []string) []Candidate {
	var (
		candidates []Candidate
		seen       = make(map[string]bool)
		known      = make(map[string]bool, len(glossary))
	)
	for _, term := range glossary {
		known[strings.ToLower(term)] = true
	}

	for _, term := range glossary {
		key := strings.ToLower(term)
		if term == "" || seen[key] || !strings.Contains(text, term) {
			continue
		}
		seen[key] = true
		candidates = append(candidates, Candidate{
			Term: term, Confidence: ConfidenceKnown, Source: sourceRule, Context: contextOf(text, term),
		})
	}

	for _, match := range tokenPattern.FindAllString(text, -1) {
		key := strings.ToLower(match)
		if seen[key] {
			continue
		}
		seen[key] = true
		confidence := ConfidenceGuess
		if known[key] {
			confidence = ConfidenceKnown
		}
		candidates = append(candidates, Candidate{
			Term: match, Confidence: confidence, Source: sourceRule, Context: contextOf(text, match),
		})
	}
	return candidates
}

// Join renders glossary terms for the glossary_terms prompt variable.
func Join(terms []string) string {
	return strings.Join(terms, ", ")
}

// contextOf returns the first occurrence of term with up to 40 runes on
// each side.
func contextOf(text, term string) string {
	idx := strings.Index(text, term)
	if idx < 0 {
		return ""
	}
	before := []rune(text[:idx])
	after := []rune(text[idx+len(term):])

	start := max(0, len(before)-contextWindow)
	end := min(len(after), contextWindow)
	return string(before[start:]) + term + string(after[:end])
}
