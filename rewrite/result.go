package rewrite

import (
	"strings"

	"github.com/kbukum/longscribe/llm"
)

// DefaultConfirmQuestion is asked when the generator requests confirmation
// without a question of its own.
const DefaultConfirmQuestion = "请确认每个说话人是谁（姓名/称呼）？"

// Result is the structured part of one generation response. Every field
// defaults to its zero value when missing or of the wrong type.
type Result struct {
	Title             string
	SegmentText       string
	SegmentSummary    string
	TailSentences     string
	NeedsConfirmation bool
	// SpeakerMapDraft is kept as proposed, whatever its JSON shape.
	SpeakerMapDraft any
	ConfirmQuestion string
	UncertainTerms  []map[string]any
	// Raw is the parsed object as received, nil when nothing parsed.
	Raw map[string]any
}

// ParseResult recovers a Result from generator output. It never fails.
func ParseResult(raw string) Result {
	obj, ok := llm.ExtractObject(raw)
	if !ok {
		return Result{}
	}
	return Result{
		Title:             stringField(obj, "title"),
		SegmentText:       stringField(obj, "segment_text"),
		SegmentSummary:    stringField(obj, "segment_summary"),
		TailSentences:     tailField(obj["tail_sentences"]),
		NeedsConfirmation: boolField(obj["needs_confirmation"]),
		SpeakerMapDraft:   obj["speaker_map_draft"],
		ConfirmQuestion:   stringField(obj, "confirm_question"),
		UncertainTerms:    termsField(obj["uncertain_terms"]),
		Raw:               obj,
	}
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// tailField accepts a string or a list of strings.
func tailField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func boolField(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	case float64:
		return t != 0
	}
	return false
}

// termsField keeps only object entries.
func termsField(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var terms []map[string]any
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			terms = append(terms, m)
		}
	}
	return terms
}
