package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SecondsThreshold is the largest maximum time still interpreted as seconds.
const SecondsThreshold = 100000

var (
	startKeys = []string{"begin_time", "start_time", "start", "offset"}
	endKeys   = []string{"end_time", "stop_time", "end"}
)

// Sentence is one transcribed utterance. Nil times mean the provider gave
// no usable value.
type Sentence struct {
	Text  string   `json:"text"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
	// StartSec and EndSec are set by NormalizeTimes.
	StartSec *float64 `json:"start_sec,omitempty"`
	EndSec   *float64 `json:"end_sec,omitempty"`
}

// Timed reports whether the sentence has a normalized start time.
func (s Sentence) Timed() bool { return s.StartSec != nil }

// Normalize extracts sentences from doc and normalizes their times.
func Normalize(doc map[string]any) []Sentence {
	return NormalizeTimes(Extract(doc))
}

// Extract reads sentences from a transcription document, preserving input
// order.
func Extract(doc map[string]any) []Sentence {
	var sentences []Sentence

	if units, ok := doc["transcripts"].([]any); ok {
		for _, u := range units {
			unit, ok := u.(map[string]any)
			if !ok {
				continue
			}
			if list, ok := unit["sentences"].([]any); ok {
				for _, item := range list {
					s, ok := item.(map[string]any)
					if !ok {
						continue
					}
					text, _ := s["text"].(string)
					sentences = append(sentences, Sentence{
						Text:  text,
						Start: timeValue(firstNonNull(s, startKeys)),
						End:   timeValue(firstNonNull(s, endKeys)),
					})
				}
			} else if text, ok := unit["text"].(string); ok {
				sentences = append(sentences, Sentence{Text: text})
			}
		}
	}

	if len(sentences) == 0 {
		if text, ok := fallbackText(doc).(string); ok && strings.TrimSpace(text) != "" {
			sentences = append(sentences, Sentence{Text: text})
		}
	}
	return sentences
}

// fallbackText returns the first truthy value among output.text,
// output.result.text, text and transcript.
func fallbackText(doc map[string]any) any {
	output, _ := doc["output"].(map[string]any)
	result, _ := output["result"].(map[string]any)
	for _, v := range []any{output["text"], result["text"], doc["text"], doc["transcript"]} {
		if truthy(v) {
			return v
		}
	}
	return nil
}

// NormalizeTimes sets StartSec and EndSec on every sentence with a known
// time. Without any time the input is returned unchanged.
func NormalizeTimes(sentences []Sentence) []Sentence {
	var (
		maxT  float64
		found bool
	)
	for _, s := range sentences {
		for _, t := range []*float64{s.Start, s.End} {
			if t != nil && (!found || *t > maxT) {
				maxT, found = *t, true
			}
		}
	}
	if !found {
		return sentences
	}

	factor := 1.0
	if maxT > SecondsThreshold {
		factor = 0.001
	}

	out := make([]Sentence, len(sentences))
	for i, s := range sentences {
		if s.Start != nil {
			s.StartSec = ptr(*s.Start * factor)
		}
		if s.End != nil {
			s.EndSec = ptr(*s.End * factor)
		}
		out[i] = s
	}
	return out
}

// Text concatenates every sentence text and trims the result.
func Text(sentences []Sentence) string {
	var b strings.Builder
	for _, s := range sentences {
		b.WriteString(s.Text)
	}
	return strings.TrimSpace(b.String())
}

// Decode parses a JSON transcription document. Numbers are decoded as
// float64.
func Decode(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("transcript: decode: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("transcript: document is not a JSON object")
	}
	return convertNumbers(doc).(map[string]any), nil
}

func convertNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = convertNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = convertNumbers(child)
		}
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

func firstNonNull(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// timeValue accepts numbers only; strings and booleans are not times.
func timeValue(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return ptr(n)
	case float32:
		return ptr(float64(n))
	case int:
		return ptr(float64(n))
	case int64:
		return ptr(float64(n))
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return ptr(f)
		}
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

func ptr(f float64) *float64 { return &f }
