// Package memory holds the rolling context carried from one segment to the
// next: a capped summary of everything produced so far and a short tail of
// the latest text.
package memory

import (
	"strings"
	"unicode"
)

const (
	// DefaultTailSentences is the number of sentences kept when a tail is
	// derived from segment text.
	DefaultTailSentences = 3
	// tailFallbackRunes is used when text has no usable sentence.
	tailFallbackRunes = 200
)

// State is the memory threaded into each generation request.
type State struct {
	Summary string `json:"summary"`
	Tail    string `json:"tail"`
}

// Controller applies updates to a State. It is the only place State changes.
type Controller struct {
	// MaxChars caps Summary, counted in runes.
	MaxChars int
	// TailSentences is the sentence count of a derived tail.
	TailSentences int
}

// NewController returns a Controller with the given cap.
func NewController(maxChars, tailSentences int) Controller {
	if tailSentences <= 0 {
		tailSentences = DefaultTailSentences
	}
	return Controller{MaxChars: maxChars, TailSentences: tailSentences}
}

// Apply folds a segment into state. summary is appended to the rolling
// summary; tail replaces the current tail, or is derived from text when
// empty.
func (c Controller) Apply(state State, summary, tail, text string) State {
	if strings.TrimSpace(tail) == "" {
		n := c.TailSentences
		if n <= 0 {
			n = DefaultTailSentences
		}
		tail = DeriveTail(text, n)
	}
	return State{
		Summary: UpdateSummary(state.Summary, summary, c.MaxChars),
		Tail:    tail,
	}
}

// UpdateSummary appends next to prev and keeps at most maxChars runes,
// dropping the oldest content first. An empty next returns prev unchanged.
func UpdateSummary(prev, next string, maxChars int) string {
	if next == "" {
		return prev
	}
	combined := strings.TrimSpace(prev + "\n" + next)
	return lastRunes(combined, maxChars)
}

// DeriveTail returns the last n sentences of text joined by a space.
// Sentences end at 。！？!? and the whitespace after the terminator is
// dropped. Text without any non-blank part yields its last 200 runes.
func DeriveTail(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	parts := splitSentences(text)
	if len(parts) == 0 {
		return lastRunes(text, tailFallbackRunes)
	}
	if n > 0 && len(parts) > n {
		parts = parts[len(parts)-n:]
	}
	return strings.Join(parts, " ")
}

func splitSentences(text string) []string {
	var (
		parts []string
		cur   strings.Builder
		skip  bool
	)
	flush := func() {
		if p := strings.TrimSpace(cur.String()); p != "" {
			parts = append(parts, p)
		}
		cur.Reset()
	}
	for _, r := range text {
		if skip && unicode.IsSpace(r) {
			continue
		}
		skip = false
		cur.WriteRune(r)
		if isTerminal(r) {
			flush()
			skip = true
		}
	}
	flush()
	return parts
}

func isTerminal(r rune) bool {
	switch r {
	case '。', '！', '？', '!', '?':
		return true
	}
	return false
}

func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
