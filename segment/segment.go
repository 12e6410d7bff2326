// Package segment partitions normalized sentences into ordered text blocks
// bounded by duration, falling back to equal-length chunks when the
// transcript carries no timing.
package segment

import (
	"strings"
	"time"

	"github.com/kbukum/longscribe/transcript"
)

// Segment is one contiguous block of transcript text. Its index in the
// returned slice is its processing order.
type Segment string

// Split groups sentences into segments of at most target duration. A
// boundary is only ever placed between sentences. When no sentence is timed,
// or timing yields nothing, the joined text is cut into fallback chunks of
// equal rune length.
func Split(sentences []transcript.Sentence, target time.Duration, fallback int) []Segment {
	if hasTiming(sentences) {
		if segments := splitByTime(sentences, target.Seconds()); len(segments) > 0 {
			return segments
		}
	}
	return splitByLength(sentences, fallback)
}

func hasTiming(sentences []transcript.Sentence) bool {
	for _, s := range sentences {
		if s.Timed() {
			return true
		}
	}
	return false
}

func splitByTime(sentences []transcript.Sentence, target float64) []Segment {
	var (
		segments []Segment
		open     []string
		segStart *float64
	)
	for _, s := range sentences {
		start := s.StartSec
		if segStart == nil && start != nil {
			segStart = start
		}
		if start != nil && segStart != nil && *start-*segStart >= target && len(open) > 0 {
			segments = append(segments, join(open))
			open = nil
			segStart = start
		}
		open = append(open, s.Text)
	}
	if len(open) > 0 {
		segments = append(segments, join(open))
	}
	return segments
}

func splitByLength(sentences []transcript.Sentence, count int) []Segment {
	full := []rune(transcript.Text(sentences))
	if len(full) == 0 {
		return nil
	}
	count = max(1, count)
	size := max(1, (len(full)+count-1)/count)

	segments := make([]Segment, 0, count)
	for i := 0; i < len(full); i += size {
		end := min(i+size, len(full))
		segments = append(segments, Segment(full[i:end]))
	}
	return segments
}

func join(texts []string) Segment {
	return Segment(strings.TrimSpace(strings.Join(texts, "")))
}
