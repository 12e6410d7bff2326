package output

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/kbukum/longscribe/artifact"
	"github.com/kbukum/longscribe/pipeline"
)

// stageOrder is the order stages are printed in the run report.
var stageOrder = []string{
	pipeline.StageAudio,
	pipeline.StageTranscribe,
	pipeline.StageSegment,
	pipeline.StageRewrite,
	pipeline.StageAssemble,
	pipeline.StageDerive,
}

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Transcribing(source string) {
	fmt.Fprintf(f.w, "🎙️  Transcribing %s...\n", source)
}

func (f *Formatter) Rewriting(path string) {
	fmt.Fprintf(f.w, "📝 Rewriting %s...\n", path)
}

// RunComplete prints the files of a completed run and its stage timings.
func (f *Formatter) RunComplete(s *pipeline.Summary, dir string) {
	if s.Title != "" {
		fmt.Fprintf(f.w, "✅ %s\n", s.Title)
	}
	fmt.Fprintf(f.w, "✅ Rewrote %d segments (run %s)\n", s.Processed, s.RunID)
	f.files(s, dir)
	f.stages(s)
	fmt.Fprintf(f.w, "\n📁 Output saved: %s\n", dir)
}

// AwaitingConfirmation prints the confirmation question and how to resume.
func (f *Formatter) AwaitingConfirmation(s *pipeline.Summary, dir string) {
	fmt.Fprintf(f.w, "⏸️  Speaker confirmation needed (%d of %d segments rewritten)\n", s.Processed, s.Segments)
	if s.ConfirmQuestion != "" {
		fmt.Fprintf(f.w, "❓ %s\n", s.ConfirmQuestion)
	}
	f.files(s, dir)
	fmt.Fprintf(f.w, "\nEdit %s, then resume with:\n", filepath.Join(dir, artifact.SpeakerMapDraft))
	fmt.Fprintf(f.w, "  longscribe rewrite --transcript %s --speaker-map <map.json>\n",
		filepath.Join(dir, artifact.Transcription))
}

func (f *Formatter) PromptList(names []string) {
	fmt.Fprintf(f.w, "📄 Prompt templates:\n\n")
	for _, n := range names {
		fmt.Fprintf(f.w, "  %s\n", n)
	}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) files(s *pipeline.Summary, dir string) {
	for _, name := range s.Files {
		fmt.Fprintf(f.w, "  %s\n", filepath.Join(dir, name))
	}
}

func (f *Formatter) stages(s *pipeline.Summary) {
	if len(s.Stages) == 0 {
		return
	}
	fmt.Fprintf(f.w, "\n⏱️  Stages:\n")
	seen := make(map[string]bool, len(stageOrder))
	for _, name := range stageOrder {
		seen[name] = true
		if ms, ok := s.Stages[name]; ok {
			fmt.Fprintf(f.w, "  %-11s %s\n", name, formatDuration(time.Duration(ms)*time.Millisecond))
		}
	}
	var rest []string
	for name := range s.Stages {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		fmt.Fprintf(f.w, "  %-11s %s\n", name, formatDuration(time.Duration(s.Stages[name])*time.Millisecond))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
