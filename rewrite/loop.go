package rewrite

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/longscribe/artifact"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/memory"
	"github.com/kbukum/longscribe/observability"
	"github.com/kbukum/longscribe/prompt"
	"github.com/kbukum/longscribe/segment"
	"github.com/kbukum/longscribe/speakermap"
)

// DefaultSummaryCap bounds one segment summary before it is folded into
// memory.
const DefaultSummaryCap = 4000

// Generator turns a rendered prompt into raw model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Outcome is how a run ended.
type Outcome string

const (
	// Completed means every segment was rewritten.
	Completed Outcome = "completed"
	// AwaitingConfirmation means the run stopped for speaker confirmation.
	AwaitingConfirmation Outcome = "awaiting_confirmation"
)

// Draft is persisted as speaker_map_draft.json when the run is gated.
type Draft struct {
	Title           string `json:"title"`
	SpeakerMapDraft any    `json:"speaker_map_draft"`
	ConfirmQuestion string `json:"confirm_question"`
}

// Report is the state of a run when the fold ends.
type Report struct {
	Outcome        Outcome
	Title          string
	Texts          []string
	UncertainTerms []map[string]any
	Memory         memory.State
	// Segment is the 1-based index of the last segment sent to the
	// generator.
	Segment int
	Total   int
	// Draft is set when Outcome is AwaitingConfirmation.
	Draft *Draft
}

// Loop rewrites segments sequentially.
type Loop struct {
	gen        Generator
	template   string
	writer     *artifact.Writer
	memory     memory.Controller
	summaryCap int
	glossary   string
	log        *logger.Logger
	metrics    *observability.PipelineMetrics
}

// Option configures a Loop.
type Option func(*Loop)

// WithMemory sets the memory controller.
func WithMemory(c memory.Controller) Option {
	return func(l *Loop) { l.memory = c }
}

// WithSummaryCap bounds each segment summary, in runes.
func WithSummaryCap(n int) Option {
	return func(l *Loop) { l.summaryCap = n }
}

// WithGlossary sets the glossary_terms prompt variable.
func WithGlossary(terms string) Option {
	return func(l *Loop) { l.glossary = terms }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// WithMetrics records per-segment metrics.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// NewLoop creates a Loop that renders template for every segment and writes
// artifacts through w.
func NewLoop(gen Generator, template string, w *artifact.Writer, opts ...Option) *Loop {
	l := &Loop{
		gen:        gen,
		template:   template,
		writer:     w,
		memory:     memory.NewController(1200, memory.DefaultTailSentences),
		summaryCap: DefaultSummaryCap,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.WithComponent("rewrite")
	return l
}

// Run processes segments in order. speakers is authoritative only when
// confirmed is true.
func (l *Loop) Run(ctx context.Context, segments []segment.Segment, speakers speakermap.Map, confirmed bool) (*Report, error) {
	ctx, stage := observability.StartStage(ctx, observability.SpanRewrite,
		attribute.Int(observability.AttrSegmentTotal, len(segments)))

	report, err := l.run(ctx, segments, speakers, confirmed)
	if err == nil {
		observability.SetSpanAttribute(ctx, observability.AttrOutcome, string(report.Outcome))
	}
	stage.End(err)
	return report, err
}

func (l *Loop) run(ctx context.Context, segments []segment.Segment, speakers speakermap.Map, confirmed bool) (*Report, error) {
	report := &Report{Total: len(segments)}
	vars := map[string]string{
		"segment_total":         strconv.Itoa(len(segments)),
		"speaker_map":           speakers.JSON(),
		"speaker_map_confirmed": strconv.FormatBool(confirmed),
		"glossary_terms":        l.glossary,
	}

	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		index := i + 1
		report.Segment = index

		gated, err := l.step(ctx, report, index, seg, vars, confirmed)
		if err != nil {
			return report, err
		}
		if gated {
			report.Outcome = AwaitingConfirmation
			return report, nil
		}
	}

	report.Outcome = Completed
	l.log.Info("rewrite complete", logger.Fields(logger.FieldTotal, report.Total, "title", report.Title))
	return report, nil
}

// step handles one segment and folds its result into report. It reports
// whether the run is gated.
func (l *Loop) step(ctx context.Context, report *Report, index int, seg segment.Segment, vars map[string]string, confirmed bool) (gated bool, err error) {
	ctx, stage := observability.StartStage(ctx, observability.SpanSegment,
		attribute.Int(observability.AttrSegmentIndex, index),
		attribute.Int(observability.AttrSegmentTotal, report.Total))
	defer func() {
		duration := stage.End(err)
		status := "ok"
		switch {
		case err != nil:
			status = "error"
		case gated:
			status = "gated"
		}
		l.metrics.RecordSegment(ctx, status, duration)
	}()

	log := l.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldSegment, index, logger.FieldTotal, report.Total))

	vars["segment_index"] = strconv.Itoa(index)
	vars["progress"] = strconv.Itoa(Progress(index, report.Total))
	vars["prev_summary"] = report.Memory.Summary
	vars["prev_tail"] = report.Memory.Tail
	vars["segment_text"] = string(seg)

	raw, err := l.gen.Generate(ctx, prompt.Render(l.template, vars))
	if err != nil {
		return false, fmt.Errorf("segment %d: %w", index, err)
	}
	res := ParseResult(raw)
	if res.Raw == nil {
		log.Warn("generator output is not a JSON object, using raw text", logger.Fields(logger.FieldChars, len([]rune(raw))))
	}

	if res.NeedsConfirmation && !confirmed {
		return true, l.gate(ctx, log, report, res)
	}

	if index == 1 {
		report.Title = strings.TrimSpace(res.Title)
	}
	report.UncertainTerms = append(report.UncertainTerms, res.UncertainTerms...)

	text := strings.TrimSpace(res.SegmentText)
	if text == "" {
		text = strings.TrimSpace(raw)
	}
	report.Memory = l.memory.Apply(report.Memory, firstRunes(res.SegmentSummary, l.summaryCap), res.TailSentences, text)
	report.Texts = append(report.Texts, text)

	var structured any = res.Raw
	if len(res.Raw) == 0 {
		structured = map[string]any{"raw": raw}
	}
	if err := l.writer.WriteJSON(ctx, artifact.SegmentJSON(index), structured); err != nil {
		return false, err
	}
	if err := l.writer.WriteText(ctx, artifact.SegmentText(index), text+"\n"); err != nil {
		return false, err
	}

	log.Info("segment rewritten", logger.Fields(
		logger.FieldChars, len([]rune(text)),
		"summary_chars", len([]rune(report.Memory.Summary)),
	))
	return false, nil
}

// gate persists the draft and the terms collected so far, including this
// segment's.
func (l *Loop) gate(ctx context.Context, log *logger.Logger, report *Report, res Result) error {
	draft := &Draft{
		Title:           strings.TrimSpace(res.Title),
		SpeakerMapDraft: res.SpeakerMapDraft,
		ConfirmQuestion: res.ConfirmQuestion,
	}
	if draft.SpeakerMapDraft == nil {
		draft.SpeakerMapDraft = map[string]any{}
	}
	if draft.ConfirmQuestion == "" {
		draft.ConfirmQuestion = DefaultConfirmQuestion
	}

	terms := append(report.UncertainTerms, res.UncertainTerms...)
	if terms == nil {
		terms = []map[string]any{}
	}
	report.UncertainTerms = terms
	report.Draft = draft

	if err := l.writer.WriteJSON(ctx, artifact.SpeakerMapDraft, draft); err != nil {
		return err
	}
	if err := l.writer.WriteJSON(ctx, artifact.UncertainTerms, terms); err != nil {
		return err
	}

	l.metrics.RecordGate(ctx)
	log.Warn("speaker confirmation required", logger.Fields("question", draft.ConfirmQuestion))
	return nil
}

// Progress returns index/total as a percentage, rounding halves to even.
func Progress(index, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(index) / float64(total) * 100))
}

func firstRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
