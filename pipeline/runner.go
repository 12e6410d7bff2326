package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/longscribe/artifact"
	"github.com/kbukum/longscribe/config"
	"github.com/kbukum/longscribe/document"
	"github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/glossary"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/memory"
	"github.com/kbukum/longscribe/observability"
	"github.com/kbukum/longscribe/prompt"
	"github.com/kbukum/longscribe/rewrite"
	"github.com/kbukum/longscribe/segment"
	"github.com/kbukum/longscribe/speakermap"
	"github.com/kbukum/longscribe/storage"
	"github.com/kbukum/longscribe/transcript"
	"github.com/kbukum/longscribe/transcription"
)

// Stage names used in logs, metrics and run.json.
const (
	StageAudio      = "stage_audio"
	StageTranscribe = "transcribe"
	StageSegment    = "segment"
	StageRewrite    = "rewrite"
	StageAssemble   = "assemble"
	StageDerive     = "derive"
)

// Transcriber produces a raw transcript document from an audio URL.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.SubmitRequest) (*transcription.Result, error)
}

// Request describes the audio of one run. Exactly one of AudioURL and
// AudioFile must be set.
type Request struct {
	AudioURL  string
	AudioFile string
	Speakers  speakermap.Map
	// Confirmed marks Speakers as authoritative.
	Confirmed bool
}

// Runner executes runs.
type Runner struct {
	generator   rewrite.Generator
	prompts     *prompt.Store
	output      storage.Storage
	pipeline    config.PipelineConfig
	settings    config.OutputConfig
	transcriber Transcriber
	stager      *Stager
	mirror      storage.Storage
	log         *logger.Logger
	metrics     *observability.PipelineMetrics
	newRunID    func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithTranscriber enables Run. Without it only RunTranscript is available.
func WithTranscriber(t Transcriber) Option {
	return func(r *Runner) { r.transcriber = t }
}

// WithStager enables local audio files.
func WithStager(s *Stager) Option {
	return func(r *Runner) { r.stager = s }
}

// WithMirror copies every artifact to s under runs/<run-id>/.
func WithMirror(s storage.Storage) Option {
	return func(r *Runner) { r.mirror = s }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithRunID overrides run id generation.
func WithRunID(fn func() string) Option {
	return func(r *Runner) { r.newRunID = fn }
}

// New creates a Runner writing artifacts to output.
func New(gen rewrite.Generator, prompts *prompt.Store, output storage.Storage, pc config.PipelineConfig, oc config.OutputConfig, opts ...Option) *Runner {
	r := &Runner{
		generator: gen,
		prompts:   prompts,
		output:    output,
		pipeline:  pc,
		settings:  oc,
		log:       logger.Nop(),
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("pipeline")
	return r
}

// Run transcribes the requested audio and rewrites it. A gated run returns
// a Summary with Outcome rewrite.AwaitingConfirmation and a nil error.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	if (req.AudioURL == "") == (req.AudioFile == "") {
		return nil, errors.InvalidInput("audio", "exactly one of audio URL and audio file is required")
	}
	if r.transcriber == nil {
		return nil, errors.Validation("no transcription provider configured")
	}
	if req.AudioFile != "" && r.stager == nil {
		return nil, errors.InvalidInput("audio_file", "audio staging is not configured")
	}

	return r.execute(ctx, func(ctx context.Context, run *runState) (map[string]any, error) {
		audioURL := req.AudioURL
		if req.AudioFile != "" {
			start := time.Now()
			url, err := r.stager.Stage(ctx, run.summary.RunID, req.AudioFile)
			run.summary.stage(StageAudio, time.Since(start))
			if err != nil {
				return nil, run.fail(ctx, StageAudio, err)
			}
			audioURL = url
		}
		run.summary.AudioURL = req.AudioURL
		run.summary.AudioFile = req.AudioFile

		start := time.Now()
		res, err := r.transcriber.Transcribe(ctx, transcription.SubmitRequest{
			AudioURL: audioURL,
			Language: r.pipeline.Language,
		})
		run.summary.stage(StageTranscribe, time.Since(start))
		if err != nil {
			return nil, run.fail(ctx, StageTranscribe, err)
		}
		run.summary.TaskID = res.TaskID
		return res.Transcript, nil
	}, req.Speakers, req.Confirmed)
}

// RunTranscript rewrites an already transcribed document.
func (r *Runner) RunTranscript(ctx context.Context, doc map[string]any, speakers speakermap.Map, confirmed bool) (*Summary, error) {
	return r.execute(ctx, func(context.Context, *runState) (map[string]any, error) {
		return doc, nil
	}, speakers, confirmed)
}

type runState struct {
	r       *Runner
	writer  *artifact.Writer
	log     *logger.Logger
	summary *Summary
}

// fail records err against stage and returns it unchanged.
func (s *runState) fail(ctx context.Context, stage string, err error) error {
	code := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	s.r.metrics.RecordError(ctx, code, stage)
	s.log.WithError(err).Error("run failed", logger.Fields(logger.FieldOperation, stage, "code", code))
	return err
}

type sourceFunc func(ctx context.Context, run *runState) (map[string]any, error)

func (r *Runner) execute(ctx context.Context, source sourceFunc, speakers speakermap.Map, confirmed bool) (summary *Summary, err error) {
	runID := r.newRunID()
	ctx = logger.ContextWithRunID(ctx, runID)
	ctx, stage := observability.StartStage(ctx, observability.SpanRun,
		attribute.String(observability.AttrRunID, runID))
	defer func() { stage.End(err) }()

	log := r.log.WithContext(ctx)
	opts := []artifact.Option{artifact.WithLogger(log)}
	if r.mirror != nil {
		opts = append(opts, artifact.WithMirror(r.mirror, "runs/"+runID))
	}
	run := &runState{
		r:       r,
		writer:  artifact.NewWriter(r.output, opts...),
		log:     log,
		summary: &Summary{RunID: runID, StartedAt: time.Now().UTC()},
	}
	log.Info("run started", logger.Fields("confirmed_speakers", confirmed, "speakers", len(speakers)))

	doc, err := source(ctx, run)
	if err != nil {
		return nil, err
	}
	if err := run.writer.WriteJSON(ctx, artifact.Transcription, doc); err != nil {
		return nil, run.fail(ctx, StageTranscribe, err)
	}

	report, err := r.rewrite(ctx, run, doc, speakers, confirmed)
	if err != nil {
		return nil, err
	}

	if report.Outcome == rewrite.Completed {
		if err := r.finish(ctx, run, report); err != nil {
			return nil, err
		}
	} else {
		run.summary.ConfirmQuestion = report.Draft.ConfirmQuestion
		run.summary.Files = append(run.summary.Files, artifact.SpeakerMapDraft, artifact.UncertainTerms)
	}

	observability.SetSpanAttribute(ctx, observability.AttrOutcome, string(report.Outcome))
	if err := run.writer.WriteJSON(ctx, artifact.RunSummary, run.summary); err != nil {
		return nil, run.fail(ctx, StageAssemble, err)
	}
	log.Info("run finished", logger.Fields("outcome", report.Outcome, logger.FieldTotal, report.Total))
	return run.summary, nil
}

// rewrite normalizes and segments doc, then drives the rewrite loop. It
// fails before any generation call when the transcript is unusable.
func (r *Runner) rewrite(ctx context.Context, run *runState, doc map[string]any, speakers speakermap.Map, confirmed bool) (*rewrite.Report, error) {
	start := time.Now()
	sentences := transcript.Normalize(doc)
	if len(sentences) == 0 {
		return nil, run.fail(ctx, StageSegment, errors.EmptyTranscript())
	}
	segments := segment.Split(sentences, r.pipeline.SegmentTarget(), r.pipeline.Segments)
	run.summary.stage(StageSegment, time.Since(start))
	if len(segments) == 0 {
		return nil, run.fail(ctx, StageSegment, errors.NoSegments())
	}
	run.summary.Segments = len(segments)
	run.log.Info("transcript segmented", logger.Fields("sentences", len(sentences), logger.FieldTotal, len(segments)))

	candidates := glossary.Extract(transcript.Text(sentences), r.pipeline.Glossary)
	if candidates == nil {
		candidates = []glossary.Candidate{}
	}
	if err := run.writer.WriteJSON(ctx, artifact.TermCandidates, candidates); err != nil {
		return nil, run.fail(ctx, StageSegment, err)
	}

	template, err := r.prompts.Load(ctx, r.pipeline.Template)
	if err != nil {
		return nil, run.fail(ctx, StageRewrite, err)
	}

	loop := rewrite.NewLoop(r.generator, template, run.writer,
		rewrite.WithMemory(memory.NewController(r.pipeline.MaxMemoryChars, r.pipeline.TailSentences)),
		rewrite.WithSummaryCap(r.pipeline.SummaryCap),
		rewrite.WithGlossary(glossary.Join(r.pipeline.Glossary)),
		rewrite.WithLogger(run.log),
		rewrite.WithMetrics(r.metrics),
	)

	start = time.Now()
	report, err := loop.Run(ctx, segments, speakers, confirmed)
	run.summary.stage(StageRewrite, time.Since(start))
	if err != nil {
		return nil, run.fail(ctx, StageRewrite, err)
	}
	run.summary.Outcome = report.Outcome
	run.summary.Title = report.Title
	run.summary.Processed = len(report.Texts)
	return report, nil
}

func (r *Runner) finish(ctx context.Context, run *runState, report *rewrite.Report) error {
	start := time.Now()
	out, err := document.NewAssembler(run.writer,
		document.WithDocx(r.settings.Docx),
		document.WithLogger(run.log),
	).Write(ctx, report)
	run.summary.stage(StageAssemble, time.Since(start))
	if err != nil {
		return run.fail(ctx, StageAssemble, err)
	}
	run.summary.Files = append(run.summary.Files, out.Files...)

	if len(r.settings.Derive) == 0 {
		return nil
	}
	start = time.Now()
	written, err := document.NewDeriver(r.generator, r.prompts, prompt.Render, run.writer, run.log).
		Derive(ctx, r.settings.Derive, out.Body, glossary.Join(r.pipeline.Glossary), report.UncertainTerms)
	run.summary.stage(StageDerive, time.Since(start))
	run.summary.Files = append(run.summary.Files, written...)
	if err != nil {
		return run.fail(ctx, StageDerive, err)
	}
	return nil
}
