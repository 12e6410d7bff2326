package transcription

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/observability"
	"github.com/kbukum/longscribe/resilience"
)

// Transcriber composes submit, bounded polling and fetch.
type Transcriber struct {
	provider AsyncProvider
	poll     resilience.PollConfig
	log      *logger.Logger
	metrics  *observability.PipelineMetrics
}

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(t *Transcriber) { t.log = log }
}

// WithMetrics records transcription latency and outcome.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(t *Transcriber) { t.metrics = m }
}

// NewTranscriber creates a Transcriber for p.
func NewTranscriber(p AsyncProvider, poll resilience.PollConfig, opts ...Option) *Transcriber {
	t := &Transcriber{provider: p, poll: poll, log: logger.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.WithComponent("transcription")
	return t
}

// Transcribe runs a full task. It returns errors.TaskFailed when the
// provider reports failure and errors.Timeout when the attempts run out.
func (t *Transcriber) Transcribe(ctx context.Context, req SubmitRequest) (*Result, error) {
	ctx, stage := observability.StartStage(ctx, observability.SpanTranscribe,
		attribute.String(observability.AttrProvider, t.provider.Name()))

	res, err := t.transcribe(ctx, req)

	duration := stage.End(err)
	status := "ok"
	if err != nil {
		status = "error"
	}
	t.metrics.RecordTranscription(ctx, status, duration)
	return res, err
}

func (t *Transcriber) transcribe(ctx context.Context, req SubmitRequest) (*Result, error) {
	log := t.log.WithContext(ctx)

	taskID, err := t.provider.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrTaskID, taskID)
	log.Info("transcription submitted", logger.Fields(logger.FieldTaskID, taskID, logger.FieldProvider, t.provider.Name()))

	cfg := t.poll
	if cfg.OnPending == nil {
		cfg.OnPending = func(attempt int) {
			log.Debug("transcription pending", logger.Fields(logger.FieldTaskID, taskID, logger.FieldAttempt, attempt))
		}
	}

	attempts := 0
	status, err := resilience.Poll(ctx, cfg, func(ctx context.Context, attempt int) (*TaskStatus, bool, error) {
		attempts = attempt
		st, err := t.provider.Poll(ctx, taskID)
		if err != nil {
			return nil, false, err
		}
		return st, st.State.Terminal(), nil
	})
	if err != nil {
		if errors.Is(err, resilience.ErrPollExhausted) {
			return nil, apperrors.Timeout("transcription polling").
				WithCause(err).
				WithDetails(map[string]any{"task_id": taskID, "attempts": attempts})
		}
		return nil, err
	}

	if status.State == StateFailed {
		return nil, apperrors.TaskFailed(t.provider.Name(), taskID, status.Message)
	}
	log.Info("transcription succeeded", logger.Fields(logger.FieldTaskID, taskID, logger.FieldAttempt, attempts))

	doc, err := t.provider.Fetch(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	return &Result{TaskID: taskID, Transcript: doc, Attempts: attempts}, nil
}

// Transcribe is a convenience wrapper around a Transcriber without logging.
func Transcribe(ctx context.Context, p AsyncProvider, req SubmitRequest, poll resilience.PollConfig) (map[string]any, error) {
	res, err := NewTranscriber(p, poll).Transcribe(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Transcript, nil
}
