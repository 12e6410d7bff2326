// Package dashscope implements transcription.AsyncProvider for the DashScope
// asynchronous file transcription API.
package dashscope

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/httpclient"
	"github.com/kbukum/longscribe/httpclient/rest"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/transcription"
)

// ProviderName is the provider's name in logs, spans and errors.
const ProviderName = "dashscope"

// DashScope task states.
const (
	taskSucceeded = "SUCCEEDED"
	taskFailed    = "FAILED"
)

// Provider talks to DashScope.
type Provider struct {
	api    *rest.Client
	result *httpclient.Client
	model  string
	log    *logger.Logger
}

var _ transcription.AsyncProvider = (*Provider)(nil)

// NewProvider creates a DashScope provider. It fails with
// MISSING_CREDENTIAL when no API key is configured.
func NewProvider(cfg Config, log *logger.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.MissingCredential("DASHSCOPE_API_KEY")
	}
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}

	api, err := rest.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		Timeout: cfg.Timeout,
		Token:   cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("dashscope: create client: %w", err)
	}

	// Transcription result URLs are pre-signed object storage links. They
	// must be fetched without credentials or extra headers.
	result, err := httpclient.New(httpclient.Config{Name: ProviderName + "-result", Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("dashscope: create result client: %w", err)
	}

	return &Provider{
		api:    api,
		result: result,
		model:  cfg.Model,
		log:    log.WithComponent(ProviderName),
	}, nil
}

// Name returns "dashscope".
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether a base URL is configured.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.api.BaseURL() != ""
}

type submitRequest struct {
	Model      string           `json:"model"`
	Input      submitInput      `json:"input"`
	Parameters submitParameters `json:"parameters"`
}

type submitInput struct {
	FileURL string `json:"file_url"`
}

type submitParameters struct {
	ChannelID   []int  `json:"channel_id"`
	EnableWords bool   `json:"enable_words"`
	Language    string `json:"language,omitempty"`
}

type taskResponse struct {
	RequestID string `json:"request_id"`
	Output    struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
		Message    string `json:"message"`
	} `json:"output"`
}

// Submit starts an asynchronous transcription of req.AudioURL.
func (p *Provider) Submit(ctx context.Context, req transcription.SubmitRequest) (string, error) {
	if req.AudioURL == "" {
		return "", apperrors.MissingField("audio_url")
	}

	body := submitRequest{
		Model: p.model,
		Input: submitInput{FileURL: req.AudioURL},
		Parameters: submitParameters{
			ChannelID:   []int{0},
			EnableWords: true,
			Language:    req.Language,
		},
	}

	resp, err := rest.Post[taskResponse](ctx, p.api, "/services/audio/asr/transcription", body,
		rest.WithHeader("X-DashScope-Async", "enable"))
	if err != nil {
		return "", httpclient.ServiceError(ProviderName, err)
	}

	taskID := resp.Data.Output.TaskID
	if taskID == "" {
		return "", apperrors.ExternalServiceError(ProviderName, fmt.Errorf("response has no output.task_id"))
	}
	p.log.WithContext(ctx).Debug("task submitted", logger.Fields(
		logger.FieldTaskID, taskID, logger.FieldModel, p.model, "request_id", resp.Data.RequestID))
	return taskID, nil
}

// Poll fetches the task state. Any non-2xx response is an error.
func (p *Provider) Poll(ctx context.Context, taskID string) (*transcription.TaskStatus, error) {
	resp, err := rest.Get[map[string]any](ctx, p.api, "/tasks/"+url.PathEscape(taskID))
	if err != nil {
		return nil, httpclient.ServiceError(ProviderName, err)
	}

	payload := resp.Data
	output, _ := payload["output"].(map[string]any)
	taskStatus, _ := output["task_status"].(string)

	status := &transcription.TaskStatus{TaskID: taskID, Payload: payload}
	switch taskStatus {
	case taskSucceeded:
		status.State = transcription.StateSucceeded
	case taskFailed:
		status.State = transcription.StateFailed
		status.Message, _ = output["message"].(string)
	default:
		status.State = transcription.StatePending
	}
	p.log.WithContext(ctx).Debug("task polled", logger.Fields(
		logger.FieldTaskID, taskID, logger.FieldStatus, taskStatus))
	return status, nil
}

// Fetch returns the transcript. When the task result carries a
// transcription_url it is downloaded; otherwise the poll payload itself is
// the transcript.
func (p *Provider) Fetch(ctx context.Context, status *transcription.TaskStatus) (map[string]any, error) {
	if status == nil {
		return nil, apperrors.MissingField("status")
	}
	resultURL := transcriptionURL(status.Payload)
	if resultURL == "" {
		return status.Payload, nil
	}

	resp, err := p.result.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: resultURL, Anonymous: true})
	if err != nil {
		return nil, httpclient.ServiceError(ProviderName, err)
	}
	var doc map[string]any
	if err := resp.JSON(&doc); err != nil {
		return nil, apperrors.ExternalServiceError(ProviderName, fmt.Errorf("decode transcription result: %w", err))
	}
	return doc, nil
}

func transcriptionURL(payload map[string]any) string {
	output, _ := payload["output"].(map[string]any)
	result, _ := output["result"].(map[string]any)
	u, _ := result["transcription_url"].(string)
	return u
}
