// Package gemini provides a text generation provider backed by the Gemini
// API through google.golang.org/genai.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	apperrors "github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/llm"
	"github.com/kbukum/longscribe/provider"
)

const (
	// ProviderName is the provider's name in logs and spans.
	ProviderName = "gemini"

	DefaultModel = "gemini-2.5-flash"
)

// Provider implements provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse].
type Provider struct {
	client      *genai.Client
	model       string
	temperature *float64
	maxTokens   int
}

var _ provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse] = (*Provider)(nil)

// New creates a Gemini provider. cfg.BaseURL overrides the API endpoint.
func New(ctx context.Context, cfg llm.Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.MissingCredential("GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Provider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Name returns "gemini".
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether a client was configured.
func (p *Provider) IsAvailable(_ context.Context) bool { return p.client != nil }

// Execute sends the flattened prompt and concatenates the text parts of the
// first candidate.
func (p *Provider) Execute(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	temp := req.Temperature
	if temp == nil {
		temp = p.temperature
	}

	gc := &genai.GenerateContentConfig{}
	if temp != nil {
		gc.Temperature = genai.Ptr(float32(*temp))
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.maxTokens
	}
	if maxTokens > 0 {
		gc.MaxOutputTokens = int32(maxTokens)
	}

	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt()), gc)
	if err != nil {
		return llm.CompletionResponse{}, apperrors.ExternalServiceError(ProviderName, err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return llm.CompletionResponse{}, apperrors.ExternalServiceError(ProviderName, fmt.Errorf("empty response"))
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	out := llm.CompletionResponse{Content: text.String(), Model: model}
	if u := result.UsageMetadata; u != nil {
		out.Usage = llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}
