package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/httpclient"
	"github.com/kbukum/longscribe/httpclient/rest"
)

// ErrNoDialect is returned when no dialect is supplied.
var ErrNoDialect = errors.New("llm: dialect is required")

// Adapter is a config-driven client that works with any HTTP provider via
// the Dialect pattern. It implements
// provider.RequestResponse[CompletionRequest, CompletionResponse].
type Adapter struct {
	rest      *rest.Client
	dialect   Dialect
	model     string
	temp      *float64
	maxTokens int
}

// New creates an adapter from config using the global dialect registry.
func New(cfg Config) (*Adapter, error) {
	cfg.ApplyDefaults()

	dialect, err := LookupDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return newAdapter(dialect, cfg)
}

// NewWithDialect creates an adapter with an explicit dialect instance.
func NewWithDialect(dialect Dialect, cfg Config) (*Adapter, error) {
	if dialect == nil {
		return nil, ErrNoDialect
	}
	cfg.ApplyDefaults()
	if cfg.Name == "" {
		cfg.Name = dialect.Name()
	}
	return newAdapter(dialect, cfg)
}

func newAdapter(dialect Dialect, cfg Config) (*Adapter, error) {
	restCfg := httpclient.Config{
		Name:    cfg.Name,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
		Token:   cfg.APIKey,
	}
	client, err := rest.New(restCfg)
	if err != nil {
		return nil, fmt.Errorf("llm: create rest client: %w", err)
	}

	return &Adapter{
		rest:      client,
		dialect:   dialect,
		model:     cfg.Model,
		temp:      cfg.Temperature,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.rest.Name() }

// IsAvailable reports whether the adapter is configured with a base URL.
func (a *Adapter) IsAvailable(_ context.Context) bool {
	return a.rest.BaseURL() != ""
}

// Execute sends a completion request and returns the full response.
// Transport failures are translated into the application error taxonomy.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	a.applyDefaults(&req)

	body, err := a.dialect.Encode(req)
	if err != nil {
		return CompletionResponse{}, apperrors.InvalidInput("completion", err.Error()).WithCause(err)
	}

	resp, err := rest.Post[json.RawMessage](ctx, a.rest, a.dialect.Endpoint(), body)
	if err != nil {
		return CompletionResponse{}, httpclient.ServiceError(a.Name(), err)
	}

	out, err := a.dialect.Decode(resp.Data)
	if err != nil {
		return CompletionResponse{}, apperrors.ExternalServiceError(a.Name(), err)
	}
	return out, nil
}

// Close releases the pooled connections of the underlying client.
func (a *Adapter) Close(ctx context.Context) error { return a.rest.Close(ctx) }

func (a *Adapter) applyDefaults(req *CompletionRequest) {
	if req.Model == "" {
		req.Model = a.model
	}
	if req.Temperature == nil {
		req.Temperature = a.temp
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.maxTokens
	}
}
