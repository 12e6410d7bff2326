// Package openai implements the llm.Dialect for the OpenAI Responses API.
//
// Importing the package registers the "openai" dialect:
//
//	import _ "github.com/kbukum/longscribe/llm/openai"
package openai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kbukum/longscribe/llm"
)

const (
	// DialectName is the registered dialect name.
	DialectName = "openai"

	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-5.2"
)

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

// Dialect maps completion requests onto POST /responses.
type Dialect struct{}

var _ llm.Dialect = (*Dialect)(nil)

// Name returns "openai".
func (d *Dialect) Name() string { return DialectName }

// Endpoint returns the Responses endpoint.
func (d *Dialect) Endpoint() string { return "/responses" }

type responsesRequest struct {
	Model           string   `json:"model"`
	Input           string   `json:"input"`
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"`
}

// Encode flattens the request into a single text input.
func (d *Dialect) Encode(req llm.CompletionRequest) (any, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("openai: model is required")
	}
	return responsesRequest{
		Model:           req.Model,
		Input:           req.Prompt(),
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}, nil
}

// Decode extracts the generated text. It prefers output_text, then
// the first string text in output[0].content, and otherwise returns the
// whole response as JSON so nothing the model produced is lost.
func (d *Dialect) Decode(body []byte) (llm.CompletionResponse, error) {
	var res map[string]any
	if err := json.Unmarshal(body, &res); err != nil {
		return llm.CompletionResponse{}, fmt.Errorf("openai: decode response: %w", err)
	}

	text, err := responseText(res)
	if err != nil {
		return llm.CompletionResponse{}, err
	}

	out := llm.CompletionResponse{Content: text}
	out.Model, _ = res["model"].(string)
	if usage, ok := res["usage"].(map[string]any); ok {
		out.Usage = llm.Usage{
			PromptTokens:     intValue(usage["input_tokens"]),
			CompletionTokens: intValue(usage["output_tokens"]),
			TotalTokens:      intValue(usage["total_tokens"]),
		}
	}
	return out, nil
}

func responseText(res map[string]any) (string, error) {
	if s, ok := res["output_text"].(string); ok {
		return s, nil
	}
	if output, ok := res["output"].([]any); ok && len(output) > 0 {
		if first, ok := output[0].(map[string]any); ok {
			if content, ok := first["content"].([]any); ok {
				for _, item := range content {
					if m, ok := item.(map[string]any); ok {
						if s, ok := m["text"].(string); ok {
							return s, nil
						}
					}
				}
			}
		}
	}
	return dump(res)
}

func dump(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("openai: encode response: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func intValue(v any) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}
