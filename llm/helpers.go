package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kbukum/longscribe/provider"
)

// Complete sends optional system and user prompts and returns the text response.
func Complete(ctx context.Context, p provider.RequestResponse[CompletionRequest, CompletionResponse], system, user string) (string, error) {
	resp, err := p.Execute(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// ExtractObject recovers a JSON object from model output. It tries the whole
// text, then the span from the first "{" to the last "}". ok is false when
// neither parses to an object.
func ExtractObject(s string) (obj map[string]any, ok bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj != nil {
		return obj, true
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	obj = nil
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
