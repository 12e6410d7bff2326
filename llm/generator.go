package llm

import (
	"context"

	"github.com/kbukum/longscribe/provider"
)

// TextGenerator turns a prompt into raw model text. It adapts any
// RequestResponse provider, including middleware-wrapped ones.
type TextGenerator struct {
	p provider.RequestResponse[CompletionRequest, CompletionResponse]
}

// NewTextGenerator wraps p.
func NewTextGenerator(p provider.RequestResponse[CompletionRequest, CompletionResponse]) *TextGenerator {
	return &TextGenerator{p: p}
}

// Generate sends prompt as a single user message and returns the text.
func (g *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return Complete(ctx, g.p, "", prompt)
}

// Name returns the underlying provider name.
func (g *TextGenerator) Name() string { return g.p.Name() }
