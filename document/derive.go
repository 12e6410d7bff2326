package document

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/longscribe/artifact"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/observability"
	"github.com/kbukum/longscribe/rewrite"
)

// TemplateLoader loads a prompt template by name.
type TemplateLoader interface {
	Load(ctx context.Context, name string) (string, error)
}

// Renderer substitutes template variables.
type Renderer func(template string, vars map[string]string) string

// Deriver turns the assembled body into derivative documents, one
// generation call per template.
type Deriver struct {
	gen    rewrite.Generator
	loader TemplateLoader
	render Renderer
	writer *artifact.Writer
	log    *logger.Logger
}

// NewDeriver creates a Deriver.
func NewDeriver(gen rewrite.Generator, loader TemplateLoader, render Renderer, w *artifact.Writer, log *logger.Logger) *Deriver {
	if log == nil {
		log = logger.Nop()
	}
	return &Deriver{gen: gen, loader: loader, render: render, writer: w, log: log.WithComponent("derive")}
}

// DerivedName maps a template name to its output, e.g. ic_qa.md to ic_qa.md
// and wechat_article.txt to wechat_article.md.
func DerivedName(template string) string {
	base := path.Base(template)
	return strings.TrimSuffix(base, path.Ext(base)) + ".md"
}

// TermList returns the "term" values of uncertain terms joined by ", ".
func TermList(terms []map[string]any) string {
	var names []string
	for _, t := range terms {
		if s, ok := t["term"].(string); ok && s != "" {
			names = append(names, s)
		}
	}
	return strings.Join(names, ", ")
}

// Derive renders each template with transcript_text, glossary_terms and
// uncertain_terms and writes the generated text. It returns the written
// names.
func (d *Deriver) Derive(ctx context.Context, templates []string, body, glossaryTerms string, terms []map[string]any) (written []string, err error) {
	ctx, stage := observability.StartStage(ctx, observability.SpanDerive,
		attribute.Int("derive.count", len(templates)))
	defer func() { stage.End(err) }()

	vars := map[string]string{
		"transcript_text": body,
		"glossary_terms":  glossaryTerms,
		"uncertain_terms": TermList(terms),
	}
	for _, name := range templates {
		tmpl, err := d.loader.Load(ctx, name)
		if err != nil {
			return written, err
		}
		text, err := d.gen.Generate(ctx, d.render(tmpl, vars))
		if err != nil {
			return written, fmt.Errorf("derive %s: %w", name, err)
		}
		out := DerivedName(name)
		if err := d.writer.WriteText(ctx, out, strings.TrimSpace(text)+"\n"); err != nil {
			return written, err
		}
		written = append(written, out)
		d.log.Info("derived document written", logger.Fields(logger.FieldPath, out, logger.FieldChars, len([]rune(text))))
	}
	return written, nil
}
