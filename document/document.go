// Package document assembles rewritten segments into the final document and
// its derivatives.
package document

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/longscribe/artifact"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/observability"
	"github.com/kbukum/longscribe/rewrite"
)

// Body joins segment texts with a blank line and trims the result.
func Body(texts []string) string {
	return strings.TrimSpace(strings.Join(texts, "\n\n"))
}

// Assemble returns the final document: an optional "# title" heading, a
// blank line, then the body, ending in a single newline.
func Assemble(title string, texts []string) string {
	var parts []string
	if title != "" {
		parts = append(parts, "# "+title)
	}
	if body := Body(texts); body != "" {
		parts = append(parts, body)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n")) + "\n"
}

// Output describes what an Assembler wrote.
type Output struct {
	Body  string
	Final string
	Files []string
}

// Assembler persists the final document of a completed run.
type Assembler struct {
	writer *artifact.Writer
	docx   bool
	log    *logger.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithDocx also writes final_package.docx.
func WithDocx(enabled bool) AssemblerOption {
	return func(a *Assembler) { a.docx = enabled }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) AssemblerOption {
	return func(a *Assembler) { a.log = log }
}

// NewAssembler creates an Assembler writing through w.
func NewAssembler(w *artifact.Writer, opts ...AssemblerOption) *Assembler {
	a := &Assembler{writer: w, log: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithComponent("document")
	return a
}

// Write persists body.md, final_package.md and, when any were collected,
// uncertain_terms.json. The terms file replaces any partial copy left by a
// gated run.
func (a *Assembler) Write(ctx context.Context, report *rewrite.Report) (out *Output, err error) {
	ctx, stage := observability.StartStage(ctx, observability.SpanAssemble,
		attribute.Int(observability.AttrSegmentTotal, len(report.Texts)))
	defer func() { stage.End(err) }()

	out = &Output{
		Body:  Body(report.Texts),
		Final: Assemble(report.Title, report.Texts),
	}

	if err := a.write(ctx, out, artifact.Body, []byte(out.Body+"\n")); err != nil {
		return nil, err
	}
	if len(report.UncertainTerms) > 0 {
		if err := a.writer.WriteJSON(ctx, artifact.UncertainTerms, report.UncertainTerms); err != nil {
			return nil, err
		}
		out.Files = append(out.Files, artifact.UncertainTerms)
	}
	if err := a.write(ctx, out, artifact.FinalPackage, []byte(out.Final)); err != nil {
		return nil, err
	}

	if a.docx {
		data, err := Docx(report.Title, out.Body)
		if err != nil {
			return nil, err
		}
		if err := a.write(ctx, out, artifact.FinalDocx, data); err != nil {
			return nil, err
		}
	}

	a.log.Info("document assembled", logger.Fields(
		logger.FieldChars, len([]rune(out.Final)),
		"files", out.Files,
	))
	return out, nil
}

func (a *Assembler) write(ctx context.Context, out *Output, name string, data []byte) error {
	if err := a.writer.WriteBytes(ctx, name, data); err != nil {
		return err
	}
	out.Files = append(out.Files, name)
	return nil
}
