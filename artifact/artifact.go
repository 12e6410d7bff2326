// Package artifact persists run outputs as whole-object overwrites on one or
// more storage backends.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/storage"
)

// Artifact names written by a run.
const (
	Transcription   = "transcription.json"
	SpeakerMapDraft = "speaker_map_draft.json"
	UncertainTerms  = "uncertain_terms.json"
	TermCandidates  = "term_candidates.json"
	Body            = "body.md"
	FinalPackage    = "final_package.md"
	FinalDocx       = "final_package.docx"
	RunSummary      = "run.json"
)

// SegmentJSON returns the structured result name for 1-based segment i.
func SegmentJSON(i int) string { return fmt.Sprintf("segment_%02d.json", i) }

// SegmentText returns the plain text name for 1-based segment i.
func SegmentText(i int) string { return fmt.Sprintf("segment_%02d.md", i) }

type target struct {
	storage storage.Storage
	prefix  string
}

// Writer writes artifacts to a primary storage and any mirrors.
type Writer struct {
	targets []target
	log     *logger.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithMirror also writes every artifact to s under prefix.
func WithMirror(s storage.Storage, prefix string) Option {
	return func(w *Writer) {
		w.targets = append(w.targets, target{storage: s, prefix: prefix})
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(w *Writer) { w.log = l }
}

// NewWriter creates a Writer over primary.
func NewWriter(primary storage.Storage, opts ...Option) *Writer {
	w := &Writer{
		targets: []target{{storage: primary}},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("artifact")
	return w
}

// WriteBytes writes data to name on every target.
func (w *Writer) WriteBytes(ctx context.Context, name string, data []byte) error {
	for _, t := range w.targets {
		p := name
		if t.prefix != "" {
			p = path.Join(t.prefix, name)
		}
		if err := storage.WriteBytes(ctx, t.storage, p, data); err != nil {
			return errors.StorageError(p, err)
		}
	}
	w.log.Debug("wrote artifact", logger.Fields(logger.FieldPath, name, "bytes", len(data)))
	return nil
}

// WriteText writes s as UTF-8.
func (w *Writer) WriteText(ctx context.Context, name, s string) error {
	return w.WriteBytes(ctx, name, []byte(s))
}

// WriteJSON writes v as JSON indented by two spaces. Map keys are sorted and
// HTML characters are left unescaped.
func (w *Writer) WriteJSON(ctx context.Context, name string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Internal(fmt.Errorf("encode %s: %w", name, err))
	}
	return w.WriteBytes(ctx, name, data)
}

// MarshalJSON encodes v the way WriteJSON does, with a trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
