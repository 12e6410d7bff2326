// Package prompt loads prompt templates and renders {{name}} placeholders.
//
// Templates are read from a storage.Storage rooted at the prompt directory.
// A template missing there falls back to the copy embedded in the binary,
// so a fresh checkout works without a prompts/ directory.
package prompt

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/storage"
)

// Template names shipped with the binary.
const (
	SegmentTemplate = "segment_context_loop.md"
	ICQATemplate    = "ic_qa.md"
	WeChatTemplate  = "wechat_article.md"
)

//go:embed templates/*.md
var embedded embed.FS

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Store resolves template names to template text.
type Store struct {
	storage storage.Storage
	log     *logger.Logger
}

// NewStore creates a Store. A nil storage serves embedded templates only.
func NewStore(s storage.Storage, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{storage: s, log: log.WithComponent("prompt")}
}

// Load returns the trimmed template called name.
func (s *Store) Load(ctx context.Context, name string) (string, error) {
	if s.storage != nil {
		data, err := storage.ReadAll(ctx, s.storage, name)
		switch {
		case err == nil:
			s.log.Debug("loaded prompt", logger.Fields(logger.FieldPath, name, logger.FieldChars, len([]rune(string(data)))))
			return strings.TrimSpace(string(data)), nil
		case !storage.IsNotFound(err):
			return "", fmt.Errorf("prompt: load %s: %w", name, err)
		}
	}

	data, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("prompt: template %q not found", name)
	}
	if s.storage != nil {
		s.log.Warn("prompt not found in prompt dir, using built-in", logger.Fields(logger.FieldPath, name))
	}
	return strings.TrimSpace(string(data)), nil
}

// Builtin lists the embedded template names.
func Builtin() []string {
	entries, err := fs.ReadDir(embedded, "templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Render replaces every {{name}} in template with vars[name]. Unknown names
// render as the empty string.
func Render(template string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		return vars[placeholder.FindStringSubmatch(m)[1]]
	})
}

// Placeholders returns the distinct placeholder names in template, in order
// of first appearance.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
