package document

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/longscribe/artifact"
	"github.com/kbukum/longscribe/prompt"
	"github.com/kbukum/longscribe/rewrite"
	"github.com/kbukum/longscribe/storage/local"
)

func newWriter(t *testing.T) (*artifact.Writer, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := local.NewStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	return artifact.NewWriter(s), dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name  string
		title string
		texts []string
		want  string
	}{
		{"title and body", "会议纪要", []string{"一", "二"}, "# 会议纪要\n\n一\n\n二\n"},
		{"no title", "", []string{" 一 ", "二"}, "一 \n\n二\n"},
		{"title only", "T", nil, "# T\n"},
		{"nothing", "", nil, "\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Assemble(tc.title, tc.texts); got != tc.want {
				t.Errorf("Assemble() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAssembler_Write(t *testing.T) {
	w, dir := newWriter(t)
	if err := w.WriteText(context.Background(), artifact.UncertainTerms, "[partial]"); err != nil {
		t.Fatal(err)
	}

	report := &rewrite.Report{
		Title:          "标题",
		Texts:          []string{"第一段", "第二段"},
		UncertainTerms: []map[string]any{{"term": "GPT"}},
	}
	out, err := NewAssembler(w).Write(context.Background(), report)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if got := readFile(t, filepath.Join(dir, artifact.Body)); got != "第一段\n\n第二段\n" {
		t.Errorf("body.md = %q", got)
	}
	if got := readFile(t, filepath.Join(dir, artifact.FinalPackage)); got != "# 标题\n\n第一段\n\n第二段\n" {
		t.Errorf("final_package.md = %q", got)
	}
	var terms []map[string]any
	if err := json.Unmarshal([]byte(readFile(t, filepath.Join(dir, artifact.UncertainTerms))), &terms); err != nil || len(terms) != 1 {
		t.Errorf("uncertain_terms.json not replaced: %v %v", terms, err)
	}
	if len(out.Files) != 3 {
		t.Errorf("unexpected files %v", out.Files)
	}
}

func TestAssembler_NoTermsLeavesFileAlone(t *testing.T) {
	w, dir := newWriter(t)
	if _, err := NewAssembler(w).Write(context.Background(), &rewrite.Report{Texts: []string{"x"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, artifact.UncertainTerms)); !os.IsNotExist(err) {
		t.Error("uncertain_terms.json must only be written when non-empty")
	}
}

func TestAssembler_Docx(t *testing.T) {
	w, dir := newWriter(t)
	report := &rewrite.Report{Title: "标题", Texts: []string{"## 小节\n\n**重点** 内容\n- 条目"}}
	if _, err := NewAssembler(w, WithDocx(true)).Write(context.Background(), report); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, artifact.FinalDocx))
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("docx is not a zip archive: %v", err)
	}
	var xml string
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			b, _ := io.ReadAll(rc)
			_ = rc.Close()
			xml = string(b)
		}
	}
	for _, want := range []string{"标题", "小节", "重点", "内容", "• 条目"} {
		if !strings.Contains(xml, want) {
			t.Errorf("document.xml lacks %q", want)
		}
	}
	if strings.Contains(xml, "**") {
		t.Error("markdown markers must be stripped")
	}
}

type echoGenerator struct{ prompts []string }

func (g *echoGenerator) Generate(_ context.Context, p string) (string, error) {
	g.prompts = append(g.prompts, p)
	return "  generated: " + p + "  ", nil
}

type mapLoader map[string]string

func (m mapLoader) Load(_ context.Context, name string) (string, error) {
	return m[name], nil
}

func TestDeriver_Derive(t *testing.T) {
	w, dir := newWriter(t)
	gen := &echoGenerator{}
	loader := mapLoader{
		"ic_qa.md":           "QA {{transcript_text}} | {{glossary_terms}} | {{uncertain_terms}}",
		"wechat_article.txt": "WX {{transcript_text}}",
	}

	written, err := NewDeriver(gen, loader, prompt.Render, w, nil).Derive(context.Background(),
		[]string{"ic_qa.md", "wechat_article.txt"}, "正文", "A, B",
		[]map[string]any{{"term": "X"}, {"note": "no term"}, {"term": "Y"}})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if strings.Join(written, ",") != "ic_qa.md,wechat_article.md" {
		t.Errorf("written = %v", written)
	}
	if got := readFile(t, filepath.Join(dir, "ic_qa.md")); got != "generated: QA 正文 | A, B | X, Y\n" {
		t.Errorf("ic_qa.md = %q", got)
	}
	if len(gen.prompts) != 2 {
		t.Errorf("expected one call per template, got %d", len(gen.prompts))
	}
}

func TestDerivedName(t *testing.T) {
	for in, want := range map[string]string{
		"ic_qa.md":                  "ic_qa.md",
		"prompts/wechat_article.md": "wechat_article.md",
		"plain":                     "plain.md",
	} {
		if got := DerivedName(in); got != want {
			t.Errorf("DerivedName(%q) = %q, want %q", in, got, want)
		}
	}
}
