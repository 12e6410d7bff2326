package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kbukum/longscribe/config"
	"github.com/kbukum/longscribe/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"gated", ErrAwaitingConfirmation, ExitAwaitingConfirmation},
		{"wrapped gate", fmt.Errorf("rewrite: %w", ErrAwaitingConfirmation), ExitAwaitingConfirmation},
		{"app error", errors.EmptyTranscript(), ExitFailure},
		{"plain error", stderrors.New("boom"), ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestPipelineFlags_ApplyOnlyChanged(t *testing.T) {
	var pf pipelineFlags
	cmd := &cobra.Command{Use: "test"}
	pf.register(cmd)
	if err := cmd.ParseFlags([]string{"--segments", "3", "--model", "gpt-test", "--derive", "ic_qa.md,wechat_article.md"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Pipeline.SegmentMinutes = 30
	cfg.Output.Dir = "from-config"

	pf.apply(cmd.Flags().Changed, cfg)

	if cfg.Pipeline.Segments != 3 {
		t.Errorf("expected segments 3, got %d", cfg.Pipeline.Segments)
	}
	if cfg.OpenAI.Model != "gpt-test" {
		t.Errorf("expected openai model override, got %q", cfg.OpenAI.Model)
	}
	if len(cfg.Output.Derive) != 2 || cfg.Output.Derive[1] != "wechat_article.md" {
		t.Errorf("unexpected derive %v", cfg.Output.Derive)
	}
	if cfg.Pipeline.SegmentMinutes != 30 {
		t.Errorf("unset flag must keep config value, got %v", cfg.Pipeline.SegmentMinutes)
	}
	if cfg.Output.Dir != "from-config" {
		t.Errorf("unset flag must keep config value, got %q", cfg.Output.Dir)
	}
}

func TestPipelineFlags_ModelFollowsGenerator(t *testing.T) {
	var pf pipelineFlags
	cmd := &cobra.Command{Use: "test"}
	pf.register(cmd)
	if err := cmd.ParseFlags([]string{"--generator", "gemini", "--model", "gemini-test"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	openaiModel := cfg.OpenAI.Model
	pf.apply(cmd.Flags().Changed, cfg)

	if cfg.Generator != config.GeneratorGemini || cfg.Gemini.Model != "gemini-test" {
		t.Errorf("unexpected generator config %q %q", cfg.Generator, cfg.Gemini.Model)
	}
	if cfg.OpenAI.Model != openaiModel {
		t.Errorf("openai model must not change, got %q", cfg.OpenAI.Model)
	}
}

// fakeResponses serves the OpenAI Responses endpoint with a fixed body.
func fakeResponses(t *testing.T, output string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := json.Marshal(map[string]any{"output_text": output})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// writeFixtures writes a config pointing at srv and a saved transcript.
func writeFixtures(t *testing.T, srvURL string) (cfgPath, transcriptPath, outDir string) {
	t.Helper()
	dir := t.TempDir()
	outDir = filepath.Join(dir, "out")
	cfgPath = filepath.Join(dir, "longscribe.yaml")
	yaml := fmt.Sprintf(`logging:
  level: error
openai:
  base_url: %s/v1
  api_key: test-key
pipeline:
  segments: 1
output:
  dir: %s
  prompt_dir: %s
`, srvURL, outDir, filepath.Join(dir, "no-prompts"))
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	transcriptPath = filepath.Join(dir, "transcription.json")
	if err := os.WriteFile(transcriptPath, []byte(`{"output":{"text":"大家好，今天聊一聊 Kubernetes。"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, transcriptPath, outDir
}

func execRoot(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(&Dependencies{Out: &out, Err: &errOut})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRewriteCmd_Completes(t *testing.T) {
	srv, calls := fakeResponses(t, `{"title":"技术分享","segment_text":"大家好。","segment_summary":"开场","tail_sentences":"大家好。","needs_confirmation":false}`)
	cfgPath, transcriptPath, outDir := writeFixtures(t, srv.URL)

	out, _, err := execRoot("rewrite", "--config", cfgPath, "--transcript", transcriptPath, "--speaker-map", `{"spk_0":"主持人"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ExitCode(err) != ExitOK {
		t.Errorf("expected exit 0")
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("expected one generation call, got %d", *calls)
	}

	final, err := os.ReadFile(filepath.Join(outDir, "final_package.md"))
	if err != nil {
		t.Fatalf("final package missing: %v", err)
	}
	if string(final) != "# 技术分享\n\n大家好。\n" {
		t.Errorf("unexpected final package %q", final)
	}
	if !strings.Contains(out, "Output saved") {
		t.Errorf("expected completion report, got %q", out)
	}
}

func TestRewriteCmd_AwaitsConfirmation(t *testing.T) {
	srv, _ := fakeResponses(t, `{"title":"技术分享","segment_text":"大家好。","needs_confirmation":true,"speaker_map_draft":{"spk_0":"主持人?"},"confirm_question":"谁是主持人？"}`)
	cfgPath, transcriptPath, outDir := writeFixtures(t, srv.URL)

	out, _, err := execRoot("rewrite", "--config", cfgPath, "--transcript", transcriptPath)
	if !stderrors.Is(err, ErrAwaitingConfirmation) {
		t.Fatalf("expected ErrAwaitingConfirmation, got %v", err)
	}
	if ExitCode(err) != ExitAwaitingConfirmation {
		t.Errorf("expected exit 2")
	}
	if _, err := os.Stat(filepath.Join(outDir, "speaker_map_draft.json")); err != nil {
		t.Errorf("draft missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "final_package.md")); !os.IsNotExist(err) {
		t.Errorf("final package must not exist while gated, stat err %v", err)
	}
	if !strings.Contains(out, "谁是主持人？") || !strings.Contains(out, "--speaker-map") {
		t.Errorf("expected question and resume hint, got %q", out)
	}
}

func TestRewriteCmd_RequiresTranscript(t *testing.T) {
	_, _, err := execRoot("rewrite")
	if !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
}

func TestRunCmd_RequiresOneAudioSource(t *testing.T) {
	tests := [][]string{
		{"run"},
		{"run", "--audio-url", "https://example.com/a.mp3", "--audio-file", "a.mp3"},
	}
	for _, args := range tests {
		_, _, err := execRoot(args...)
		if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%v: expected INVALID_INPUT, got %v", args, err)
		}
	}
}

func TestPromptRender(t *testing.T) {
	cfgPath, _, _ := writeFixtures(t, "http://127.0.0.1:0")

	out, errOut, err := execRoot("prompt", "render", "ic_qa.md", "--config", cfgPath, "--var", "transcript_text=整理稿正文")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "整理稿正文") || strings.Contains(out, "{{transcript_text}}") {
		t.Errorf("placeholder not rendered: %q", out)
	}
	if !strings.Contains(errOut, "glossary_terms is not set") {
		t.Errorf("expected warning for unset placeholder, got %q", errOut)
	}
}

func TestPromptList(t *testing.T) {
	cfgPath, _, _ := writeFixtures(t, "http://127.0.0.1:0")

	out, _, err := execRoot("prompt", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"segment_context_loop.md", "ic_qa.md", "wechat_article.md"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %s in %q", name, out)
		}
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	out, _, err := execRoot("version", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if info["version"] == "" || info["go_version"] == "" {
		t.Errorf("unexpected version info %v", info)
	}
}
