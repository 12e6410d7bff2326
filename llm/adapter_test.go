package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/kbukum/longscribe/errors"
)

type mockDialect struct {
	name string
	path string
}

func (m *mockDialect) Name() string     { return m.name }
func (m *mockDialect) Endpoint() string { return m.path }

func (m *mockDialect) Encode(req CompletionRequest) (any, error) {
	return map[string]any{"model": req.Model, "prompt": req.Prompt(), "temperature": req.Temperature}, nil
}

func (m *mockDialect) Decode(body []byte) (CompletionResponse, error) {
	var resp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return CompletionResponse{}, err
	}
	return CompletionResponse{Content: resp.Text}, nil
}

func TestAdapter_Execute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("expected bearer auth, got %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		var got map[string]any
		_ = json.Unmarshal(body, &got)
		if got["model"] != "default-model" || got["prompt"] != "hello" || got["temperature"] != 0.2 {
			t.Errorf("unexpected request body %v", got)
		}
		_, _ = w.Write([]byte(`{"text":"hi there"}`))
	}))
	defer srv.Close()

	a, err := NewWithDialect(&mockDialect{name: "mock", path: "/chat"}, Config{
		BaseURL:     srv.URL + "/v1",
		APIKey:      "k",
		Model:       "default-model",
		Temperature: Float(0.2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name() != "mock" {
		t.Errorf("expected name mock, got %q", a.Name())
	}
	if !a.IsAvailable(context.Background()) {
		t.Error("expected available")
	}

	text, err := NewTextGenerator(a).Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hi there" {
		t.Errorf("expected 'hi there', got %q", text)
	}
}

func TestAdapter_Execute_HTTPErrorIsExternalService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{name: "mock", path: "/chat"}, Config{BaseURL: srv.URL})
	_, err := a.Execute(context.Background(), CompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	if !apperrors.HasCode(err, apperrors.ErrCodeExternalService) {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
}

func TestNew_UnknownDialect(t *testing.T) {
	if _, err := New(Config{Dialect: "nope"}); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestNewWithDialect_Nil(t *testing.T) {
	if _, err := NewWithDialect(nil, Config{}); err != ErrNoDialect {
		t.Fatalf("expected ErrNoDialect, got %v", err)
	}
}

func TestRegisterDialect(t *testing.T) {
	RegisterDialect("mock-registered", &mockDialect{name: "mock-registered"})
	d, err := LookupDialect("mock-registered")
	if err != nil || d.Name() != "mock-registered" {
		t.Fatalf("expected registered dialect, got %v, %v", d, err)
	}
	if _, err := LookupDialect("missing"); err == nil {
		t.Error("expected error for unregistered dialect")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{Dialect: "openai"}
	cfg.ApplyDefaults()
	if cfg.Timeout == 0 || cfg.Name != "openai" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestCompletionRequest_Prompt(t *testing.T) {
	req := CompletionRequest{
		SystemPrompt: "sys",
		Messages:     []Message{{Role: "user", Content: "a"}, {Role: "user", Content: "b"}},
	}
	if got := req.Prompt(); got != "sys\n\na\n\nb" {
		t.Errorf("unexpected prompt %q", got)
	}
}
