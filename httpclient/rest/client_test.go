package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/httpclient"
)

type taskOutput struct {
	Output struct {
		TaskID string `json:"task_id"`
	} `json:"output"`
	Message string `json:"message"`
}

func TestPost_DecodesTypedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected JSON accept header, got %q", r.Header.Get("Accept"))
		}
		if r.Header.Get("X-DashScope-Async") != "enable" {
			t.Errorf("expected async header, got %q", r.Header.Get("X-DashScope-Async"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"output": map[string]any{"task_id": "t-1"}})
	}))
	defer srv.Close()

	c, err := New(httpclient.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := Post[taskOutput](context.Background(), c, "/submit", map[string]string{"a": "b"},
		WithHeader("X-DashScope-Async", "enable"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data.Output.TaskID != "t-1" {
		t.Errorf("expected t-1, got %q", resp.Data.Output.TaskID)
	}
}

func TestGet_ErrorStillDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("expected query param, got %q", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "no such task"})
	}))
	defer srv.Close()

	c, _ := New(httpclient.Config{BaseURL: srv.URL})
	resp, err := Get[taskOutput](context.Background(), c, "/tasks/x", WithQuery("page", "2"))
	if !httpclient.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if resp == nil || resp.Data.Message != "no such task" {
		t.Errorf("expected decoded error body, got %+v", resp)
	}
}

func TestGet_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, _ := New(httpclient.Config{Name: "dashscope", BaseURL: srv.URL})
	_, err := Get[map[string]any](context.Background(), c, "/")
	if !apperrors.HasCode(err, apperrors.ErrCodeExternalService) {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
}
