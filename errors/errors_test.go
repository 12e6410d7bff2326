package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out")
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	if New(ErrCodeTaskFailed, "failed").Retryable {
		t.Error("TASK_FAILED should not be retryable")
	}
}

func TestAppError_Error_WithCause(t *testing.T) {
	err := ExternalServiceError("openai", fmt.Errorf("HTTP 500"))
	msg := err.Error()
	if !strings.Contains(msg, "EXTERNAL_SERVICE_ERROR") {
		t.Errorf("expected code in message, got %q", msg)
	}
	if !strings.Contains(msg, "HTTP 500") {
		t.Errorf("expected cause in message, got %q", msg)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_InvalidInput_Details(t *testing.T) {
	err := InvalidInput("speaker_map", "must be a JSON object")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	if err.Details["field"] != "speaker_map" {
		t.Errorf("expected field=speaker_map, got %v", err.Details["field"])
	}
	if err.Retryable {
		t.Error("InvalidInput should not be retryable")
	}
}

func TestAppError_InvalidInput_NoField(t *testing.T) {
	err := InvalidInput("", "bad")
	if _, ok := err.Details["field"]; ok {
		t.Error("expected no field key when field is empty")
	}
}

func TestAppError_TaskFailed_DefaultReason(t *testing.T) {
	err := TaskFailed("dashscope", "t-1", "")
	if !strings.Contains(err.Message, "task failed") {
		t.Errorf("expected default reason, got %q", err.Message)
	}
	if err.Details["task_id"] != "t-1" {
		t.Errorf("expected task_id=t-1, got %v", err.Details["task_id"])
	}
}

func TestAppError_TimeoutDistinctFromTaskFailed(t *testing.T) {
	timeout := fmt.Errorf("transcribe: %w", Timeout("transcription polling"))
	failed := fmt.Errorf("transcribe: %w", TaskFailed("dashscope", "t-1", "bad audio"))

	if !HasCode(timeout, ErrCodeTimeout) || HasCode(timeout, ErrCodeTaskFailed) {
		t.Error("timeout must be classified as TIMEOUT only")
	}
	if !HasCode(failed, ErrCodeTaskFailed) || HasCode(failed, ErrCodeTimeout) {
		t.Error("task failure must be classified as TASK_FAILED only")
	}
}

func TestAppError_WithDetails_Merges(t *testing.T) {
	err := MissingCredential("OPENAI_API_KEY").WithDetails(map[string]any{"provider": "openai"})
	if err.Details["env"] != "OPENAI_API_KEY" || err.Details["provider"] != "openai" {
		t.Errorf("unexpected details: %v", err.Details)
	}
	err.WithDetail("hint", "set it in .env.local")
	if err.Details["hint"] != "set it in .env.local" {
		t.Errorf("WithDetail did not set key: %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", NoSegments())
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed")
	}
	if appErr.Code != ErrCodeNoSegments {
		t.Errorf("expected NO_SEGMENTS, got %s", appErr.Code)
	}
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error must not convert")
	}
	if IsAppError(nil) {
		t.Error("nil is not an AppError")
	}
}
