package transcription

import (
	"context"

	"github.com/kbukum/longscribe/provider"
)

// AsyncProvider is implemented by task-based transcription backends.
type AsyncProvider interface {
	provider.Provider

	// Submit starts a task and returns its id.
	Submit(ctx context.Context, req SubmitRequest) (string, error)

	// Poll returns the current state of a task. A transport or HTTP error is
	// returned as an error, never as a pending state.
	Poll(ctx context.Context, taskID string) (*TaskStatus, error)

	// Fetch returns the transcript document of a succeeded task.
	Fetch(ctx context.Context, status *TaskStatus) (map[string]any, error)
}
