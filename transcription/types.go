package transcription

// State is the coarse state of an asynchronous transcription task.
type State string

const (
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Terminal reports whether no further polling is needed.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// SubmitRequest holds the parameters of a transcription task.
type SubmitRequest struct {
	// AudioURL must be reachable by the provider.
	AudioURL string `json:"audio_url"`
	// Language is an optional language hint such as "zh".
	Language string `json:"language,omitempty"`
}

// TaskStatus is the result of one poll.
type TaskStatus struct {
	TaskID string `json:"task_id"`
	State  State  `json:"state"`
	// Message is the provider's failure reason, if any.
	Message string `json:"message,omitempty"`
	// Payload is the decoded poll response.
	Payload map[string]any `json:"payload,omitempty"`
}

// Result is a completed transcription.
type Result struct {
	TaskID string
	// Transcript is the raw transcript document as returned by the provider.
	Transcript map[string]any
	// Attempts is the number of polls it took.
	Attempts int
}
