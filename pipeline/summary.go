package pipeline

import (
	"time"

	"github.com/kbukum/longscribe/rewrite"
)

// Summary is persisted as run.json at the end of every run that reached the
// rewrite stage.
type Summary struct {
	RunID     string          `json:"run_id"`
	Outcome   rewrite.Outcome `json:"outcome"`
	Title     string          `json:"title"`
	Segments  int             `json:"segments"`
	Processed int             `json:"processed"`
	TaskID    string          `json:"task_id,omitempty"`
	// AudioURL is the caller's URL. A staged local file is recorded as
	// AudioFile and its signed URL is not kept.
	AudioURL  string `json:"audio_url,omitempty"`
	AudioFile string `json:"audio_file,omitempty"`
	// Stages maps a stage name to its wall time in milliseconds.
	Stages    map[string]int64 `json:"stages_ms"`
	Files     []string         `json:"files,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	// ConfirmQuestion is set when the run awaits speaker confirmation.
	ConfirmQuestion string `json:"confirm_question,omitempty"`
}

func (s *Summary) stage(name string, d time.Duration) {
	if s.Stages == nil {
		s.Stages = make(map[string]int64)
	}
	s.Stages[name] = d.Milliseconds()
}
