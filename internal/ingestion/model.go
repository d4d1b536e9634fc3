package ingestion

import "time"

// Status describes where an ingestion run is in its lifecycle.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Process is one ingestion run for a document.
type Process struct {
	ID          string
	DocumentID  string
	Status      Status
	TriggeredBy string
	StartedAt   *time.Time
	CompletedAt *time.Time
	ErrMessage  string
	Result      map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
