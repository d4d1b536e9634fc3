package documents

import "time"

// Status is the document workflow state. The service accepts any enumerated
// value in an update patch; transitions are driven externally by the
// ingestion pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Document is the metadata record for an uploaded file. UploadedBy is set at
// creation from the acting identity and never reassigned.
type Document struct {
	ID           string
	Filename     string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	StorageKey   string
	Status       Status
	Description  string
	Metadata     map[string]any
	UploadedBy   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Stats aggregates document metadata over a scope.
type Stats struct {
	Total         int            `json:"total"`
	ByStatus      map[Status]int `json:"byStatus"`
	TotalSize     int64          `json:"totalSize"`
	RecentUploads int            `json:"recentUploads"`
}
