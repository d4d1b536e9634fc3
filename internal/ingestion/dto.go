package ingestion

import "time"

// ProcessResponse is the outward-facing representation of an ingestion run.
type ProcessResponse struct {
	ID           string         `json:"id"`
	DocumentID   string         `json:"documentId"`
	Status       Status         `json:"status"`
	TriggeredBy  string         `json:"triggeredBy"`
	StartedAt    *time.Time     `json:"startedAt,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	Result       map[string]any `json:"result,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func toResponse(proc Process) ProcessResponse {
	return ProcessResponse{
		ID:           proc.ID,
		DocumentID:   proc.DocumentID,
		Status:       proc.Status,
		TriggeredBy:  proc.TriggeredBy,
		StartedAt:    proc.StartedAt,
		CompletedAt:  proc.CompletedAt,
		ErrorMessage: proc.ErrMessage,
		Result:       proc.Result,
		CreatedAt:    proc.CreatedAt,
		UpdatedAt:    proc.UpdatedAt,
	}
}

// ListResponse is the paginated ingestion runs payload.
type ListResponse struct {
	Processes []ProcessResponse `json:"processes"`
	Total     int               `json:"total"`
	Pages     int               `json:"pages"`
}
