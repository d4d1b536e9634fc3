package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename"`
	OriginalName string         `json:"originalName"`
	MimeType     string         `json:"mimeType"`
	SizeBytes    int64          `json:"sizeBytes"`
	Status       Status         `json:"status"`
	Description  string         `json:"description,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	UploadedBy   string         `json:"uploadedBy"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID,
		Filename:     doc.Filename,
		OriginalName: doc.OriginalName,
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		Status:       doc.Status,
		Description:  doc.Description,
		Metadata:     doc.Metadata,
		UploadedBy:   doc.UploadedBy,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

// ListResponse is the paginated documents payload.
type ListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
	Pages     int                `json:"pages"`
}

type updateDocumentRequest struct {
	Description *string        `json:"description" binding:"omitempty,max=500"`
	Status      *string        `json:"status" binding:"omitempty,oneof=pending processing completed failed"`
	Metadata    map[string]any `json:"metadata"`
}
