package documents

import (
	"context"
	"time"
)

// ListFilter narrows a document query. An empty OwnerID means no ownership
// scoping; an empty Status means no status filter.
type ListFilter struct {
	OwnerID string
	Status  Status
	Page    int
	Limit   int
}

// Repo defines persistence operations for document metadata.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, filter ListFilter) ([]Document, int, error)
	Update(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	// Stats aggregates over the owner scope; recent uploads count documents
	// created at or after since.
	Stats(ctx context.Context, ownerID string, since time.Time) (Stats, error)
}
