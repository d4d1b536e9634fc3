package ingestion

import "context"

// ListFilter narrows a process listing. Empty fields match everything.
type ListFilter struct {
	TriggeredBy string
	Status      Status
	Page        int
	Limit       int
}

// Repo persists ingestion processes.
type Repo interface {
	Create(ctx context.Context, proc Process) error
	GetByID(ctx context.Context, id string) (Process, error)
	List(ctx context.Context, filter ListFilter) ([]Process, int, error)
	Update(ctx context.Context, proc Process) error
	// DeleteByDocument removes every run recorded for a document. Runs
	// follow their document; deleting nothing is not an error.
	DeleteByDocument(ctx context.Context, documentID string) error
}
