package ingestion

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"docvault-backend/internal/shared/apperr"
	"docvault-backend/internal/shared/pagination"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Process
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Process)}
}

// Create stores a new process record.
func (r *MemoryRepo) Create(ctx context.Context, proc Process) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[proc.ID] = proc
	return nil
}

// GetByID returns a process by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Process, error) {
	if err := ctx.Err(); err != nil {
		return Process{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	proc, ok := r.data[id]
	if !ok {
		return Process{}, fmt.Errorf("%w: ingestion process not found", apperr.ErrNotFound)
	}
	return proc, nil
}

// List returns a filtered page ordered newest-first plus the total count.
func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Process, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matched := make([]Process, 0, len(r.data))
	for _, proc := range r.data {
		if filter.TriggeredBy != "" && proc.TriggeredBy != filter.TriggeredBy {
			continue
		}
		if filter.Status != "" && proc.Status != filter.Status {
			continue
		}
		matched = append(matched, proc)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := pagination.Offset(filter.Page, filter.Limit)
	if filter.Limit <= 0 || offset < 0 || offset >= total {
		return []Process{}, total, nil
	}
	end := offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// Update replaces the stored record.
func (r *MemoryRepo) Update(ctx context.Context, proc Process) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[proc.ID]; !ok {
		return fmt.Errorf("%w: ingestion process not found", apperr.ErrNotFound)
	}
	r.data[proc.ID] = proc
	return nil
}

// DeleteByDocument removes every run for a document.
func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, proc := range r.data {
		if proc.DocumentID == documentID {
			delete(r.data, id)
		}
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
