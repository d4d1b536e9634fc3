package documents

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"docvault-backend/internal/shared/apperr"
	"docvault-backend/internal/shared/pagination"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

// Create stores a new document record.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: document not found", apperr.ErrNotFound)
	}
	return doc, nil
}

// List returns a filtered page ordered newest-first plus the total count.
func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Document, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matched := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		if filter.OwnerID != "" && doc.UploadedBy != filter.OwnerID {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		matched = append(matched, doc)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := pagination.Offset(filter.Page, filter.Limit)
	if filter.Limit <= 0 || offset < 0 || offset >= total {
		return []Document{}, total, nil
	}
	end := offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// Update replaces the stored record.
func (r *MemoryRepo) Update(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[doc.ID]; !ok {
		return fmt.Errorf("%w: document not found", apperr.ErrNotFound)
	}
	r.data[doc.ID] = doc
	return nil
}

// Delete removes the metadata record.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return fmt.Errorf("%w: document not found", apperr.ErrNotFound)
	}
	delete(r.data, id)
	return nil
}

// Stats aggregates over the owner scope.
func (r *MemoryRepo) Stats(ctx context.Context, ownerID string, since time.Time) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{ByStatus: map[Status]int{}}
	for _, doc := range r.data {
		if ownerID != "" && doc.UploadedBy != ownerID {
			continue
		}
		stats.Total++
		stats.TotalSize += doc.SizeBytes
		stats.ByStatus[doc.Status]++
		if !doc.CreatedAt.Before(since) {
			stats.RecentUploads++
		}
	}
	return stats, nil
}

var _ Repo = (*MemoryRepo)(nil)
