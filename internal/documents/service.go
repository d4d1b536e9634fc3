package documents

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"docvault-backend/internal/policy"
	"docvault-backend/internal/shared/apperr"
	"docvault-backend/internal/shared/pagination"
	"docvault-backend/internal/shared/storage/object"
	"docvault-backend/internal/shared/telemetry"
)

// recentWindow is the trailing period counted as "recent" in stats.
const recentWindow = 7 * 24 * time.Hour

// Service orchestrates the document lifecycle, enforcing the access policy
// before every targeted read or mutation.
type Service struct {
	Repo  Repo
	Store object.ObjectStore

	// OnRemove, when set, runs after a successful metadata delete so
	// dependent records follow the document the way the database
	// foreign keys cascade them.
	OnRemove func(ctx context.Context, documentID string) error
}

// NewService constructs a Service.
func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store}
}

// FileRef describes a blob already written to storage.
type FileRef struct {
	Filename     string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	StorageKey   string
}

// UpdatePatch is a partial document mutation; nil fields are left unchanged.
type UpdatePatch struct {
	Description *string
	Status      *Status
	Metadata    map[string]any
}

// Create records a new document owned by the actor. Status starts pending.
func (s *Service) Create(ctx context.Context, actor policy.Actor, ref FileRef, description string, metadata map[string]any) (Document, error) {
	if d := policy.Decide(actor, "", policy.OpDocumentCreate); !d.Allowed {
		return Document{}, fmt.Errorf("%w: %s", apperr.ErrForbidden, d.Reason)
	}
	if ref.Filename == "" || ref.StorageKey == "" {
		return Document{}, fmt.Errorf("%w: file is required", apperr.ErrInvalidInput)
	}
	if ref.SizeBytes < 0 {
		return Document{}, fmt.Errorf("%w: file size must be non-negative", apperr.ErrInvalidInput)
	}

	now := time.Now().UTC()
	doc := Document{
		ID:           uuid.NewString(),
		Filename:     ref.Filename,
		OriginalName: ref.OriginalName,
		MimeType:     ref.MimeType,
		SizeBytes:    ref.SizeBytes,
		StorageKey:   ref.StorageKey,
		Status:       StatusPending,
		Description:  description,
		Metadata:     metadata,
		UploadedBy:   actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// List returns a page of documents visible to the actor, newest first.
// Non-admin roles are implicitly narrowed to their own documents.
func (s *Service) List(ctx context.Context, actor policy.Actor, page, limit int, status Status) ([]Document, int, int, error) {
	filter := ListFilter{Status: status, Page: page, Limit: limit}
	if policy.OwnerScoped(actor.Role) {
		filter.OwnerID = actor.ID
	}
	docs, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, 0, 0, err
	}
	return docs, total, pagination.PageCount(total, limit), nil
}

// GetOne loads a document, enforcing the read gate.
func (s *Service) GetOne(ctx context.Context, actor policy.Actor, id string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if d := policy.Decide(actor, doc.UploadedBy, policy.OpDocumentRead); !d.Allowed {
		return Document{}, fmt.Errorf("%w: %s", apperr.ErrForbidden, d.Reason)
	}
	return doc, nil
}

// Update merges the patch into the document after the update gate. Any
// enumerated status value is accepted; the service does not enforce a
// transition graph.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id string, patch UpdatePatch) (Document, error) {
	doc, err := s.GetOne(ctx, actor, id)
	if err != nil {
		return Document{}, err
	}
	if d := policy.Decide(actor, doc.UploadedBy, policy.OpDocumentUpdate); !d.Allowed {
		return Document{}, fmt.Errorf("%w: %s", apperr.ErrForbidden, d.Reason)
	}

	if patch.Description != nil {
		doc.Description = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return Document{}, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidInput, *patch.Status)
		}
		doc.Status = *patch.Status
	}
	if patch.Metadata != nil {
		doc.Metadata = patch.Metadata
	}
	doc.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Remove deletes the blob best-effort, then the metadata record. A blob
// already absent from storage does not block the metadata deletion; neither
// does a storage error, which is logged and skipped. A crash between the two
// steps can orphan one side; that at-most-once gap is accepted.
func (s *Service) Remove(ctx context.Context, actor policy.Actor, id string) error {
	doc, err := s.GetOne(ctx, actor, id)
	if err != nil {
		return err
	}
	if d := policy.Decide(actor, doc.UploadedBy, policy.OpDocumentDelete); !d.Allowed {
		return fmt.Errorf("%w: %s", apperr.ErrForbidden, d.Reason)
	}

	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
		telemetry.Warn("document.blob_delete_failed", map[string]any{
			"document_id": doc.ID,
			"storage_key": doc.StorageKey,
			"error":       err.Error(),
		})
	}
	if err := s.Repo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if s.OnRemove != nil {
		if err := s.OnRemove(ctx, doc.ID); err != nil {
			telemetry.Warn("document.cleanup_failed", map[string]any{
				"document_id": doc.ID,
				"error":       err.Error(),
			})
		}
	}
	return nil
}

// Download opens the blob behind the same read gate as GetOne. A missing blob
// is NotFound, distinct from a missing metadata record.
func (s *Service) Download(ctx context.Context, actor policy.Actor, id string) (Document, io.ReadCloser, error) {
	doc, err := s.GetOne(ctx, actor, id)
	if err != nil {
		return Document{}, nil, err
	}

	exists, err := s.Store.Exists(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, err
	}
	if !exists {
		return Document{}, nil, fmt.Errorf("%w: file not found in storage", apperr.ErrNotFound)
	}

	reader, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, reader, nil
}

// GetStats aggregates over the actor's visible scope.
func (s *Service) GetStats(ctx context.Context, actor policy.Actor) (Stats, error) {
	ownerID := ""
	if policy.OwnerScoped(actor.Role) {
		ownerID = actor.ID
	}
	return s.Repo.Stats(ctx, ownerID, time.Now().UTC().Add(-recentWindow))
}
