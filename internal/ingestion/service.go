package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docvault-backend/internal/documents"
	"docvault-backend/internal/policy"
	"docvault-backend/internal/queue"
	"docvault-backend/internal/shared/apperr"
	"docvault-backend/internal/shared/pagination"
	"docvault-backend/internal/shared/telemetry"
)

// Service creates ingestion runs and exposes their status. Actual processing
// happens in the worker.
type Service struct {
	Repo      Repo
	Documents *documents.Service
	Enqueuer  queue.Enqueuer
}

// NewService constructs a Service. Enqueuer may be nil when no queue backend
// is configured; triggered runs then stay queued until a worker is attached.
func NewService(repo Repo, docs *documents.Service, enq queue.Enqueuer) *Service {
	return &Service{Repo: repo, Documents: docs, Enqueuer: enq}
}

// Trigger starts an ingestion run for a document the actor can read. The run
// is recorded as queued before the task is submitted, so a queue outage never
// loses the audit record.
func (s *Service) Trigger(ctx context.Context, actor policy.Actor, documentID string) (Process, error) {
	doc, err := s.Documents.GetOne(ctx, actor, documentID)
	if err != nil {
		return Process{}, err
	}

	now := time.Now().UTC()
	proc := Process{
		ID:          uuid.NewString(),
		DocumentID:  doc.ID,
		Status:      StatusQueued,
		TriggeredBy: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, proc); err != nil {
		return Process{}, err
	}

	if s.Enqueuer == nil {
		telemetry.Warn("ingestion.queue_unavailable", map[string]any{
			"ingestion_id": proc.ID,
			"document_id":  doc.ID,
		})
		return proc, nil
	}
	if err := s.Enqueuer.EnqueueIngest(ctx, queue.IngestPayload{IngestionID: proc.ID}); err != nil {
		telemetry.Error("ingestion.enqueue_failed", map[string]any{
			"ingestion_id": proc.ID,
			"document_id":  doc.ID,
			"error":        err.Error(),
		})
		return Process{}, fmt.Errorf("enqueue ingestion: %w", err)
	}
	return proc, nil
}

// List returns a page of runs visible to the actor, newest first. Non-admin
// roles see only runs they triggered.
func (s *Service) List(ctx context.Context, actor policy.Actor, page, limit int, status Status) ([]Process, int, int, error) {
	filter := ListFilter{Status: status, Page: page, Limit: limit}
	if actor.Role != policy.RoleAdmin {
		filter.TriggeredBy = actor.ID
	}
	procs, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, 0, 0, err
	}
	return procs, total, pagination.PageCount(total, limit), nil
}

// GetOne loads a run. Non-admin actors can only see runs they triggered.
func (s *Service) GetOne(ctx context.Context, actor policy.Actor, id string) (Process, error) {
	proc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Process{}, err
	}
	if actor.Role != policy.RoleAdmin && proc.TriggeredBy != actor.ID {
		return Process{}, fmt.Errorf("%w: not your ingestion process", apperr.ErrForbidden)
	}
	return proc, nil
}
