// Package queue defines the background job contract between the API and the
// ingestion worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// IngestDocumentTask is scheduled each time an ingestion run is triggered.
const IngestDocumentTask = "document:ingest"

// IngestPayload identifies the ingestion process the worker should execute.
type IngestPayload struct {
	IngestionID string `json:"ingestion_id"`
}

// Enqueuer abstracts task submission so services can be tested without redis.
type Enqueuer interface {
	EnqueueIngest(ctx context.Context, payload IngestPayload) error
}

// AsynqEnqueuer submits tasks through an asynq client.
type AsynqEnqueuer struct {
	Client *asynq.Client
}

// NewAsynqEnqueuer constructs an AsynqEnqueuer.
func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{Client: client}
}

// EnqueueIngest enqueues an ingestion job with retries.
func (e *AsynqEnqueuer) EnqueueIngest(ctx context.Context, payload IngestPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(IngestDocumentTask, data)
	if _, err := e.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue ingest task: %w", err)
	}
	return nil
}

var _ Enqueuer = (*AsynqEnqueuer)(nil)
