// Package worker executes queued ingestion runs: it pulls the stored blob,
// extracts what it can, and writes the outcome back onto the run and its
// document.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hibiken/asynq"

	"docvault-backend/internal/documents"
	"docvault-backend/internal/ingestion"
	"docvault-backend/internal/queue"
	"docvault-backend/internal/shared/storage/object"
	"docvault-backend/internal/shared/telemetry"
)

// textExtractionCap bounds how much extracted text is kept on the result.
const textExtractionCap = 64 << 10 // 64 KiB

// Processor handles ingestion tasks.
type Processor struct {
	Ingestions ingestion.Repo
	Documents  documents.Repo
	Store      object.ObjectStore
}

// NewProcessor constructs a Processor.
func NewProcessor(ingestions ingestion.Repo, docs documents.Repo, store object.ObjectStore) *Processor {
	return &Processor{Ingestions: ingestions, Documents: docs, Store: store}
}

// Handler returns the task mux for an asynq server.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.IngestDocumentTask, p.handleIngest)
	return mux
}

func (p *Processor) handleIngest(ctx context.Context, task *asynq.Task) error {
	var payload queue.IngestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// A payload that cannot be decoded will never succeed on retry.
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	proc, err := p.Ingestions.GetByID(ctx, payload.IngestionID)
	if err != nil {
		return fmt.Errorf("load ingestion %s: %w", payload.IngestionID, err)
	}
	if proc.Status == ingestion.StatusCompleted {
		// Re-delivered task for a finished run.
		return nil
	}

	doc, err := p.Documents.GetByID(ctx, proc.DocumentID)
	if err != nil {
		p.fail(ctx, proc, doc, fmt.Sprintf("load document: %v", err))
		return fmt.Errorf("load document %s: %v: %w", proc.DocumentID, err, asynq.SkipRetry)
	}

	if err := p.markProcessing(ctx, proc, doc); err != nil {
		return err
	}
	// Reload so the completion update carries the processing timestamps.
	proc, err = p.Ingestions.GetByID(ctx, proc.ID)
	if err != nil {
		return fmt.Errorf("reload ingestion %s: %w", proc.ID, err)
	}

	result, err := p.process(ctx, doc)
	if err != nil {
		telemetry.Error("worker.ingest_failed", map[string]any{
			"ingestion_id": proc.ID,
			"document_id":  doc.ID,
			"error":        err.Error(),
		})
		p.fail(ctx, proc, doc, err.Error())
		return err
	}

	now := time.Now().UTC()
	proc.Status = ingestion.StatusCompleted
	proc.CompletedAt = &now
	proc.ErrMessage = ""
	proc.Result = result
	proc.UpdatedAt = now
	if err := p.Ingestions.Update(ctx, proc); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	p.setDocumentStatus(ctx, doc, documents.StatusCompleted)

	telemetry.Info("worker.ingest_completed", map[string]any{
		"ingestion_id": proc.ID,
		"document_id":  doc.ID,
	})
	return nil
}

// process reads the blob and builds the extraction result for the document's
// content type.
func (p *Processor) process(ctx context.Context, doc documents.Document) (map[string]any, error) {
	reader, err := p.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", doc.StorageKey, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", doc.StorageKey, err)
	}

	result := map[string]any{
		"sizeBytes":   len(data),
		"mimeType":    doc.MimeType,
		"processedAt": time.Now().UTC().Format(time.RFC3339),
	}

	switch {
	case strings.HasPrefix(doc.MimeType, "application/pdf"):
		text, pages, err := extractPDFText(data)
		if err != nil {
			return nil, err
		}
		result["pages"] = pages
		result["textLength"] = len(text)
		result["text"] = capText(text)
	case strings.HasPrefix(doc.MimeType, "text/"):
		text := string(data)
		result["textLength"] = len(text)
		result["text"] = capText(text)
	default:
		// Binary formats are stored as-is; only basic facts are recorded.
		result["textLength"] = 0
	}
	return result, nil
}

func (p *Processor) markProcessing(ctx context.Context, proc ingestion.Process, doc documents.Document) error {
	now := time.Now().UTC()
	proc.Status = ingestion.StatusProcessing
	proc.StartedAt = &now
	proc.UpdatedAt = now
	if err := p.Ingestions.Update(ctx, proc); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	p.setDocumentStatus(ctx, doc, documents.StatusProcessing)
	return nil
}

// fail records the failure on the run and mirrors it onto the document.
// Persistence errors here are logged; the task error drives the retry.
func (p *Processor) fail(ctx context.Context, proc ingestion.Process, doc documents.Document, message string) {
	now := time.Now().UTC()
	proc.Status = ingestion.StatusFailed
	proc.CompletedAt = &now
	proc.ErrMessage = message
	proc.UpdatedAt = now
	if err := p.Ingestions.Update(ctx, proc); err != nil {
		telemetry.Error("worker.mark_failed_error", map[string]any{
			"ingestion_id": proc.ID,
			"error":        err.Error(),
		})
	}
	if doc.ID != "" {
		p.setDocumentStatus(ctx, doc, documents.StatusFailed)
	}
}

func (p *Processor) setDocumentStatus(ctx context.Context, doc documents.Document, status documents.Status) {
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC()
	if err := p.Documents.Update(ctx, doc); err != nil {
		telemetry.Warn("worker.document_status_update_failed", map[string]any{
			"document_id": doc.ID,
			"status":      string(status),
			"error":       err.Error(),
		})
	}
}

func capText(text string) string {
	if len(text) <= textExtractionCap {
		return text
	}
	capped := text[:textExtractionCap]
	for !utf8.ValidString(capped) && len(capped) > 0 {
		capped = capped[:len(capped)-1]
	}
	return capped
}
