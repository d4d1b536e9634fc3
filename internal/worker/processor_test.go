package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"docvault-backend/internal/documents"
	"docvault-backend/internal/ingestion"
	"docvault-backend/internal/queue"
	"docvault-backend/internal/shared/storage/object"
	localstore "docvault-backend/internal/shared/storage/object/local"
)

type fixture struct {
	processor  *Processor
	ingestions ingestion.Repo
	documents  documents.Repo
	store      object.ObjectStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ingestions := ingestion.NewMemoryRepo()
	docs := documents.NewMemoryRepo()
	store := localstore.New(t.TempDir())
	return &fixture{
		processor:  NewProcessor(ingestions, docs, store),
		ingestions: ingestions,
		documents:  docs,
		store:      store,
	}
}

func (f *fixture) seed(t *testing.T, content, mimeType string) (documents.Document, ingestion.Process) {
	t.Helper()
	ctx := context.Background()

	key := "blob.txt"
	if content != "" {
		if _, _, err := f.store.Save(ctx, key, strings.NewReader(content)); err != nil {
			t.Fatalf("save blob: %v", err)
		}
	}

	now := time.Now().UTC()
	doc := documents.Document{
		ID:         "doc-1",
		Filename:   key,
		MimeType:   mimeType,
		SizeBytes:  int64(len(content)),
		StorageKey: key,
		Status:     documents.StatusPending,
		UploadedBy: "u-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := f.documents.Create(ctx, doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	proc := ingestion.Process{
		ID:          "ing-1",
		DocumentID:  doc.ID,
		Status:      ingestion.StatusQueued,
		TriggeredBy: "u-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.ingestions.Create(ctx, proc); err != nil {
		t.Fatalf("create ingestion: %v", err)
	}
	return doc, proc
}

func ingestTask(t *testing.T, ingestionID string) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(queue.IngestPayload{IngestionID: ingestionID})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return asynq.NewTask(queue.IngestDocumentTask, data)
}

func TestHandleIngestTextDocument(t *testing.T) {
	f := newFixture(t)
	doc, proc := f.seed(t, "plain text body", "text/plain; charset=utf-8")
	ctx := context.Background()

	if err := f.processor.handleIngest(ctx, ingestTask(t, proc.ID)); err != nil {
		t.Fatalf("handleIngest: %v", err)
	}

	got, err := f.ingestions.GetByID(ctx, proc.ID)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if got.Status != ingestion.StatusCompleted {
		t.Fatalf("run status = %q, want completed", got.Status)
	}
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Fatalf("timestamps not set: started=%v completed=%v", got.StartedAt, got.CompletedAt)
	}
	if got.Result["text"] != "plain text body" {
		t.Fatalf("result text = %v, want original content", got.Result["text"])
	}

	updated, err := f.documents.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	if updated.Status != documents.StatusCompleted {
		t.Fatalf("document status = %q, want completed", updated.Status)
	}
}

func TestHandleIngestMissingBlobFails(t *testing.T) {
	f := newFixture(t)
	doc, proc := f.seed(t, "", "text/plain")
	ctx := context.Background()

	if err := f.processor.handleIngest(ctx, ingestTask(t, proc.ID)); err == nil {
		t.Fatalf("expected error for missing blob")
	}

	got, err := f.ingestions.GetByID(ctx, proc.ID)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if got.Status != ingestion.StatusFailed {
		t.Fatalf("run status = %q, want failed", got.Status)
	}
	if got.ErrMessage == "" {
		t.Fatalf("error message not recorded")
	}

	updated, err := f.documents.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	if updated.Status != documents.StatusFailed {
		t.Fatalf("document status = %q, want failed", updated.Status)
	}
}

func TestHandleIngestCompletedRunIsIdempotent(t *testing.T) {
	f := newFixture(t)
	_, proc := f.seed(t, "text", "text/plain")
	ctx := context.Background()

	if err := f.processor.handleIngest(ctx, ingestTask(t, proc.ID)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := f.processor.handleIngest(ctx, ingestTask(t, proc.ID)); err != nil {
		t.Fatalf("redelivered run: %v", err)
	}
}

func TestHandleIngestMalformedPayloadSkipsRetry(t *testing.T) {
	f := newFixture(t)
	task := asynq.NewTask(queue.IngestDocumentTask, []byte("not-json"))

	err := f.processor.handleIngest(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry", err)
	}
}

func TestCapTextPreservesShortInput(t *testing.T) {
	if got := capText("short"); got != "short" {
		t.Fatalf("capText = %q, want %q", got, "short")
	}
	long := strings.Repeat("§", textExtractionCap)
	capped := capText(long)
	if len(capped) > textExtractionCap {
		t.Fatalf("capped length = %d, want <= %d", len(capped), textExtractionCap)
	}
	if !strings.HasPrefix(long, capped) {
		t.Fatalf("capped text is not a prefix of the input")
	}
}
