package documents

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"docvault-backend/internal/policy"
	"docvault-backend/internal/shared/apperr"
	"docvault-backend/internal/shared/storage/object"
	localstore "docvault-backend/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) (*Service, object.ObjectStore) {
	t.Helper()
	store := localstore.New(t.TempDir())
	return NewService(NewMemoryRepo(), store), store
}

func seedDocument(t *testing.T, svc *Service, store object.ObjectStore, owner policy.Actor, key, content string) Document {
	t.Helper()
	ctx := context.Background()
	size, mime, err := store.Save(ctx, key, strings.NewReader(content))
	if err != nil {
		t.Fatalf("save blob: %v", err)
	}
	doc, err := svc.Create(ctx, owner, FileRef{
		Filename:     key,
		OriginalName: key,
		MimeType:     mime,
		SizeBytes:    size,
		StorageKey:   key,
	}, "", nil)
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func TestCreateStartsPendingWithOwner(t *testing.T) {
	svc, store := newTestService(t)
	editor := policy.Actor{ID: "u-editor", Role: policy.RoleEditor}

	doc := seedDocument(t, svc, store, editor, "report.txt", "hello")
	if doc.Status != StatusPending {
		t.Fatalf("status = %q, want %q", doc.Status, StatusPending)
	}
	if doc.UploadedBy != editor.ID {
		t.Fatalf("uploadedBy = %q, want %q", doc.UploadedBy, editor.ID)
	}
}

func TestCreateRejectsEmptyRef(t *testing.T) {
	svc, _ := newTestService(t)
	editor := policy.Actor{ID: "u-editor", Role: policy.RoleEditor}

	_, err := svc.Create(context.Background(), editor, FileRef{}, "", nil)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetOneEnforcesReadGate(t *testing.T) {
	svc, store := newTestService(t)
	owner := policy.Actor{ID: "u-owner", Role: policy.RoleEditor}
	doc := seedDocument(t, svc, store, owner, "a.txt", "content")

	cases := []struct {
		name    string
		actor   policy.Actor
		allowed bool
	}{
		{"owner", owner, true},
		{"admin", policy.Actor{ID: "u-admin", Role: policy.RoleAdmin}, true},
		{"other editor", policy.Actor{ID: "u-other", Role: policy.RoleEditor}, true},
		{"other viewer", policy.Actor{ID: "u-viewer", Role: policy.RoleViewer}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetOne(context.Background(), tc.actor, doc.ID)
			if tc.allowed && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.allowed && !errors.Is(err, apperr.ErrForbidden) {
				t.Fatalf("err = %v, want ErrForbidden", err)
			}
		})
	}
}

func TestUpdateOwnershipRules(t *testing.T) {
	svc, store := newTestService(t)
	owner := policy.Actor{ID: "u-owner", Role: policy.RoleEditor}
	doc := seedDocument(t, svc, store, owner, "a.txt", "content")

	desc := "quarterly report"
	if _, err := svc.Update(context.Background(), owner, doc.ID, UpdatePatch{Description: &desc}); err != nil {
		t.Fatalf("owner update: %v", err)
	}

	other := policy.Actor{ID: "u-other", Role: policy.RoleEditor}
	_, err := svc.Update(context.Background(), other, doc.ID, UpdatePatch{Description: &desc})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("other editor update err = %v, want ErrForbidden", err)
	}

	admin := policy.Actor{ID: "u-admin", Role: policy.RoleAdmin}
	status := StatusCompleted
	updated, err := svc.Update(context.Background(), admin, doc.ID, UpdatePatch{Status: &status})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q", updated.Status, StatusCompleted)
	}
}

// Description and metadata must come back exactly as stored, through create,
// read, and a metadata-replacing update.
func TestDescriptionMetadataRoundTrip(t *testing.T) {
	svc, store := newTestService(t)
	owner := policy.Actor{ID: "u-owner", Role: policy.RoleEditor}
	ctx := context.Background()

	size, mime, err := store.Save(ctx, "report.txt", strings.NewReader("body"))
	if err != nil {
		t.Fatalf("save blob: %v", err)
	}
	metadata := map[string]any{"k": "v", "count": float64(3), "nested": map[string]any{"a": true}}
	doc, err := svc.Create(ctx, owner, FileRef{
		Filename:     "report.txt",
		OriginalName: "report.txt",
		MimeType:     mime,
		SizeBytes:    size,
		StorageKey:   "report.txt",
	}, "D", metadata)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.GetOne(ctx, owner, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "D" {
		t.Fatalf("description = %q, want %q", got.Description, "D")
	}
	if !reflect.DeepEqual(got.Metadata, metadata) {
		t.Fatalf("metadata = %#v, want %#v", got.Metadata, metadata)
	}

	// A patch without metadata leaves it untouched.
	desc := "renamed"
	got, err = svc.Update(ctx, owner, doc.ID, UpdatePatch{Description: &desc})
	if err != nil {
		t.Fatalf("update description: %v", err)
	}
	if !reflect.DeepEqual(got.Metadata, metadata) {
		t.Fatalf("metadata after description patch = %#v, want %#v", got.Metadata, metadata)
	}

	// A metadata patch replaces the map wholesale.
	replacement := map[string]any{"k": "v2"}
	got, err = svc.Update(ctx, owner, doc.ID, UpdatePatch{Metadata: replacement})
	if err != nil {
		t.Fatalf("update metadata: %v", err)
	}
	if !reflect.DeepEqual(got.Metadata, replacement) {
		t.Fatalf("metadata = %#v, want %#v", got.Metadata, replacement)
	}
	if got.Description != "renamed" {
		t.Fatalf("description = %q, want %q", got.Description, "renamed")
	}

	stored, err := svc.GetOne(ctx, owner, doc.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(stored.Metadata, replacement) {
		t.Fatalf("persisted metadata = %#v, want %#v", stored.Metadata, replacement)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc, store := newTestService(t)
	owner := policy.Actor{ID: "u-owner", Role: policy.RoleEditor}
	doc := seedDocument(t, svc, store, owner, "a.txt", "content")

	bad := Status("archived")
	_, err := svc.Update(context.Background(), owner, doc.ID, UpdatePatch{Status: &bad})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRemoveSurvivesMissingBlob(t *testing.T) {
	svc, store := newTestService(t)
	owner := policy.Actor{ID: "u-owner", Role: policy.RoleEditor}
	doc := seedDocument(t, svc, store, owner, "a.txt", "content")

	if err := store.Delete(context.Background(), doc.StorageKey); err != nil {
		t.Fatalf("delete blob: %v", err)
	}
	if err := svc.Remove(context.Background(), owner, doc.ID); err != nil {
		t.Fatalf("remove with missing blob: %v", err)
	}
	if _, err := svc.GetOne(context.Background(), owner, doc.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err after remove = %v, want ErrNotFound", err)
	}
}

func TestRemoveForbiddenForViewer(t *testing.T) {
	svc, store := newTestService(t)
	viewer := policy.Actor{ID: "u-viewer", Role: policy.RoleViewer}
	doc := seedDocument(t, svc, store, viewer, "mine.txt", "content")

	err := svc.Remove(context.Background(), viewer, doc.ID)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestDownloadDistinguishesMissingBlob(t *testing.T) {
	svc, store := newTestService(t)
	owner := policy.Actor{ID: "u-owner", Role: policy.RoleEditor}
	doc := seedDocument(t, svc, store, owner, "a.txt", "payload")

	got, reader, err := svc.Download(context.Background(), owner, doc.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer reader.Close()
	if got.ID != doc.ID {
		t.Fatalf("doc id = %q, want %q", got.ID, doc.ID)
	}

	if err := store.Delete(context.Background(), doc.StorageKey); err != nil {
		t.Fatalf("delete blob: %v", err)
	}
	_, _, err = svc.Download(context.Background(), owner, doc.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListScopesNonAdminRoles(t *testing.T) {
	svc, store := newTestService(t)
	owner := policy.Actor{ID: "u-owner", Role: policy.RoleEditor}
	other := policy.Actor{ID: "u-other", Role: policy.RoleEditor}
	seedDocument(t, svc, store, owner, "one.txt", "1")
	seedDocument(t, svc, store, owner, "two.txt", "2")
	seedDocument(t, svc, store, other, "three.txt", "3")

	admin := policy.Actor{ID: "u-admin", Role: policy.RoleAdmin}
	_, total, pages, err := svc.List(context.Background(), admin, 1, 10, "")
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if total != 3 || pages != 1 {
		t.Fatalf("admin list total=%d pages=%d, want 3/1", total, pages)
	}

	docs, total, _, err := svc.List(context.Background(), owner, 1, 10, "")
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if total != 2 {
		t.Fatalf("owner total = %d, want 2", total)
	}
	for _, doc := range docs {
		if doc.UploadedBy != owner.ID {
			t.Fatalf("leaked foreign document %q", doc.ID)
		}
	}
}

func TestStatsEmptyScope(t *testing.T) {
	svc, _ := newTestService(t)
	viewer := policy.Actor{ID: "u-nobody", Role: policy.RoleViewer}

	stats, err := svc.GetStats(context.Background(), viewer)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 0 || stats.TotalSize != 0 || stats.RecentUploads != 0 {
		t.Fatalf("stats = %+v, want zeros", stats)
	}
	if stats.ByStatus == nil {
		t.Fatalf("ByStatus is nil, want empty map")
	}
}

func TestStatsAggregatesOwnerScope(t *testing.T) {
	svc, store := newTestService(t)
	owner := policy.Actor{ID: "u-owner", Role: policy.RoleViewer}
	other := policy.Actor{ID: "u-other", Role: policy.RoleEditor}
	seedDocument(t, svc, store, owner, "one.txt", "12345")
	seedDocument(t, svc, store, other, "two.txt", "abc")

	stats, err := svc.GetStats(context.Background(), owner)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("total = %d, want 1", stats.Total)
	}
	if stats.TotalSize != 5 {
		t.Fatalf("totalSize = %d, want 5", stats.TotalSize)
	}
	if stats.ByStatus[StatusPending] != 1 {
		t.Fatalf("pending count = %d, want 1", stats.ByStatus[StatusPending])
	}
	if stats.RecentUploads != 1 {
		t.Fatalf("recentUploads = %d, want 1", stats.RecentUploads)
	}
}
