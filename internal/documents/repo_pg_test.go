package documents

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestFilterClauses(t *testing.T) {
	cases := []struct {
		name    string
		ownerID string
		status  Status
		want    string
		argLen  int
	}{
		{"no filters", "", "", "", 0},
		{"owner only", "u-1", "", " WHERE uploaded_by = $1", 1},
		{"status only", "", StatusPending, " WHERE status = $1", 1},
		{"both", "u-1", StatusFailed, " WHERE uploaded_by = $1 AND status = $2", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			where, args := filterClauses(tc.ownerID, tc.status)
			if where != tc.want {
				t.Fatalf("where = %q, want %q", where, tc.want)
			}
			if len(args) != tc.argLen {
				t.Fatalf("args = %v, want %d values", args, tc.argLen)
			}
		})
	}
}

func TestMarshalMetadata(t *testing.T) {
	if out, err := marshalMetadata(nil); err != nil || out != nil {
		t.Fatalf("marshalMetadata(nil) = %v, %v, want nil, nil", out, err)
	}
	out, err := marshalMetadata(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("marshalMetadata: %v", err)
	}
	if string(out.([]byte)) != `{"k":"v"}` {
		t.Fatalf("marshalMetadata = %s", out)
	}
}

func TestPGRepoGetByIDScansMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM documents`).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "filename", "original_name", "mime_type", "size_bytes", "storage_key",
			"status", "description", "metadata", "uploaded_by", "created_at", "updated_at",
		}).AddRow(
			"doc-1", "a.txt", "a.txt", "text/plain", 4, "key/a.txt",
			"pending", "D", []byte(`{"k":"v","count":3}`), "u-1", now, now,
		))

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Description != "D" {
		t.Fatalf("description = %q, want D", doc.Description)
	}
	if doc.Metadata["k"] != "v" || doc.Metadata["count"] != float64(3) {
		t.Fatalf("metadata = %#v", doc.Metadata)
	}
}

func TestPGRepoStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	since := time.Now().UTC().Add(-7 * 24 * time.Hour)

	mock.ExpectQuery(`SELECT count\(\*\), COALESCE\(SUM\(size_bytes\), 0\) FROM documents`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(3, 4096))
	mock.ExpectQuery(`SELECT count\(\*\) FROM documents`).
		WithArgs("u-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT status, count\(\*\) FROM documents`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 1).
			AddRow("completed", 2))

	stats, err := repo.Stats(context.Background(), "u-1", since)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.TotalSize != 4096 || stats.RecentUploads != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ByStatus[StatusPending] != 1 || stats.ByStatus[StatusCompleted] != 2 {
		t.Fatalf("byStatus = %v", stats.ByStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
