package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docvault-backend/internal/shared/apperr"
	"docvault-backend/internal/shared/pagination"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, filename, original_name, mime_type, size_bytes, storage_key, status, description, metadata, uploaded_by, created_at, updated_at`

// Create inserts a new document record.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	metadata, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.Filename,
		doc.OriginalName,
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		string(doc.Status),
		nullableString(doc.Description),
		metadata,
		doc.UploadedBy,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID fetches a document by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, fmt.Errorf("%w: document not found", apperr.ErrNotFound)
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns a filtered page of documents ordered newest-first plus the
// total matching count.
func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Document, int, error) {
	where, args := filterClauses(filter.OwnerID, filter.Status)

	var total int
	countQuery := `SELECT count(*) FROM documents` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQuery := `SELECT ` + documentColumns + ` FROM documents` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, pagination.Offset(filter.Page, filter.Limit))

	rows, err := r.DB.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, doc)
	}
	return out, total, rows.Err()
}

// Update persists the mutable fields of a document record.
func (r *PGRepo) Update(ctx context.Context, doc Document) error {
	const query = `
UPDATE documents
SET status = $2, description = $3, metadata = $4, updated_at = $5
WHERE id = $1`
	metadata, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		string(doc.Status),
		nullableString(doc.Description),
		metadata,
		doc.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: document not found", apperr.ErrNotFound)
	}
	return nil
}

// Delete removes the metadata record.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: document not found", apperr.ErrNotFound)
	}
	return nil
}

// Stats aggregates counts, sizes, per-status counts, and recent uploads over
// the owner scope. An empty ownerID aggregates over all documents.
func (r *PGRepo) Stats(ctx context.Context, ownerID string, since time.Time) (Stats, error) {
	stats := Stats{ByStatus: map[Status]int{}}

	where := ""
	args := []any{}
	if ownerID != "" {
		where = ` WHERE uploaded_by = $1`
		args = append(args, ownerID)
	}

	totalsQuery := `SELECT count(*), COALESCE(SUM(size_bytes), 0) FROM documents` + where
	if err := r.DB.QueryRowContext(ctx, totalsQuery, args...).Scan(&stats.Total, &stats.TotalSize); err != nil {
		return Stats{}, err
	}

	recentQuery := fmt.Sprintf(`SELECT count(*) FROM documents%s%s created_at >= $%d`,
		where, whereOrAnd(where), len(args)+1)
	recentArgs := append(append([]any{}, args...), since)
	if err := r.DB.QueryRowContext(ctx, recentQuery, recentArgs...).Scan(&stats.RecentUploads); err != nil {
		return Stats{}, err
	}

	statusQuery := `SELECT status, count(*) FROM documents` + where + ` GROUP BY status`
	rows, err := r.DB.QueryContext(ctx, statusQuery, args...)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.ByStatus[Status(status)] = count
	}
	return stats, rows.Err()
}

func whereOrAnd(where string) string {
	if where == "" {
		return " WHERE"
	}
	return " AND"
}

func filterClauses(ownerID string, status Status) (string, []any) {
	clauses := ""
	args := []any{}
	if ownerID != "" {
		args = append(args, ownerID)
		clauses = fmt.Sprintf(" WHERE uploaded_by = $%d", len(args))
	}
	if status != "" {
		args = append(args, string(status))
		if clauses == "" {
			clauses = fmt.Sprintf(" WHERE status = $%d", len(args))
		} else {
			clauses += fmt.Sprintf(" AND status = $%d", len(args))
		}
	}
	return clauses, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var status string
	var description sql.NullString
	var metadata []byte
	if err := row.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.OriginalName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageKey,
		&status,
		&description,
		&metadata,
		&doc.UploadedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.Status = Status(status)
	if description.Valid {
		doc.Description = description.String
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return Document{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return doc, nil
}

func marshalMetadata(metadata map[string]any) (any, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return data, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
