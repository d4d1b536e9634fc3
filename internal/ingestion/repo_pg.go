package ingestion

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"docvault-backend/internal/shared/apperr"
	"docvault-backend/internal/shared/pagination"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const processColumns = `id, document_id, status, triggered_by, started_at, completed_at, error_message, processing_result, created_at, updated_at`

// Create inserts a new ingestion process record.
func (r *PGRepo) Create(ctx context.Context, proc Process) error {
	const query = `
INSERT INTO ingestion_processes (` + processColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	result, err := marshalResult(proc.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		proc.ID,
		proc.DocumentID,
		string(proc.Status),
		proc.TriggeredBy,
		proc.StartedAt,
		proc.CompletedAt,
		nullableText(proc.ErrMessage),
		result,
		proc.CreatedAt,
		proc.UpdatedAt,
	)
	return err
}

// GetByID fetches a process by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Process, error) {
	const query = `
SELECT ` + processColumns + `
FROM ingestion_processes
WHERE id = $1
LIMIT 1`
	proc, err := scanProcess(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Process{}, fmt.Errorf("%w: ingestion process not found", apperr.ErrNotFound)
		}
		return Process{}, err
	}
	return proc, nil
}

// List returns a filtered page of processes ordered newest-first plus the
// total matching count.
func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Process, int, error) {
	where, args := processFilterClauses(filter.TriggeredBy, filter.Status)

	var total int
	countQuery := `SELECT count(*) FROM ingestion_processes` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQuery := `SELECT ` + processColumns + ` FROM ingestion_processes` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, pagination.Offset(filter.Page, filter.Limit))

	rows, err := r.DB.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Process, 0)
	for rows.Next() {
		proc, err := scanProcess(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, proc)
	}
	return out, total, rows.Err()
}

// Update persists the mutable fields of a process record.
func (r *PGRepo) Update(ctx context.Context, proc Process) error {
	const query = `
UPDATE ingestion_processes
SET status = $2, started_at = $3, completed_at = $4, error_message = $5, processing_result = $6, updated_at = $7
WHERE id = $1`
	result, err := marshalResult(proc.Result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		proc.ID,
		string(proc.Status),
		proc.StartedAt,
		proc.CompletedAt,
		nullableText(proc.ErrMessage),
		result,
		proc.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: ingestion process not found", apperr.ErrNotFound)
	}
	return nil
}

// DeleteByDocument removes every run for a document. The foreign key already
// cascades this when the document row is deleted; the explicit statement
// keeps the repo contract uniform across implementations.
func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM ingestion_processes WHERE document_id = $1`, documentID)
	return err
}

func processFilterClauses(triggeredBy string, status Status) (string, []any) {
	clauses := ""
	args := []any{}
	if triggeredBy != "" {
		args = append(args, triggeredBy)
		clauses = fmt.Sprintf(" WHERE triggered_by = $%d", len(args))
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

func scanProcess(row rowScanner) (Process, error) {
	var proc Process
	var status string
	var errMessage sql.NullString
	var result []byte
	if err := row.Scan(
		&proc.ID,
		&proc.DocumentID,
		&status,
		&proc.TriggeredBy,
		&proc.StartedAt,
		&proc.CompletedAt,
		&errMessage,
		&result,
		&proc.CreatedAt,
		&proc.UpdatedAt,
	); err != nil {
		return Process{}, err
	}
	proc.Status = Status(status)
	if errMessage.Valid {
		proc.ErrMessage = errMessage.String
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &proc.Result); err != nil {
			return Process{}, fmt.Errorf("decode processing result: %w", err)
		}
	}
	return proc, nil
}

func marshalResult(result map[string]any) (any, error) {
	if result == nil {
		return nil, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode processing result: %w", err)
	}
	return data, nil
}

func nullableText(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
