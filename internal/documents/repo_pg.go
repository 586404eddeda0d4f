package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const documentColumns = `id, user_id, file_name, storage_key, size_bytes, content_type, fingerprint, status, failure_reason, created_at, updated_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var reason sql.NullString
	if doc.FailureReason != "" {
		reason = sql.NullString{String: doc.FailureReason, Valid: true}
	}
	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.StorageKey,
		doc.SizeBytes,
		doc.ContentType,
		doc.Fingerprint,
		string(doc.Status),
		reason,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser returns a user's documents, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateStatus moves the document through its lifecycle.
func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status, failureReason string) error {
	const query = `
UPDATE documents SET status = $2, failure_reason = $3, updated_at = $4 WHERE id = $1`

	var reason sql.NullString
	if status == StatusFailed && failureReason != "" {
		reason = sql.NullString{String: failureReason, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, id, string(status), reason, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var status string
	var reason sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.StorageKey,
		&doc.SizeBytes,
		&doc.ContentType,
		&doc.Fingerprint,
		&status,
		&reason,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.Status = Status(status)
	if reason.Valid {
		doc.FailureReason = reason.String
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
