package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const documentColumns = `
id, user_id, upload_date, storage_key, filename, raw_text, corrected_html,
status, status_detail, callback_token, callback_token_expires_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    upload_date,
    storage_key,
    filename,
    raw_text,
    corrected_html,
    status,
    status_detail,
    callback_token,
    callback_token_expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	status := doc.Status
	if status == "" {
		status = StatusProcessing
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.UploadDate,
		doc.StorageKey,
		doc.Filename,
		nullableString(doc.RawText),
		nullableString(doc.CorrectedHTML),
		status,
		nullableString(doc.StatusDetail),
		nullableString(doc.CallbackToken),
		nullableTime(doc.CallbackTokenExpiresAt),
	)
	return err
}

// GetByID fetches a document by id for an owner. Non-owned rows are absent.
func (r *PGRepo) GetByID(ctx context.Context, userID, docID string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1 AND id = $2
LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, userID, docID))
}

// GetAny fetches a document by id regardless of owner.
func (r *PGRepo) GetAny(ctx context.Context, docID string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, docID))
}

// ListByUser lists documents ordered newest-first with skip/limit paging.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, skip, limit int) ([]Document, error) {
	skip, limit = normalizePage(skip, limit)
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY upload_date DESC, id
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateContent applies a partial user edit and returns the updated row.
func (r *PGRepo) UpdateContent(ctx context.Context, userID, docID string, update ContentUpdate) (Document, error) {
	const query = `
UPDATE documents
SET corrected_html = COALESCE($1, corrected_html),
    filename = COALESCE($2, filename)
WHERE user_id = $3 AND id = $4`
	res, err := r.DB.ExecContext(ctx, query,
		update.CorrectedHTML,
		update.Filename,
		userID,
		docID,
	)
	if err != nil {
		return Document{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return Document{}, ErrNotFound
	}
	return r.GetByID(ctx, userID, docID)
}

// SetStatus records a lifecycle transition with optional diagnostic detail.
func (r *PGRepo) SetStatus(ctx context.Context, docID, status, detail string) error {
	const query = `
UPDATE documents
SET status = $1, status_detail = $2
WHERE id = $3`
	res, err := r.DB.ExecContext(ctx, query, status, nullableString(detail), docID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyCallback stores the pushed-back content and consumes the callback
// token. The token match is part of the UPDATE predicate, so concurrent
// callbacks with the same token apply at most once.
func (r *PGRepo) ApplyCallback(ctx context.Context, docID, token string, result CallbackResult) error {
	const query = `
UPDATE documents
SET raw_text = $1,
    corrected_html = $2,
    status = $3,
    status_detail = NULL,
    callback_token = NULL,
    callback_token_expires_at = NULL
WHERE id = $4 AND callback_token = $5`
	res, err := r.DB.ExecContext(ctx, query,
		result.RawText,
		result.CorrectedHTML,
		result.Status,
		docID,
		token,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document; tag associations and versions cascade.
func (r *PGRepo) Delete(ctx context.Context, userID, docID string) error {
	const query = `DELETE FROM documents WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, docID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 100 {
		limit = 100
	}
	return skip, limit
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row *sql.Row) (Document, error) {
	doc, err := scanDocumentRows(row)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func scanDocumentRows(row rowScanner) (Document, error) {
	var doc Document
	var rawText sql.NullString
	var correctedHTML sql.NullString
	var statusDetail sql.NullString
	var callbackToken sql.NullString
	var callbackExpires sql.NullTime
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.UploadDate,
		&doc.StorageKey,
		&doc.Filename,
		&rawText,
		&correctedHTML,
		&doc.Status,
		&statusDetail,
		&callbackToken,
		&callbackExpires,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if rawText.Valid {
		doc.RawText = rawText.String
	}
	if correctedHTML.Valid {
		doc.CorrectedHTML = correctedHTML.String
	}
	if statusDetail.Valid {
		doc.StatusDetail = statusDetail.String
	}
	if callbackToken.Valid {
		doc.CallbackToken = callbackToken.String
	}
	if callbackExpires.Valid {
		doc.CallbackTokenExpiresAt = callbackExpires.Time
	}
	return doc, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
