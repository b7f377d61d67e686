package versions

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts the next snapshot for a document. Version numbers are
// assigned inside the insert so concurrent edits cannot collide.
func (r *PGRepo) Create(ctx context.Context, documentID, correctedHTML string) (DocumentVersion, error) {
	const query = `
INSERT INTO document_versions (id, document_id, version_number, corrected_html, created_at)
SELECT $1, $2, COALESCE(MAX(version_number), 0) + 1, $3, $4
FROM document_versions
WHERE document_id = $2
RETURNING version_number`

	v := DocumentVersion{
		ID:            uuid.NewString(),
		DocumentID:    documentID,
		CorrectedHTML: correctedHTML,
		CreatedAt:     time.Now().UTC(),
	}
	err := r.DB.QueryRowContext(ctx, query, v.ID, documentID, correctedHTML, v.CreatedAt).
		Scan(&v.VersionNumber)
	if err != nil {
		return DocumentVersion{}, err
	}
	return v, nil
}

// ListByDocument returns snapshots newest-first.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]DocumentVersion, error) {
	const query = `
SELECT id, document_id, version_number, corrected_html, created_at
FROM document_versions
WHERE document_id = $1
ORDER BY version_number DESC`

	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DocumentVersion{}
	for rows.Next() {
		var v DocumentVersion
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &v.CorrectedHTML, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM document_versions WHERE document_id = $1`, documentID)
	return err
}

var _ Repo = (*PGRepo)(nil)
