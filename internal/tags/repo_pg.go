package tags

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateOrGet inserts a tag, or returns the existing one when the name is
// already taken. The upsert keeps the original color on conflict.
func (r *PGRepo) CreateOrGet(ctx context.Context, name, color string) (Tag, error) {
	const query = `
INSERT INTO tags (id, name, color)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, color`

	var tag Tag
	err := r.DB.QueryRowContext(ctx, query, uuid.NewString(), name, color).
		Scan(&tag.ID, &tag.Name, &tag.Color)
	if err != nil {
		return Tag{}, err
	}
	return tag, nil
}

func (r *PGRepo) GetByID(ctx context.Context, tagID string) (Tag, error) {
	const query = `SELECT id, name, color FROM tags WHERE id = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, tagID))
}

func (r *PGRepo) GetByName(ctx context.Context, name string) (Tag, error) {
	const query = `SELECT id, name, color FROM tags WHERE name = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, name))
}

func (r *PGRepo) ListForDocument(ctx context.Context, documentID string) ([]Tag, error) {
	const query = `
SELECT t.id, t.name, t.color
FROM tags t
JOIN document_tags dt ON dt.tag_id = t.id
WHERE dt.document_id = $1
ORDER BY t.name`

	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Tag{}
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

// Attach records an association. Attaching twice leaves a single row.
func (r *PGRepo) Attach(ctx context.Context, documentID, tagID string) error {
	const query = `
INSERT INTO document_tags (document_id, tag_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	_, err := r.DB.ExecContext(ctx, query, documentID, tagID)
	return err
}

// Detach removes an association. Detaching an absent tag is a no-op.
func (r *PGRepo) Detach(ctx context.Context, documentID, tagID string) error {
	const query = `DELETE FROM document_tags WHERE document_id = $1 AND tag_id = $2`
	_, err := r.DB.ExecContext(ctx, query, documentID, tagID)
	return err
}

func (r *PGRepo) RemoveDocument(ctx context.Context, documentID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = $1`, documentID)
	return err
}

func (r *PGRepo) scanOne(row *sql.Row) (Tag, error) {
	var tag Tag
	if err := row.Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tag{}, ErrNotFound
		}
		return Tag{}, err
	}
	return tag, nil
}

var _ Repo = (*PGRepo)(nil)
