package tags

import "context"

// Repo persists tags and document-tag associations. Attach and Detach are
// idempotent; CreateOrGet returns the existing tag when the name is taken.
type Repo interface {
	CreateOrGet(ctx context.Context, name, color string) (Tag, error)
	GetByID(ctx context.Context, tagID string) (Tag, error)
	GetByName(ctx context.Context, name string) (Tag, error)
	ListForDocument(ctx context.Context, documentID string) ([]Tag, error)
	Attach(ctx context.Context, documentID, tagID string) error
	Detach(ctx context.Context, documentID, tagID string) error
	RemoveDocument(ctx context.Context, documentID string) error
}
