package versions

import "context"

// Repo persists document snapshots. Create assigns the next version number
// for the document.
type Repo interface {
	Create(ctx context.Context, documentID, correctedHTML string) (DocumentVersion, error)
	ListByDocument(ctx context.Context, documentID string) ([]DocumentVersion, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
