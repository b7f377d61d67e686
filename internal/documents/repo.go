package documents

import "context"

// ContentUpdate carries optional user-editable fields; nil fields are untouched.
type ContentUpdate struct {
	CorrectedHTML *string
	Filename      *string
}

// CallbackResult is the content pushed back by the processing engine.
type CallbackResult struct {
	RawText       string
	CorrectedHTML string
	Status        string
}

// Repo defines persistence operations for documents.
//
// GetByID is ownership-scoped: a document owned by someone else behaves as
// absent. GetAny is reserved for the dispatch and callback paths, which are
// keyed by document id alone.
//
// ApplyCallback consumes the callback token in the same write that stores
// the result: it only applies when the stored token still equals the given
// one, so a second callback carrying the already-spent token sees
// ErrNotFound.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, docID string) (Document, error)
	GetAny(ctx context.Context, docID string) (Document, error)
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]Document, error)
	UpdateContent(ctx context.Context, userID, docID string, update ContentUpdate) (Document, error)
	SetStatus(ctx context.Context, docID, status, detail string) error
	ApplyCallback(ctx context.Context, docID, token string, result CallbackResult) error
	Delete(ctx context.Context, userID, docID string) error
}
