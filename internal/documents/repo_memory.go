package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used for tests and dev without Postgres.
type MemoryRepo struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]Document)}
}

func (r *MemoryRepo) Create(_ context.Context, doc Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.Status == "" {
		doc.Status = StatusProcessing
	}
	if doc.UploadDate.IsZero() {
		doc.UploadDate = time.Now().UTC()
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, userID, docID string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[docID]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) GetAny(_ context.Context, docID string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[docID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) ListByUser(_ context.Context, userID string, skip, limit int) ([]Document, error) {
	skip, limit = normalizePage(skip, limit)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Document{}
	for _, doc := range r.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadDate.Equal(out[j].UploadDate) {
			return out[i].UploadDate.After(out[j].UploadDate)
		}
		return out[i].ID < out[j].ID
	})

	if skip >= len(out) {
		return []Document{}, nil
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) UpdateContent(_ context.Context, userID, docID string, update ContentUpdate) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	if update.CorrectedHTML != nil {
		doc.CorrectedHTML = *update.CorrectedHTML
	}
	if update.Filename != nil {
		doc.Filename = *update.Filename
	}
	r.docs[docID] = doc
	return doc, nil
}

func (r *MemoryRepo) SetStatus(_ context.Context, docID, status, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok {
		return ErrNotFound
	}
	doc.Status = status
	doc.StatusDetail = detail
	r.docs[docID] = doc
	return nil
}

func (r *MemoryRepo) ApplyCallback(_ context.Context, docID, token string, result CallbackResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok || doc.CallbackToken == "" || doc.CallbackToken != token {
		return ErrNotFound
	}
	doc.RawText = result.RawText
	doc.CorrectedHTML = result.CorrectedHTML
	doc.Status = result.Status
	doc.StatusDetail = ""
	doc.CallbackToken = ""
	doc.CallbackTokenExpiresAt = time.Time{}
	r.docs[docID] = doc
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, userID, docID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	delete(r.docs, docID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
