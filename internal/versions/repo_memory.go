package versions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repo used for tests and dev without Postgres.
type MemoryRepo struct {
	mu    sync.Mutex
	byDoc map[string][]DocumentVersion
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byDoc: make(map[string][]DocumentVersion)}
}

func (r *MemoryRepo) Create(_ context.Context, documentID, correctedHTML string) (DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := 1
	for _, v := range r.byDoc[documentID] {
		if v.VersionNumber >= next {
			next = v.VersionNumber + 1
		}
	}
	v := DocumentVersion{
		ID:            uuid.NewString(),
		DocumentID:    documentID,
		VersionNumber: next,
		CorrectedHTML: correctedHTML,
		CreatedAt:     time.Now().UTC(),
	}
	r.byDoc[documentID] = append(r.byDoc[documentID], v)
	return v, nil
}

func (r *MemoryRepo) ListByDocument(_ context.Context, documentID string) ([]DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]DocumentVersion{}, r.byDoc[documentID]...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].VersionNumber > out[j].VersionNumber
	})
	return out, nil
}

func (r *MemoryRepo) DeleteByDocument(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byDoc, documentID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
