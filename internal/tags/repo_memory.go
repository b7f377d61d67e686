package tags

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repo used for tests and dev without Postgres.
type MemoryRepo struct {
	mu    sync.Mutex
	byID  map[string]Tag
	assoc map[string]map[string]bool // documentID -> tagID set
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]Tag),
		assoc: make(map[string]map[string]bool),
	}
}

func (r *MemoryRepo) CreateOrGet(_ context.Context, name, color string) (Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tag := range r.byID {
		if tag.Name == name {
			return tag, nil
		}
	}
	tag := Tag{ID: uuid.NewString(), Name: name, Color: color}
	r.byID[tag.ID] = tag
	return tag, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, tagID string) (Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag, ok := r.byID[tagID]
	if !ok {
		return Tag{}, ErrNotFound
	}
	return tag, nil
}

func (r *MemoryRepo) GetByName(_ context.Context, name string) (Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tag := range r.byID {
		if tag.Name == name {
			return tag, nil
		}
	}
	return Tag{}, ErrNotFound
}

func (r *MemoryRepo) ListForDocument(_ context.Context, documentID string) ([]Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []Tag{}
	for tagID := range r.assoc[documentID] {
		if tag, ok := r.byID[tagID]; ok {
			out = append(out, tag)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}

func (r *MemoryRepo) Attach(_ context.Context, documentID, tagID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.assoc[documentID] == nil {
		r.assoc[documentID] = make(map[string]bool)
	}
	r.assoc[documentID][tagID] = true
	return nil
}

func (r *MemoryRepo) Detach(_ context.Context, documentID, tagID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assoc[documentID], tagID)
	return nil
}

func (r *MemoryRepo) RemoveDocument(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assoc, documentID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
