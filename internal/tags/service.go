package tags

import (
	"context"
	"strings"
)

// Service applies tag naming rules on top of the repo.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// CreateOrGet finds or creates a tag by name. Names are trimmed; an empty
// name is rejected. A duplicate name returns the existing tag unchanged.
func (s *Service) CreateOrGet(ctx context.Context, name, color string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, ErrInvalidInput
	}
	if color == "" {
		color = "#cccccc"
	}
	return s.Repo.CreateOrGet(ctx, name, color)
}

func (s *Service) GetByID(ctx context.Context, tagID string) (Tag, error) {
	return s.Repo.GetByID(ctx, tagID)
}

func (s *Service) ListForDocument(ctx context.Context, documentID string) ([]Tag, error) {
	return s.Repo.ListForDocument(ctx, documentID)
}

func (s *Service) Attach(ctx context.Context, documentID, tagID string) error {
	return s.Repo.Attach(ctx, documentID, tagID)
}

func (s *Service) Detach(ctx context.Context, documentID, tagID string) error {
	return s.Repo.Detach(ctx, documentID, tagID)
}

func (s *Service) RemoveDocument(ctx context.Context, documentID string) error {
	return s.Repo.RemoveDocument(ctx, documentID)
}
