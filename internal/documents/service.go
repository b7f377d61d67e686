package documents

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docproc-backend/internal/shared/storage/object"
	"docproc-backend/internal/shared/telemetry"
	"docproc-backend/internal/shared/util"
	"docproc-backend/internal/tags"
	"docproc-backend/internal/versions"
)

// Dispatcher notifies the external processing engine about a new upload.
// Implementations run their own status transitions and must not panic out.
type Dispatcher interface {
	Dispatch(ctx context.Context, doc Document)
}

// Service contains business logic for documents.
type Service struct {
	Store      object.ObjectStore
	Repo       Repo
	Tags       *tags.Service
	Versions   versions.Repo
	Dispatcher Dispatcher

	CallbackTokenTTL time.Duration
}

// Upload stores the file, records the document with status Processing and a
// fresh callback token, and kicks off asynchronous dispatch. The dispatch
// never blocks the caller.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Document, error) {
	if userID == "" || fileName == "" {
		return Document{}, ErrInvalidInput
	}

	safeName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Document{}, ErrInvalidInput
	}
	ext := strings.ToLower(filepath.Ext(safeName))
	storageKey := uuid.NewString() + ext

	if _, _, err := s.Store.Save(ctx, storageKey, r); err != nil {
		return Document{}, err
	}

	ttl := s.CallbackTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	doc := Document{
		ID:                     uuid.NewString(),
		UserID:                 userID,
		UploadDate:             time.Now().UTC(),
		StorageKey:             storageKey,
		Filename:               safeName,
		Status:                 StatusProcessing,
		CallbackToken:          uuid.NewString(),
		CallbackTokenExpiresAt: time.Now().UTC().Add(ttl),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("document.upload.orphan_cleanup_failed", map[string]any{
				"storageKey": storageKey,
				"error":      delErr.Error(),
			})
		}
		return Document{}, err
	}

	if s.Dispatcher != nil {
		go s.Dispatcher.Dispatch(backgroundWithRequestID(ctx), doc)
	}

	return doc, nil
}

// Get returns a document owned by the user.
func (s *Service) Get(ctx context.Context, userID, docID string) (Document, error) {
	if userID == "" || docID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, docID)
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userID string, skip, limit int) ([]Document, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, skip, limit)
}

// Update applies a partial edit. When the edit replaces non-empty corrected
// HTML with different content, the previous content is snapshotted as a new
// version first.
func (s *Service) Update(ctx context.Context, userID, docID string, update ContentUpdate) (Document, error) {
	if userID == "" || docID == "" {
		return Document{}, ErrInvalidInput
	}

	current, err := s.Repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Document{}, err
	}

	if update.CorrectedHTML != nil &&
		current.CorrectedHTML != "" &&
		*update.CorrectedHTML != current.CorrectedHTML &&
		s.Versions != nil {
		if _, err := s.Versions.Create(ctx, docID, current.CorrectedHTML); err != nil {
			telemetry.Error("document.version.snapshot_failed", map[string]any{
				"documentId": docID,
				"error":      err.Error(),
			})
		}
	}

	return s.Repo.UpdateContent(ctx, userID, docID, update)
}

// Delete removes the document row, its tag associations and version history,
// then best-effort removes the backing file. A missing or undeletable file is
// logged, never an error.
func (s *Service) Delete(ctx context.Context, userID, docID string) error {
	if userID == "" || docID == "" {
		return ErrInvalidInput
	}

	doc, err := s.Repo.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}

	if s.Tags != nil {
		if err := s.Tags.RemoveDocument(ctx, docID); err != nil {
			telemetry.Error("document.delete.tags_failed", map[string]any{
				"documentId": docID,
				"error":      err.Error(),
			})
		}
	}
	if s.Versions != nil {
		if err := s.Versions.DeleteByDocument(ctx, docID); err != nil {
			telemetry.Error("document.delete.versions_failed", map[string]any{
				"documentId": docID,
				"error":      err.Error(),
			})
		}
	}

	if err := s.Repo.Delete(ctx, userID, docID); err != nil {
		return err
	}

	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
		telemetry.Error("document.delete.file_failed", map[string]any{
			"documentId": docID,
			"storageKey": doc.StorageKey,
			"error":      err.Error(),
		})
	}

	return nil
}

// ListVersions returns the snapshot history for a document the user owns.
func (s *Service) ListVersions(ctx context.Context, userID, docID string) ([]versions.DocumentVersion, error) {
	if _, err := s.Repo.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	return s.Versions.ListByDocument(ctx, docID)
}

// TagsFor returns the tags attached to a document. Ownership is the
// caller's concern.
func (s *Service) TagsFor(ctx context.Context, docID string) ([]tags.Tag, error) {
	if s.Tags == nil {
		return []tags.Tag{}, nil
	}
	return s.Tags.ListForDocument(ctx, docID)
}

// AttachTagByName finds or creates the named tag and attaches it to a
// document the user owns. Attaching twice is a no-op. Returns the document
// together with its resulting tag set.
func (s *Service) AttachTagByName(ctx context.Context, userID, docID, name string) (Document, []tags.Tag, error) {
	doc, err := s.Repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Document{}, nil, err
	}
	tag, err := s.Tags.CreateOrGet(ctx, name, "")
	if err != nil {
		return Document{}, nil, err
	}
	if err := s.Tags.Attach(ctx, docID, tag.ID); err != nil {
		return Document{}, nil, err
	}
	tagList, err := s.Tags.ListForDocument(ctx, docID)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, tagList, nil
}

// DetachTag removes a tag association from a document the user owns.
// Detaching an absent tag is a no-op. Returns the document together with its
// resulting tag set.
func (s *Service) DetachTag(ctx context.Context, userID, docID, tagID string) (Document, []tags.Tag, error) {
	doc, err := s.Repo.GetByID(ctx, userID, docID)
	if err != nil {
		return Document{}, nil, err
	}
	if err := s.Tags.Detach(ctx, docID, tagID); err != nil {
		return Document{}, nil, err
	}
	tagList, err := s.Tags.ListForDocument(ctx, docID)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, tagList, nil
}
