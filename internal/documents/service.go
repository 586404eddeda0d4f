package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"zipduck-backend/internal/shared/storage/object"
	"zipduck-backend/internal/shared/telemetry"
	"zipduck-backend/internal/shared/util"
)

// MaxUploadSize bounds announcement uploads.
const MaxUploadSize = 10 << 20 // 10MB

// AnalysisStarter schedules the detached analysis pipeline for a document.
// Implemented by the analysis service; a nil starter leaves documents PENDING.
type AnalysisStarter interface {
	StartAnalysis(doc Document) error
}

// Service contains business logic for documents.
type Service struct {
	Store   object.ObjectStore
	Repo    Repo
	Starter AnalysisStarter
}

func allowedContentType(mimeType string) bool {
	switch mimeType {
	case "application/pdf", "image/jpeg", "image/png":
		return true
	}
	return false
}

// Upload validates the announcement, stores it, records a PENDING document
// and schedules its analysis. The analysis itself runs detached; the returned
// document reflects only the accepted upload.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Document, error) {
	if userID == "" || fileName == "" {
		return Document{}, ErrInvalidInput
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Document{}, ErrInvalidInput
	}
	if len(data) > MaxUploadSize {
		return Document{}, ErrTooLarge
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Document{}, err
	}
	if !allowedContentType(mimeType) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	now := time.Now().UTC()
	doc := Document{
		ID:          uuid.NewString(),
		UserID:      userID,
		FileName:    fileName,
		StorageKey:  storageKey,
		SizeBytes:   size,
		ContentType: mimeType,
		Fingerprint: util.Fingerprint(data),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	if s.Starter != nil {
		if err := s.Starter.StartAnalysis(doc); err != nil {
			telemetry.Error("documents.schedule_failed", map[string]any{
				"documentId": doc.ID,
				"error":      err.Error(),
			})
			reason := "analysis could not be scheduled; re-upload to retry"
			if err := s.Repo.UpdateStatus(ctx, doc.ID, StatusFailed, reason); err == nil {
				doc.Status = StatusFailed
				doc.FailureReason = reason
			}
		}
	}

	return doc, nil
}

// Get returns a document, enforcing ownership.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if userID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns a user's documents, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}
