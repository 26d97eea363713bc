// Package docs manages user document uploads: browser-direct transfers
// through short-lived presigned URLs, with metadata rows in the
// warehouse document directory. Objects are keyed under the owning user
// so authorization reduces to a prefix check plus the row's owner
// column.
package docs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/segminerals/ownerportal/internal/warehouse"
	"github.com/segminerals/ownerportal/pkg/models"
	"github.com/segminerals/ownerportal/pkg/utils"
)

var (
	// ErrNotFound means no document row exists for the id.
	ErrNotFound = errors.New("document not found")

	// ErrForbidden means the document belongs to a different user.
	ErrForbidden = errors.New("document belongs to another user")
)

// MetadataStore is the document-directory persistence the service needs;
// the warehouse client implements it.
type MetadataStore interface {
	GetDocument(ctx context.Context, id string) (*warehouse.DocumentRecord, error)
	ListDocuments(ctx context.Context, ownerUserID string) ([]warehouse.DocumentRecord, error)
	InsertDocument(ctx context.Context, rec warehouse.DocumentRecord) error
	UpdateDocumentNote(ctx context.Context, id, ownerUserID string, note *string) error
	DeleteDocument(ctx context.Context, id, ownerUserID string) error
}

// ObjectStore is the object-storage surface the service needs.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
	Head(ctx context.Context, key string) (size int64, contentType string, err error)
	Delete(ctx context.Context, key string) error
}

// Service implements the document operations.
type Service struct {
	meta        MetadataStore
	objects     ObjectStore
	uploadTTL   time.Duration
	downloadTTL time.Duration
}

// NewService builds a document service. TTLs bound the presigned upload
// and download URLs respectively.
func NewService(meta MetadataStore, objects ObjectStore, uploadTTL, downloadTTL time.Duration) *Service {
	return &Service{
		meta:        meta,
		objects:     objects,
		uploadTTL:   uploadTTL,
		downloadTTL: downloadTTL,
	}
}

// UploadTicket is what the browser needs to PUT the file directly to
// object storage.
type UploadTicket struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// StartUpload issues a presigned PUT for a new object under the user's
// prefix. The filename is sanitized before it becomes part of the key.
func (s *Service) StartUpload(ctx context.Context, userID, filename, contentType string) (*UploadTicket, error) {
	name := utils.SanitizeFilename(filename)
	if name == "" {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}
	key := fmt.Sprintf("user/%s/%s/%s", userID, uuid.New().String(), name)

	url, err := s.objects.PresignPut(ctx, key, contentType, s.uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("presigning upload: %w", err)
	}
	return &UploadTicket{
		Key:       key,
		URL:       url,
		ExpiresIn: int(s.uploadTTL.Seconds()),
	}, nil
}

// Finalize records a completed upload: the object is verified to exist
// under the user's prefix, then a directory row is written with the
// observed size and content type.
func (s *Service) Finalize(ctx context.Context, userID, key, filename string, note *string) (*models.Document, error) {
	if !strings.HasPrefix(key, "user/"+userID+"/") {
		return nil, ErrForbidden
	}

	size, contentType, err := s.objects.Head(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("verifying uploaded object: %w", err)
	}

	rec := warehouse.DocumentRecord{
		Document: models.Document{
			ID:          uuid.New().String(),
			Filename:    utils.SanitizeFilename(filename),
			Note:        note,
			Bytes:       &size,
			ContentType: contentType,
		},
		OwnerUserID: userID,
		S3Key:       key,
	}
	if err := s.meta.InsertDocument(ctx, rec); err != nil {
		return nil, fmt.Errorf("recording document: %w", err)
	}
	return &rec.Document, nil
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Document, error) {
	recs, err := s.meta.ListDocuments(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Document, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Document)
	}
	return out, nil
}

// UpdateNote replaces the note on a document the user owns.
func (s *Service) UpdateNote(ctx context.Context, userID, id string, note *string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.meta.UpdateDocumentNote(ctx, id, userID, note)
}

// Delete removes the directory row and then the object. A failed object
// delete is logged, not surfaced: the row is gone and the orphan is
// invisible to the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.meta.DeleteDocument(ctx, id, userID); err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, rec.S3Key); err != nil {
		log.Printf("docs: deleting object %s: %v", rec.S3Key, err)
	}
	return nil
}

// OpenURL issues a short-lived presigned GET for a document the user
// owns, served as an attachment under its stored filename.
func (s *Service) OpenURL(ctx context.Context, userID, id string) (string, error) {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return "", err
	}
	url, err := s.objects.PresignGet(ctx, rec.S3Key, rec.Filename, s.downloadTTL)
	if err != nil {
		return "", fmt.Errorf("presigning download: %w", err)
	}
	return url, nil
}

func (s *Service) owned(ctx context.Context, userID, id string) (*warehouse.DocumentRecord, error) {
	rec, err := s.meta.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if rec.OwnerUserID != userID {
		return nil, ErrForbidden
	}
	return rec, nil
}
