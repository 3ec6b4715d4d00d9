package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/core/vectorstore"
	"github.com/paperdeck/paperdeck/internal/models"
)

var (
	// ErrNotOwner is returned when a user operates on a document they do not own.
	ErrNotOwner = fmt.Errorf("document does not belong to user")
	// ErrNotFound is returned when the document does not exist.
	ErrNotFound = fmt.Errorf("document not found")
)

// Service owns the document lifecycle outside of analysis: upload, listing
// and deletion including the document's storage object and index entries.
type Service struct {
	db        core.DbClient
	storage   core.ObjectClient
	store     vectorstore.Store
	bucket    string
	namespace string
}

func New(db core.DbClient, storage core.ObjectClient, store vectorstore.Store, bucket, namespace string) *Service {
	return &Service{db: db, storage: storage, store: store, bucket: bucket, namespace: namespace}
}

// UploadAndCreate stores the file and records the document as pending.
func (s *Service) UploadAndCreate(ctx context.Context, userID, filename, contentType string, data []byte) (*models.Document, error) {
	key := s.objectKey(userID, filename)

	if _, err := s.storage.UploadFile(ctx, s.bucket, key, data, contentType); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	doc := &models.Document{
		ID:          uuid.NewString(),
		UserID:      userID,
		FileName:    filename,
		StoragePath: key,
		Status:      models.StatusPending,
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		if derr := s.storage.DeleteFile(ctx, s.bucket, key); derr != nil {
			log.Warn().Err(derr).Str("key", key).Msg("orphaned upload not deleted")
		}
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// GetOwned loads a document and verifies ownership. Only a missing row maps
// to ErrNotFound; any other database error passes through unchanged.
func (s *Service) GetOwned(ctx context.Context, userID, docID string) (*models.Document, error) {
	doc, err := s.db.GetDocumentByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc.UserID != userID {
		return nil, ErrNotOwner
	}
	return doc, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

// Delete removes a document's vectors and storage object, then its row.
// Vector and storage cleanup are best effort and run concurrently; only the
// row delete can fail the operation, so a delete never leaves a row behind
// pointing at partially removed data.
func (s *Service) Delete(ctx context.Context, userID, docID string) error {
	doc, err := s.GetOwned(ctx, userID, docID)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		if err := s.store.DeleteByDocument(ctx, s.namespace, doc.ID); err != nil {
			log.Warn().Err(err).Str("doc_id", doc.ID).Msg("vector cleanup failed")
		}
		return nil
	})
	g.Go(func() error {
		if err := s.storage.DeleteFile(ctx, s.bucket, doc.StoragePath); err != nil {
			log.Warn().Err(err).Str("key", doc.StoragePath).Msg("storage cleanup failed")
		}
		return nil
	})
	_ = g.Wait()

	if err := s.db.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// objectKey builds a per-user key that stays unique across re-uploads of the
// same filename.
func (s *Service) objectKey(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%d_%s%s", userID, time.Now().Unix(), uuid.NewString(), ext)
}
