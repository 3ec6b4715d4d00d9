package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/core/vectorstore"
	"github.com/paperdeck/paperdeck/internal/models"
)

type fakeDB struct {
	core.DbClient

	docs      map[string]*models.Document
	createErr error
	getErr    error
	deleted   []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{docs: map[string]*models.Document{}}
}

func (f *fakeDB) CreateDocument(_ context.Context, doc *models.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %w", sql.ErrNoRows)
	}
	return doc, nil
}

func (f *fakeDB) DeleteDocument(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.docs, id)
	return nil
}

type fakeObjects struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{files: map[string][]byte{}}
}

func (f *fakeObjects) UploadFile(_ context.Context, _, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = data
	return "https://bucket/" + key, nil
}

func (f *fakeObjects) DeleteFile(_ context.Context, _, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	delete(f.files, key)
	return nil
}

func (f *fakeObjects) GetFile(_ context.Context, _, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (f *fakeObjects) SignedURL(_ context.Context, _, key string, _ time.Duration) (string, error) {
	return "https://signed/" + key, nil
}

type fakeStore struct {
	vectorstore.Store

	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (f *fakeStore) DeleteByDocument(_ context.Context, _ string, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, docID)
	return nil
}

func TestUploadAndCreate(t *testing.T) {
	db := newFakeDB()
	obj := newFakeObjects()
	svc := New(db, obj, &fakeStore{}, "bucket", "documents")

	doc, err := svc.UploadAndCreate(context.Background(), "user-1", "report.pdf", "application/pdf", []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, "user-1", doc.UserID)
	assert.Equal(t, "report.pdf", doc.FileName)
	assert.Equal(t, models.StatusPending, doc.Status)
	assert.True(t, strings.HasPrefix(doc.StoragePath, "user-1/"))
	assert.True(t, strings.HasSuffix(doc.StoragePath, ".pdf"))
	assert.Contains(t, obj.files, doc.StoragePath)
	assert.Contains(t, db.docs, doc.ID)
}

func TestUploadAndCreate_DBFailureRemovesUpload(t *testing.T) {
	db := newFakeDB()
	db.createErr = errors.New("insert failed")
	obj := newFakeObjects()
	svc := New(db, obj, &fakeStore{}, "bucket", "documents")

	_, err := svc.UploadAndCreate(context.Background(), "user-1", "report.pdf", "application/pdf", []byte("%PDF"))

	require.Error(t, err)
	assert.Empty(t, obj.files, "upload must not be orphaned")
}

func TestGetOwned_RejectsOtherUsers(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "owner"}
	svc := New(db, newFakeObjects(), &fakeStore{}, "bucket", "documents")

	_, err := svc.GetOwned(context.Background(), "intruder", "doc-1")

	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestGetOwned_MissingDocumentIsNotFound(t *testing.T) {
	db := newFakeDB()
	svc := New(db, newFakeObjects(), &fakeStore{}, "bucket", "documents")

	_, err := svc.GetOwned(context.Background(), "user-1", "absent")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOwned_TransientDBErrorIsNotNotFound(t *testing.T) {
	db := newFakeDB()
	db.getErr = errors.New("connection refused")
	svc := New(db, newFakeObjects(), &fakeStore{}, "bucket", "documents")

	_, err := svc.GetOwned(context.Background(), "user-1", "doc-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound,
		"a database outage must not read as a missing document")
}

func TestDelete_RemovesVectorsObjectAndRow(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "user-1", StoragePath: "user-1/x.pdf"}
	obj := newFakeObjects()
	obj.files["user-1/x.pdf"] = []byte("data")
	store := &fakeStore{}
	svc := New(db, obj, store, "bucket", "documents")

	err := svc.Delete(context.Background(), "user-1", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, store.deleted)
	assert.Equal(t, []string{"user-1/x.pdf"}, obj.deleted)
	assert.Equal(t, []string{"doc-1"}, db.deleted)
}

func TestDelete_VectorFailureDoesNotBlockRowDelete(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "user-1", StoragePath: "user-1/x.pdf"}
	store := &fakeStore{deleteErr: errors.New("index offline")}
	svc := New(db, newFakeObjects(), store, "bucket", "documents")

	err := svc.Delete(context.Background(), "user-1", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, db.deleted)
}
