package core

import (
	"context"
	"time"

	"github.com/paperdeck/paperdeck/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
	// TryMarkAnalyzing atomically transitions a document into analyzing
	// unless it is already analyzing. Returns false when the transition was
	// rejected, so concurrent analyze requests cannot start a second job.
	TryMarkAnalyzing(ctx context.Context, id string) (bool, error)
	DeleteDocument(ctx context.Context, id string) error

	CreateChatSession(ctx context.Context, session *models.ChatSession) error
	GetChatSessionByID(ctx context.Context, id string) (*models.ChatSession, error)
	ListChatSessionsByUser(ctx context.Context, userID string, limit int) ([]models.ChatSession, error)
	RenameChatSession(ctx context.Context, id, title string) error
	DeleteChatSession(ctx context.Context, id string) error

	AddChatMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessagesBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// Abstract so AWS can be replaced with MinIO, GCP, etc.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	// SignedURL returns a time-limited read URL for a stored object, used to
	// make staged images reachable by the vision model.
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
