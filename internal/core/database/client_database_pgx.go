package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/paperdeck/paperdeck/internal/config"
	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// SQL exposes the underlying pool so the pgvector store can share it.
func (c *DatabaseClient) SQL() *sql.DB {
	return c.db
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.Email, user.PasswordHash)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents (id, user_id, file_name, storage_path, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.FileName, doc.StoragePath, doc.Status)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, user_id, file_name, storage_path, status, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.FileName, &d.StoragePath, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document not found: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const q = `
		SELECT id, user_id, file_name, storage_path, status, created_at, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.FileName, &d.StoragePath, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// TryMarkAnalyzing is the conditional transition guarding duplicate analyze
// jobs: the WHERE clause rejects documents already analyzing, so the check and
// the write are a single statement with no window in between.
func (c *DatabaseClient) TryMarkAnalyzing(ctx context.Context, id string) (bool, error) {
	const q = `
		UPDATE documents
		SET status = 'analyzing', updated_at = now()
		WHERE id = $1 AND status <> 'analyzing'
	`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *DatabaseClient) DeleteDocument(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// Chat sessions

func (c *DatabaseClient) CreateChatSession(ctx context.Context, session *models.ChatSession) error {
	if session == nil {
		return errors.New("nil session")
	}
	const q = `
		INSERT INTO chat_sessions (id, user_id, title, created_at)
		VALUES ($1, $2, $3, now())
	`
	_, err := c.db.ExecContext(ctx, q, session.ID, session.UserID, session.Title)
	return err
}

func (c *DatabaseClient) GetChatSessionByID(ctx context.Context, id string) (*models.ChatSession, error) {
	const q = `
		SELECT id, user_id, title, created_at
		FROM chat_sessions WHERE id = $1
	`
	var s models.ChatSession
	err := c.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *DatabaseClient) ListChatSessionsByUser(ctx context.Context, userID string, limit int) ([]models.ChatSession, error) {
	const q = `
		SELECT id, user_id, title, created_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatSession
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) RenameChatSession(ctx context.Context, id, title string) error {
	const q = `UPDATE chat_sessions SET title = $2 WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id, title)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) DeleteChatSession(ctx context.Context, id string) error {
	// Messages go with the session (ON DELETE CASCADE).
	const q = `DELETE FROM chat_sessions WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

// Chat messages

func (c *DatabaseClient) AddChatMessage(ctx context.Context, message *models.ChatMessage) error {
	if message == nil {
		return errors.New("nil message")
	}
	const q = `
		INSERT INTO chat_messages (id, session_id, role, content, token_count, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	_, err := c.db.ExecContext(ctx, q,
		message.ID, message.SessionID, message.Role, message.Content, message.TokenCount)
	return err
}

// ListMessagesBySession returns the session's turns in creation order, the
// order the chat service replays them to the model.
func (c *DatabaseClient) ListMessagesBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, session_id, role, content, token_count, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.TokenCount, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
