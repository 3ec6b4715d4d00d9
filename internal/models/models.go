package models

import (
	"time"
)

// Document lifecycle statuses. A document starts as pending when uploaded,
// moves to analyzing when a job picks it up, and ends in completed or error.
// Terminal states are only left by a fresh analyze request.
const (
	StatusPending   = "pending"
	StatusAnalyzing = "analyzing"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents a user-uploaded document and its analysis lifecycle.
type Document struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FileName    string    `db:"file_name" json:"filename"`
	StoragePath string    `db:"storage_path" json:"storage_path"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ChatSession represents one conversation thread owned by a user.
type ChatSession struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChatMessage represents an individual chat turn (user or assistant).
// TokenCount is an approximation, stable for identical content.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Role       string    `db:"role" json:"role"`
	Content    string    `db:"content" json:"content"`
	TokenCount int       `db:"token_count" json:"token_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
