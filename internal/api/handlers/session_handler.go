package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paperdeck/paperdeck/internal/api/middlewares"
	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/models"
)

const sessionListLimit = 20

type SessionHandler struct {
	db core.DbClient
}

func NewSessionHandler(db core.DbClient) *SessionHandler {
	return &SessionHandler{db: db}
}

type sessionRequest struct {
	Title string `json:"title"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New chat"
	}

	session := &models.ChatSession{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
	}
	if err := h.db.CreateChatSession(r.Context(), session); err != nil {
		respondError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.db.ListChatSessionsByUser(r.Context(), userID, sessionListLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list sessions")
		return
	}
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	session, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	if err := h.db.RenameChatSession(r.Context(), session.ID, strings.TrimSpace(req.Title)); err != nil {
		respondError(w, http.StatusInternalServerError, "could not rename session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Session renamed"})
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteChatSession(r.Context(), session.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "could not delete session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}

// Messages returns the session history in creation order.
func (h *SessionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	session, ok := h.owned(w, r)
	if !ok {
		return
	}

	messages, err := h.db.ListMessagesBySession(r.Context(), session.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list messages")
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	respondJSON(w, http.StatusOK, messages)
}

// owned resolves the {id} route param to a session owned by the caller,
// writing the error response itself when that fails.
func (h *SessionHandler) owned(w http.ResponseWriter, r *http.Request) (*models.ChatSession, bool) {
	userID, ok := middlewares.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	session, err := h.db.GetChatSessionByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil || session.UserID != userID {
		respondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return session, true
}
