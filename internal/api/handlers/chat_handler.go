package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/paperdeck/paperdeck/internal/api/middlewares"
	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/services/chat"
)

type ChatHandler struct {
	db   core.DbClient
	chat *chat.Service
}

func NewChatHandler(db core.DbClient, chatSvc *chat.Service) *ChatHandler {
	return &ChatHandler{db: db, chat: chatSvc}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response   string `json:"response"`
	UserTokens int    `json:"user_tokens"`
	AITokens   int    `json:"ai_tokens"`
}

// Chat runs one retrieval-augmented exchange in an owned session.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	session, err := h.db.GetChatSessionByID(r.Context(), req.SessionID)
	if err != nil || session.UserID != userID {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}

	result, err := h.chat.Chat(r.Context(), session.ID, req.Message)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "chat failed")
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{
		Response:   result.Response,
		UserTokens: result.UserTokens,
		AITokens:   result.AITokens,
	})
}
