package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/core/vectorstore"
	"github.com/paperdeck/paperdeck/internal/models"
)

const defaultTopK = 4

const baseSystemPrompt = "You are a helpful assistant."

// Service answers chat messages with retrieval-augmented context: the user
// message is embedded, the nearest document chunks become the system context,
// and the session history is replayed to the model in creation order.
type Service struct {
	db        core.DbClient
	store     vectorstore.Store
	embedder  core.EmbeddingProvider
	model     core.ChatModel
	namespace string
	topK      int
}

func New(db core.DbClient, store vectorstore.Store, embedder core.EmbeddingProvider, model core.ChatModel, namespace string) *Service {
	return &Service{
		db:        db,
		store:     store,
		embedder:  embedder,
		model:     model,
		namespace: namespace,
		topK:      defaultTopK,
	}
}

// Result is a completed chat exchange.
type Result struct {
	Response   string
	UserTokens int
	AITokens   int
}

// Chat runs one exchange in a session: retrieve context, complete, persist
// both turns. Retrieval failures degrade to an answer without document
// context rather than failing the request.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*Result, error) {
	docContext := s.retrieve(ctx, message)

	history, err := s.db.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}

	turns := make([]core.ChatTurn, 0, len(history))
	for _, m := range history {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			continue
		}
		turns = append(turns, core.ChatTurn{Role: m.Role, Content: m.Content})
	}

	response, err := s.model.Complete(ctx, systemPrompt(docContext), turns, message)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	result := &Result{
		Response:   response,
		UserTokens: approxTokens(message),
		AITokens:   approxTokens(response),
	}

	userMsg := &models.ChatMessage{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Role:       models.RoleUser,
		Content:    message,
		TokenCount: result.UserTokens,
	}
	if err := s.db.AddChatMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	aiMsg := &models.ChatMessage{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Role:       models.RoleAssistant,
		Content:    response,
		TokenCount: result.AITokens,
	}
	if err := s.db.AddChatMessage(ctx, aiMsg); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	return result, nil
}

// retrieve embeds the message and pulls the top matching chunks. Any failure
// returns an empty context so the chat still answers.
func (s *Service) retrieve(ctx context.Context, message string) string {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{message})
	if err != nil || len(vectors) == 0 {
		log.Warn().Err(err).Msg("query embedding failed, answering without context")
		return ""
	}

	matches, err := s.store.Query(ctx, s.namespace, vectors[0], s.topK)
	if err != nil {
		log.Warn().Err(err).Msg("vector query failed, answering without context")
		return ""
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n\n")
}

func systemPrompt(docContext string) string {
	if docContext == "" {
		return baseSystemPrompt
	}
	return baseSystemPrompt + " Use the following pieces of context to answer the question. " +
		"If you don't know the answer based on the context, say you don't know. " +
		"Keep the answer concise.\n\nContext:\n" + docContext
}

// approxTokens estimates tokens at four characters per token, rounded up.
// It is stable for identical content, which is all the persisted counts need.
func approxTokens(s string) int {
	if s == "" {
		return 0
	}
	return (utf8.RuneCountInString(s) + 3) / 4
}
