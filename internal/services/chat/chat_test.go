package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/core/vectorstore"
	"github.com/paperdeck/paperdeck/internal/models"
)

type fakeDB struct {
	core.DbClient

	history []models.ChatMessage
	added   []*models.ChatMessage
	listErr error
	addErr  error
}

func (f *fakeDB) ListMessagesBySession(context.Context, string) ([]models.ChatMessage, error) {
	return f.history, f.listErr
}

func (f *fakeDB) AddChatMessage(_ context.Context, m *models.ChatMessage) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, m)
	return nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type fakeStore struct {
	vectorstore.Store

	matches  []vectorstore.Match
	queryErr error
	lastK    int
}

func (f *fakeStore) Query(_ context.Context, _ string, _ []float32, k int) ([]vectorstore.Match, error) {
	f.lastK = k
	return f.matches, f.queryErr
}

type fakeModel struct {
	response   string
	err        error
	lastSystem string
	lastTurns  []core.ChatTurn
	lastMsg    string
}

func (f *fakeModel) Complete(_ context.Context, system string, turns []core.ChatTurn, message string) (string, error) {
	f.lastSystem = system
	f.lastTurns = turns
	f.lastMsg = message
	return f.response, f.err
}

func TestChat_InjectsRetrievedContext(t *testing.T) {
	db := &fakeDB{}
	store := &fakeStore{matches: []vectorstore.Match{
		{Text: "Revenue was $5M in Q3."},
		{Text: "Headcount grew to 40."},
	}}
	model := &fakeModel{response: "Revenue was $5M."}
	svc := New(db, store, &fakeEmbedder{}, model, "documents")

	res, err := svc.Chat(context.Background(), "sess-1", "What was revenue?")

	require.NoError(t, err)
	assert.Equal(t, "Revenue was $5M.", res.Response)
	assert.Equal(t, 4, store.lastK)
	assert.Contains(t, model.lastSystem, "Revenue was $5M in Q3.")
	assert.Contains(t, model.lastSystem, "Headcount grew to 40.")
	assert.Contains(t, model.lastSystem, "say you don't know")
}

func TestChat_DegradesToEmptyContextOnEmbedFailure(t *testing.T) {
	db := &fakeDB{}
	model := &fakeModel{response: "Hello!"}
	svc := New(db, &fakeStore{}, &fakeEmbedder{err: errors.New("quota")}, model, "documents")

	res, err := svc.Chat(context.Background(), "sess-1", "Hi")

	require.NoError(t, err)
	assert.Equal(t, "Hello!", res.Response)
	assert.Equal(t, baseSystemPrompt, model.lastSystem)
}

func TestChat_DegradesToEmptyContextOnQueryFailure(t *testing.T) {
	db := &fakeDB{}
	model := &fakeModel{response: "Hello!"}
	store := &fakeStore{queryErr: errors.New("index offline")}
	svc := New(db, store, &fakeEmbedder{}, model, "documents")

	_, err := svc.Chat(context.Background(), "sess-1", "Hi")

	require.NoError(t, err)
	assert.Equal(t, baseSystemPrompt, model.lastSystem)
	assert.NotContains(t, model.lastSystem, "Context:")
}

func TestChat_ReplaysHistoryInOrder(t *testing.T) {
	db := &fakeDB{history: []models.ChatMessage{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleAssistant, Content: "Hello"},
		{Role: "system", Content: "dropped"},
	}}
	model := &fakeModel{response: "Sure."}
	svc := New(db, &fakeStore{}, &fakeEmbedder{}, model, "documents")

	_, err := svc.Chat(context.Background(), "sess-1", "What next?")

	require.NoError(t, err)
	require.Len(t, model.lastTurns, 2)
	assert.Equal(t, core.ChatTurn{Role: models.RoleUser, Content: "Hi"}, model.lastTurns[0])
	assert.Equal(t, core.ChatTurn{Role: models.RoleAssistant, Content: "Hello"}, model.lastTurns[1])
	assert.Equal(t, "What next?", model.lastMsg)
}

func TestChat_PersistsBothTurnsWithTokenCounts(t *testing.T) {
	db := &fakeDB{}
	model := &fakeModel{response: "Twelve characters plus."}
	svc := New(db, &fakeStore{}, &fakeEmbedder{}, model, "documents")

	res, err := svc.Chat(context.Background(), "sess-9", "How long is this message?")

	require.NoError(t, err)
	require.Len(t, db.added, 2)

	user, ai := db.added[0], db.added[1]
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "How long is this message?", user.Content)
	assert.Equal(t, "sess-9", user.SessionID)
	assert.Equal(t, res.UserTokens, user.TokenCount)

	assert.Equal(t, models.RoleAssistant, ai.Role)
	assert.Equal(t, "Twelve characters plus.", ai.Content)
	assert.Equal(t, res.AITokens, ai.TokenCount)
}

func TestChat_HistoryLoadFailureIsFatal(t *testing.T) {
	db := &fakeDB{listErr: errors.New("db down")}
	svc := New(db, &fakeStore{}, &fakeEmbedder{}, &fakeModel{}, "documents")

	_, err := svc.Chat(context.Background(), "sess-1", "Hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load session history")
}

func TestApproxTokens(t *testing.T) {
	assert.Equal(t, 0, approxTokens(""))
	assert.Equal(t, 1, approxTokens("abc"))
	assert.Equal(t, 1, approxTokens("abcd"))
	assert.Equal(t, 2, approxTokens("abcde"))
	assert.Equal(t, approxTokens("same text"), approxTokens("same text"))
}
