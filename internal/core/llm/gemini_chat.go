package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/paperdeck/paperdeck/internal/core"
	"github.com/paperdeck/paperdeck/internal/models"
)

type GeminiChat struct {
	client    *genai.Client
	modelName string
}

var _ core.ChatModel = (*GeminiChat)(nil)

func NewGeminiChat(ctx context.Context, apiKey, modelName string) (*GeminiChat, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiChat{client: cl, modelName: modelName}, nil
}

func (g *GeminiChat) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Complete replays the prior turns as chat history and sends the new user
// message in a single request/response call.
func (g *GeminiChat) Complete(ctx context.Context, systemPrompt string, history []core.ChatTurn, message string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	cs := m.StartChat()
	for _, turn := range history {
		role := "user"
		if turn.Role == models.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	return collectText(resp), nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
