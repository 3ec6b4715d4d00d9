package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/paperdeck/paperdeck/internal/core"
)

type GeminiVision struct {
	client    *genai.Client
	modelName string
}

var _ core.VisionModel = (*GeminiVision)(nil)

func NewGeminiVision(ctx context.Context, apiKey, modelName string) (*GeminiVision, error) {
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
	return &GeminiVision{client: cl, modelName: modelName}, nil
}

func (g *GeminiVision) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// CompleteWithImage asks the vision model about one image reachable at
// imageURL, with temperature pinned to 0.
func (g *GeminiVision) CompleteWithImage(ctx context.Context, systemPrompt, userPrompt, imageURL string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	m.SetTemperature(0)
	m.SetMaxOutputTokens(2000)

	resp, err := m.GenerateContent(ctx,
		genai.Text(userPrompt),
		genai.FileData{MIMEType: "image/png", URI: imageURL},
	)
	if err != nil {
		return "", fmt.Errorf("gemini vision: %w", err)
	}
	return collectText(resp), nil
}
