// File: services/defense/gemini.go
package defense

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator produces the letter text for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Generation, error)
	ModelName() string
}

// Generation is the model output plus token accounting.
type Generation struct {
	Text         string
	PromptTokens int32
	OutputTokens int32
}

type GeminiClient struct {
	model     *genai.GenerativeModel
	modelName string
}

func NewGeminiClient(apiKey, modelName string) *GeminiClient {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	model := client.GenerativeModel(modelName)
	return &GeminiClient{model: model, modelName: modelName}
}

func (g *GeminiClient) ModelName() string { return g.modelName }

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (*Generation, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini generate: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	gen := &Generation{Text: sb.String()}
	if resp.UsageMetadata != nil {
		gen.PromptTokens = resp.UsageMetadata.PromptTokenCount
		gen.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
	}
	return gen, nil
}
