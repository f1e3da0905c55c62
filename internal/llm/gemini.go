package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiCompleter talks to the Gemini API. Schema-constrained output is not
// offered through this transport.
type GeminiCompleter struct {
	client *genai.Client
}

func NewGeminiCompleter(ctx context.Context, apiKey string) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is empty", ErrProviderNotConfigured)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &GeminiCompleter{client: client}, nil
}

func (c *GeminiCompleter) SupportsSchema() bool {
	return false
}

func (c *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if req.Schema != nil {
		return nil, ErrUnsupportedForProvider
	}

	model := c.client.GenerativeModel(string(req.Model))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.SystemPrompt)},
	}

	if req.Temperature != nil {
		model.SetTemperature(float32(*req.Temperature))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	completion := &Completion{Content: candidateText(resp)}

	if resp.UsageMetadata != nil {
		completion.Usage = &Usage{
			PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	return completion, nil
}

func (c *GeminiCompleter) Close() error {
	return c.client.Close()
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return b.String()
}
