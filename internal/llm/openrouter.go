package llm

import (
	"context"
	"fmt"
	"math"

	"github.com/revrost/go-openrouter"
)

// OpenRouterCompleter talks to the OpenRouter chat completions API.
type OpenRouterCompleter struct {
	client *openrouter.Client
}

func NewOpenRouterCompleter(apiKey string) (*OpenRouterCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenRouter API key is empty", ErrProviderNotConfigured)
	}

	return &OpenRouterCompleter{client: openrouter.NewClient(apiKey)}, nil
}

func (c *OpenRouterCompleter) SupportsSchema() bool {
	return true
}

func (c *OpenRouterCompleter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openRouterRequest(req))
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	completion := &Completion{}
	if len(resp.Choices) > 0 {
		completion.Content = resp.Choices[0].Message.Content.Text
	}

	if resp.Usage != nil {
		completion.Usage = &Usage{
			PromptTokens:     int64(resp.Usage.PromptTokens),
			CompletionTokens: int64(resp.Usage.CompletionTokens),
		}
	}

	return completion, nil
}

func openRouterRequest(req CompletionRequest) openrouter.ChatCompletionRequest {
	request := openrouter.ChatCompletionRequest{
		Model: string(req.Model),
		Messages: []openrouter.ChatCompletionMessage{
			{
				Role:    openrouter.ChatMessageRoleSystem,
				Content: openrouter.Content{Text: req.SystemPrompt},
			},
			{
				Role:    openrouter.ChatMessageRoleUser,
				Content: openrouter.Content{Text: req.UserPrompt},
			},
		},
	}

	if req.Temperature != nil {
		request.Temperature = float32(*req.Temperature)
		// Temperature is omitted from the JSON when zero.
		if request.Temperature == 0 {
			request.Temperature = math.SmallestNonzeroFloat32
		}
	}

	if req.Schema != nil {
		request.ResponseFormat = &openrouter.ChatCompletionResponseFormat{
			Type: openrouter.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openrouter.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Definition,
				Strict: false,
			},
		}
	}

	return request
}
