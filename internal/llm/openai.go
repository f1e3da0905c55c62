package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAICompleter talks to the OpenAI chat completions API.
type OpenAICompleter struct {
	client openai.Client
}

// NewOpenAICompleter creates a completer. Extra options are mostly useful to
// point the client at a different base URL.
func NewOpenAICompleter(apiKey string, httpClient *http.Client, opts ...option.RequestOption) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is empty", ErrProviderNotConfigured)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAICompleter{client: openai.NewClient(opts...)}, nil
}

func (c *OpenAICompleter) SupportsSchema() bool {
	return true
}

func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	if req.ReasoningEffort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(req.ReasoningEffort)
	}

	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.Schema.Name,
					Schema: req.Schema.Definition,
					Strict: openai.Bool(false),
				},
			},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	completion := &Completion{}
	if len(resp.Choices) > 0 {
		completion.Content = resp.Choices[0].Message.Content
	}

	if resp.JSON.Usage.Valid() {
		completion.Usage = &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		}
	}

	return completion, nil
}
