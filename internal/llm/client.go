package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultTemperature is the sampling temperature used when a caller has no
// preference of its own.
const DefaultTemperature = 0.7

const (
	minTemperature = 0
	maxTemperature = 2

	reasoningEffortLow = "low"
)

// CompletionRequest is a single chat completion with exactly one system and
// one user message.
type CompletionRequest struct {
	Model        Model
	SystemPrompt string
	UserPrompt   string
	// Temperature is nil for reasoning models.
	Temperature     *float64
	ReasoningEffort string
	// Schema is set for structured output.
	Schema *Schema
}

// Completion is the raw answer of a provider. Usage is nil when the provider
// did not report token accounting.
type Completion struct {
	Content string
	Usage   *Usage
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Completer is a chat completion transport for one provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	// SupportsSchema reports whether schema-constrained output is available.
	SupportsSchema() bool
}

// Response is the outcome of one successful generation.
type Response struct {
	Content          string
	Elapsed          time.Duration
	Model            Model
	Provider         Provider
	PromptTokens     int64
	CompletionTokens int64
	// Cost is expressed in the registry's cost units.
	Cost float64
}

// Record describes one generation for usage accounting.
type Record struct {
	Purpose          string
	Model            Model
	Provider         Provider
	PromptTokens     int64
	CompletionTokens int64
	Cost             float64
	Elapsed          time.Duration
}

// Recorder persists generation records.
type Recorder interface {
	RecordGeneration(ctx context.Context, rec Record) error
}

// Factory hands out clients bound to one model each. It is built once at
// startup and is safe for concurrent use.
type Factory struct {
	completers map[Provider]Completer
	recorder   Recorder
	log        *slog.Logger
}

func NewFactory(completers map[Provider]Completer, recorder Recorder, log *slog.Logger) *Factory {
	return &Factory{
		completers: completers,
		recorder:   recorder,
		log:        log,
	}
}

// Client returns a client for the model id. Purpose labels logs and usage
// records.
func (f *Factory) Client(id string, purpose string) (*Client, error) {
	desc, err := Lookup(id)
	if err != nil {
		return nil, err
	}

	completer, ok := f.completers[desc.Provider]
	if !ok || completer == nil {
		return nil, fmt.Errorf("%w: %s (model %s)", ErrProviderNotConfigured, desc.Provider, desc.Model)
	}

	return &Client{
		desc:      desc,
		purpose:   purpose,
		completer: completer,
		recorder:  f.recorder,
		log:       f.log,
	}, nil
}

type Client struct {
	desc      Descriptor
	purpose   string
	completer Completer
	recorder  Recorder
	log       *slog.Logger
}

func (c *Client) Descriptor() Descriptor {
	return c.desc
}

// SupportsSchema reports whether GenerateStructured can succeed.
func (c *Client) SupportsSchema() bool {
	return c.completer.SupportsSchema()
}

// Generate sends the system and user prompts and returns the model answer.
func (c *Client) Generate(
	ctx context.Context,
	systemPrompt string,
	userPrompt string,
	temperature float64,
) (*Response, error) {
	req, err := c.request(systemPrompt, userPrompt, temperature)
	if err != nil {
		return nil, err
	}

	return c.complete(ctx, req)
}

// GenerateStructured works like Generate but constrains the answer to the
// JSON schema of out and decodes it into out, which must be a pointer.
func (c *Client) GenerateStructured(
	ctx context.Context,
	systemPrompt string,
	userPrompt string,
	temperature float64,
	out any,
) (*Response, error) {
	if !c.completer.SupportsSchema() {
		return nil, fmt.Errorf("%w: structured output with %s", ErrUnsupportedForProvider, c.desc.Provider)
	}

	schema, err := SchemaFor(out)
	if err != nil {
		return nil, err
	}

	req, err := c.request(systemPrompt, userPrompt, temperature)
	if err != nil {
		return nil, err
	}
	req.Schema = schema

	resp, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal([]byte(resp.Content), out); err != nil {
		return nil, fmt.Errorf("%w: decode structured output: %w", ErrGenerationFailed, err)
	}

	return resp, nil
}

func (c *Client) request(systemPrompt, userPrompt string, temperature float64) (CompletionRequest, error) {
	if !(temperature >= minTemperature && temperature <= maxTemperature) {
		return CompletionRequest{}, fmt.Errorf("%w: got %v", ErrInvalidTemperature, temperature)
	}

	req := CompletionRequest{
		Model:        c.desc.Model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	}

	if c.desc.Reasoning {
		req.ReasoningEffort = reasoningEffortLow
	} else {
		req.Temperature = &temperature
	}

	return req, nil
}

func (c *Client) complete(ctx context.Context, req CompletionRequest) (*Response, error) {
	start := time.Now()
	completion, err := c.completer.Complete(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrGenerationFailed, c.desc.Model, err)
	}

	if completion == nil || strings.TrimSpace(completion.Content) == "" {
		return nil, fmt.Errorf("%w: %s returned empty content", ErrGenerationFailed, c.desc.Model)
	}

	if completion.Usage == nil {
		return nil, fmt.Errorf("%w: %s returned no usage", ErrGenerationFailed, c.desc.Model)
	}

	resp := &Response{
		Content:          completion.Content,
		Elapsed:          elapsed,
		Model:            c.desc.Model,
		Provider:         c.desc.Provider,
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		Cost:             c.desc.Cost(completion.Usage.PromptTokens, completion.Usage.CompletionTokens),
	}

	c.log.InfoContext(ctx, "Generated response",
		"purpose", c.purpose,
		"model", c.desc.Name,
		"provider", c.desc.Provider,
		"promptTokens", resp.PromptTokens,
		"completionTokens", resp.CompletionTokens,
		"cost", resp.Cost,
		"elapsed", resp.Elapsed)

	if c.recorder != nil {
		if err = c.recorder.RecordGeneration(ctx, Record{
			Purpose:          c.purpose,
			Model:            resp.Model,
			Provider:         resp.Provider,
			PromptTokens:     resp.PromptTokens,
			CompletionTokens: resp.CompletionTokens,
			Cost:             resp.Cost,
			Elapsed:          resp.Elapsed,
		}); err != nil {
			c.log.WarnContext(ctx, "Failed to record generation",
				"error", err,
				"purpose", c.purpose,
				"model", c.desc.Model)
		}
	}

	return resp, nil
}
