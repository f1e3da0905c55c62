package llm

import (
	"fmt"
	"slices"
)

type Provider string

const (
	ProviderGoogle     Provider = "Google"
	ProviderOpenAI     Provider = "OpenAI"
	ProviderOpenRouter Provider = "OpenRouter"
)

// Model is a registered model identifier.
type Model string

const (
	Gemini25Pro       Model = "gemini-2.5-pro"
	Gemini25Flash     Model = "gemini-2.5-flash"
	Gemini25FlashLite Model = "gemini-2.5-flash-lite-preview-06-17"
	Gemini20Flash     Model = "gemini-2.0-flash"

	GPT5Mini  Model = "gpt-5-mini-2025-08-07"
	GPT5Nano  Model = "gpt-5-nano-2025-08-07"
	GPT41Mini Model = "gpt-4.1-mini-2025-04-14"
	GPT41Nano Model = "gpt-4.1-nano-2025-04-14"

	OpenRouterLlama4Maverick Model = "meta-llama/llama-4-maverick"
	OpenRouterLlama33        Model = "meta-llama/llama-3.3-70b-instruct"
	OpenRouterGPT4oMini      Model = "openai/gpt-4o-mini"
	OpenRouterGPT41Mini      Model = "openai/gpt-4.1-mini"
	OpenRouterGPT41Nano      Model = "openai/gpt-4.1-nano"
)

// Descriptor is the static description of a model. Costs are expressed in
// cost units per million tokens.
type Descriptor struct {
	Model      Model
	Name       string
	Provider   Provider
	InputCost  float64
	OutputCost float64
	// Reasoning models reject sampling temperature.
	Reasoning bool
}

// Cost returns the cost of a call with the given token usage.
func (d Descriptor) Cost(promptTokens, completionTokens int64) float64 {
	return float64(promptTokens)/1e6*d.InputCost + float64(completionTokens)/1e6*d.OutputCost
}

//nolint:gochecknoglobals // Immutable registry.
var registry = map[Model]Descriptor{
	Gemini25Pro:       {Name: "Gemini 2.5 Pro", Provider: ProviderGoogle, InputCost: 20, OutputCost: 80},
	Gemini25Flash:     {Name: "Gemini 2.5 Flash", Provider: ProviderGoogle, InputCost: 10, OutputCost: 40},
	Gemini25FlashLite: {Name: "Gemini 2.5 Flash Lite Preview", Provider: ProviderGoogle, InputCost: 5, OutputCost: 20},
	Gemini20Flash:     {Name: "Gemini 2.0 Flash", Provider: ProviderGoogle, InputCost: 5, OutputCost: 20},

	GPT5Mini:  {Name: "GPT-5 Mini", Provider: ProviderOpenAI, InputCost: 25, OutputCost: 200, Reasoning: true},
	GPT5Nano:  {Name: "GPT-5 Nano", Provider: ProviderOpenAI, InputCost: 5, OutputCost: 40, Reasoning: true},
	GPT41Mini: {Name: "GPT-4.1 Mini", Provider: ProviderOpenAI, InputCost: 15, OutputCost: 60},
	GPT41Nano: {Name: "GPT-4.1 Nano", Provider: ProviderOpenAI, InputCost: 10, OutputCost: 40},

	OpenRouterLlama4Maverick: {Name: "Llama 4 Maverick", Provider: ProviderOpenRouter, InputCost: 15, OutputCost: 60},
	OpenRouterLlama33:        {Name: "Llama 3.3 70B Instruct", Provider: ProviderOpenRouter, InputCost: 5, OutputCost: 25},
	OpenRouterGPT4oMini:      {Name: "GPT-4o Mini", Provider: ProviderOpenRouter, InputCost: 15, OutputCost: 60},
	OpenRouterGPT41Mini:      {Name: "GPT-4.1 Mini", Provider: ProviderOpenRouter, InputCost: 40, OutputCost: 160},
	OpenRouterGPT41Nano:      {Name: "GPT-4.1 Nano", Provider: ProviderOpenRouter, InputCost: 10, OutputCost: 40},
}

// Lookup returns the descriptor of a registered model.
func Lookup(id string) (Descriptor, error) {
	d, ok := registry[Model(id)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}

	d.Model = Model(id)

	return d, nil
}

// Models lists every registered model id in lexical order.
func Models() []Model {
	models := make([]Model, 0, len(registry))
	for m := range registry {
		models = append(models, m)
	}

	slices.Sort(models)

	return models
}
