package llm

import "errors"

var (
	ErrUnknownModel           = errors.New("unknown model")
	ErrUnsupportedForProvider = errors.New("unsupported for provider")
	ErrGenerationFailed       = errors.New("generation failed")
	ErrProviderNotConfigured  = errors.New("provider is not configured")
	ErrInvalidTemperature     = errors.New("temperature must be within [0, 2]")
)
