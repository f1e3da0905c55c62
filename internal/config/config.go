package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"smrz/internal/llm"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type TranscriptSource string

const (
	TranscriptSpeech   TranscriptSource = "speech"
	TranscriptCaptions TranscriptSource = "captions"
)

type ArticleConverter string

const (
	ConverterLLM   ArticleConverter = "llm"
	ConverterLocal ArticleConverter = "local"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`

	ReadabilityModel string `env:"READABILITY_MODEL" envDefault:"gemini-2.5-flash-lite-preview-06-17"`
	ArticleModel     string `env:"ARTICLE_MODEL"     envDefault:"gpt-5-mini-2025-08-07"`
	SummaryModel     string `env:"SUMMARY_MODEL"     envDefault:"gemini-2.5-flash-lite-preview-06-17"`
	MetadataModel    string `env:"METADATA_MODEL"    envDefault:"gpt-4.1-nano-2025-04-14"`

	TranscriptSource TranscriptSource `env:"TRANSCRIPT_SOURCE" envDefault:"speech"`
	ArticleConverter ArticleConverter `env:"ARTICLE_CONVERTER" envDefault:"llm"`
	FFmpegPath       string           `env:"FFMPEG_PATH"       envDefault:"ffmpeg"`
	HTTPTimeout      time.Duration    `env:"HTTP_TIMEOUT"      envDefault:"30s"`

	DBPath         string        `env:"DB_PATH"         envDefault:"smrz.sqlite"`
	UsageRetention time.Duration `env:"USAGE_RETENTION" envDefault:"720h"`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers  []int64 `env:"ALLOWED_USERS"`
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	for name, id := range map[string]string{
		"READABILITY_MODEL": c.ReadabilityModel,
		"ARTICLE_MODEL":     c.ArticleModel,
		"SUMMARY_MODEL":     c.SummaryModel,
		"METADATA_MODEL":    c.MetadataModel,
	} {
		if _, err := llm.Lookup(id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch c.TranscriptSource {
	case TranscriptSpeech, TranscriptCaptions:
	default:
		errs = append(errs, fmt.Errorf("TRANSCRIPT_SOURCE: unsupported value %q", c.TranscriptSource))
	}

	switch c.ArticleConverter {
	case ConverterLLM, ConverterLocal:
	default:
		errs = append(errs, fmt.Errorf("ARTICLE_CONVERTER: unsupported value %q", c.ArticleConverter))
	}

	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}

	if c.UsageRetention <= 0 {
		errs = append(errs, errors.New("USAGE_RETENTION must be positive"))
	}

	return errors.Join(errs...)
}
