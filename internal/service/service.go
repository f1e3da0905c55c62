package service

import (
	"context"
	"log/slog"
	"time"

	"smrz/internal/domain"
	"smrz/internal/summary"
)

type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*domain.Content, error)
	Metadata(ctx context.Context, rawURL string) (domain.Metadata, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, title string, content string) (*summary.Summary, error)
}

// Result is the outcome of one request. Summary is empty when only the
// content was asked for.
type Result struct {
	Metadata domain.Metadata `json:"metadata"`
	Content  string          `json:"content"`
	Summary  string          `json:"summary,omitempty"`
	Cost     float64         `json:"cost"`
}

// Service runs the extraction and summary pipeline shared by the HTTP server
// and the bot.
type Service struct {
	extractor  Extractor
	summarizer Summarizer
	log        *slog.Logger
}

func New(extractor Extractor, summarizer Summarizer, log *slog.Logger) *Service {
	return &Service{
		extractor:  extractor,
		summarizer: summarizer,
		log:        log,
	}
}

// Summarize extracts the content behind rawURL and summarizes it.
func (s *Service) Summarize(ctx context.Context, rawURL string) (*Result, error) {
	start := time.Now()

	content, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to extract content",
			"error", err,
			"url", rawURL)

		return nil, err
	}

	sum, err := s.summarizer.Summarize(ctx, content.Metadata.DisplayTitle(), content.Markdown)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to summarize content",
			"error", err,
			"url", rawURL)

		return nil, err
	}

	result := &Result{
		Metadata: content.Metadata,
		Content:  content.Markdown,
		Summary:  sum.Markdown,
		Cost:     content.Cost + sum.Cost,
	}

	s.log.InfoContext(ctx, "Request is completed",
		"url", rawURL,
		"kind", content.Kind.String(),
		"cost", result.Cost,
		"elapsed", time.Since(start))

	return result, nil
}

// Markdown extracts the content behind rawURL without summarizing it.
func (s *Service) Markdown(ctx context.Context, rawURL string) (*Result, error) {
	content, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to extract content",
			"error", err,
			"url", rawURL)

		return nil, err
	}

	return &Result{
		Metadata: content.Metadata,
		Content:  content.Markdown,
		Cost:     content.Cost,
	}, nil
}

func (s *Service) Metadata(ctx context.Context, rawURL string) (domain.Metadata, error) {
	meta, err := s.extractor.Metadata(ctx, rawURL)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to read metadata",
			"error", err,
			"url", rawURL)

		return nil, err
	}

	return meta, nil
}
