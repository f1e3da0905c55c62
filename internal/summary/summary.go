package summary

import (
	"context"
	"fmt"
	"log/slog"

	"smrz/internal/llm"
	"smrz/internal/markdown"
	"smrz/internal/prompts"
)

const Temperature = 0.585

type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (*llm.Response, error)
}

type Summary struct {
	Markdown string
	Cost     float64
}

// Engine produces the fixed-format summary of extracted content.
type Engine struct {
	gen Generator
	log *slog.Logger
}

func New(gen Generator, log *slog.Logger) *Engine {
	return &Engine{gen: gen, log: log}
}

// Summarize returns the summary of content headed by title as a level one
// heading.
func (e *Engine) Summarize(ctx context.Context, title string, content string) (*Summary, error) {
	resp, err := e.gen.Generate(
		ctx,
		prompts.Summarize,
		"Summarize the following content: "+content,
		Temperature,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	e.log.InfoContext(ctx, "Content is summarized",
		"title", title,
		"contentLength", len(content),
		"summaryLength", len(resp.Content))

	return &Summary{
		Markdown: markdown.Normalize(fmt.Sprintf("# %s\n\n%s", title, resp.Content)),
		Cost:     resp.Cost,
	}, nil
}
