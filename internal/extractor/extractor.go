package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"sync"

	"smrz/internal/domain"
	"smrz/internal/llm"
	"smrz/internal/markdown"
	"smrz/internal/prompts"
	"smrz/internal/source"
)

const (
	ReadabilityTemperature = 0.825
	ArticleTemperature     = 0.585
)

// Generator is a model bound to one task.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (*llm.Response, error)
}

// StructuredGenerator is a model that answers with JSON decoded into out.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, temperature float64, out any) (*llm.Response, error)
}

type HTMLSource interface {
	CleanHTML(ctx context.Context, pageURL string) (string, error)
}

type MetadataSource interface {
	Article(ctx context.Context, pageURL string) (domain.ArticleMetadata, error)
	YouTube(ctx context.Context, videoURL string) (domain.VideoMetadata, error)
}

type MediaTranscriber interface {
	Transcribe(ctx context.Context, mediaURL string, kind domain.SourceKind) (string, error)
}

type CaptionTranscriber interface {
	Transcript(ctx context.Context, videoID string) (string, error)
}

// Deps are the collaborators of an Extractor. Captions, Article and
// MetadataModel are optional: without Captions videos are transcribed from
// audio, without Article pages are converted locally and without
// MetadataModel missing article metadata stays empty.
type Deps struct {
	HTML          HTMLSource
	Metadata      MetadataSource
	Media         MediaTranscriber
	Captions      CaptionTranscriber
	Readability   Generator
	Article       Generator
	MetadataModel StructuredGenerator
}

// Extractor turns a URL into normalized Markdown and metadata.
type Extractor struct {
	deps Deps
	log  *slog.Logger
}

func New(deps Deps, log *slog.Logger) *Extractor {
	return &Extractor{deps: deps, log: log}
}

type body struct {
	markdown string
	html     string
	cost     float64
}

// Extract runs the pipeline for one URL. Metadata is read while the body is
// produced. Any failure aborts the whole extraction.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*domain.Content, error) {
	kind := source.Classify(rawURL)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		meta    domain.Metadata
		metaErr error
	)

	wg.Go(func() {
		meta, metaErr = e.Metadata(ctx, rawURL)
	})

	b, err := e.body(ctx, rawURL, kind)
	if err != nil {
		cancel()
	}

	wg.Wait()

	if err != nil {
		return nil, err
	}

	if metaErr != nil {
		return nil, fmt.Errorf("read metadata: %w", metaErr)
	}

	if article, ok := meta.(domain.ArticleMetadata); ok {
		var cost float64
		article, cost = e.completeArticleMetadata(ctx, rawURL, b.html, article)
		b.cost += cost
		meta = article
	}

	e.log.InfoContext(ctx, "Content is extracted",
		"url", rawURL,
		"kind", kind.String(),
		"title", meta.DisplayTitle(),
		"cost", b.cost)

	return &domain.Content{
		Kind:     kind,
		URL:      rawURL,
		Metadata: meta,
		Markdown: b.markdown,
		Cost:     b.cost,
	}, nil
}

// Metadata reads the metadata of a URL without any model assistance.
func (e *Extractor) Metadata(ctx context.Context, rawURL string) (domain.Metadata, error) {
	switch kind := source.Classify(rawURL); kind {
	case domain.KindYouTube:
		return e.deps.Metadata.YouTube(ctx, rawURL)
	case domain.KindDirectAudio, domain.KindDirectVideo:
		return domain.VideoMetadata{Title: mediaTitle(rawURL)}, nil
	default:
		return e.deps.Metadata.Article(ctx, rawURL)
	}
}

func (e *Extractor) body(ctx context.Context, rawURL string, kind domain.SourceKind) (body, error) {
	if kind.IsMedia() {
		return e.mediaBody(ctx, rawURL, kind)
	}

	return e.articleBody(ctx, rawURL)
}

func (e *Extractor) mediaBody(ctx context.Context, rawURL string, kind domain.SourceKind) (body, error) {
	transcript, err := e.transcript(ctx, rawURL, kind)
	if err != nil {
		return body{}, err
	}

	resp, err := e.deps.Readability.Generate(
		ctx,
		prompts.ImproveTranscript,
		"Improve the readability of the following video transcript: "+transcript,
		ReadabilityTemperature,
	)
	if err != nil {
		return body{}, fmt.Errorf("improve transcript readability: %w", err)
	}

	return body{markdown: markdown.Normalize(resp.Content), cost: resp.Cost}, nil
}

func (e *Extractor) transcript(ctx context.Context, rawURL string, kind domain.SourceKind) (string, error) {
	if kind != domain.KindYouTube {
		return e.deps.Media.Transcribe(ctx, rawURL, kind)
	}

	id, err := source.VideoID(rawURL)
	if err != nil {
		return "", err
	}

	if e.deps.Captions != nil {
		return e.deps.Captions.Transcript(ctx, id)
	}

	watchURL, err := source.NormalizeYouTubeURL(rawURL)
	if err != nil {
		return "", err
	}

	return e.deps.Media.Transcribe(ctx, watchURL, kind)
}

func (e *Extractor) articleBody(ctx context.Context, rawURL string) (body, error) {
	html, err := e.deps.HTML.CleanHTML(ctx, rawURL)
	if err != nil {
		return body{}, err
	}

	if e.deps.Article == nil {
		md, err := ConvertLocally(html, rawURL)
		if err != nil {
			return body{}, err
		}

		return body{markdown: markdown.Normalize(md), html: html}, nil
	}

	resp, err := e.deps.Article.Generate(
		ctx,
		prompts.ArticleToMarkdown,
		fmt.Sprintf("Convert the following article to markdown.\n\nURL: %s\n\n%s", rawURL, html),
		ArticleTemperature,
	)
	if err != nil {
		return body{}, fmt.Errorf("convert article to markdown: %w", err)
	}

	return body{markdown: markdown.Normalize(resp.Content), html: html, cost: resp.Cost}, nil
}

func mediaTitle(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if name := path.Base(u.Path); name != "." && name != "/" {
		return name
	}

	return rawURL
}
