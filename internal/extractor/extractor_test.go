package extractor_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"smrz/internal/domain"
	"smrz/internal/extractor"
	"smrz/internal/fetch"
	"smrz/internal/llm"
)

type stubHTML struct {
	html string
	err  error
}

func (s *stubHTML) CleanHTML(context.Context, string) (string, error) {
	return s.html, s.err
}

type stubMetadata struct {
	mu           sync.Mutex
	articleCalls int
	youTubeCalls int
	article      domain.ArticleMetadata
	video        domain.VideoMetadata
	err          error
}

func (s *stubMetadata) Article(context.Context, string) (domain.ArticleMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.articleCalls++

	return s.article, s.err
}

func (s *stubMetadata) YouTube(context.Context, string) (domain.VideoMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.youTubeCalls++

	return s.video, s.err
}

type stubMedia struct {
	mu    sync.Mutex
	calls int
	url   string
	kind  domain.SourceKind
	text  string
	err   error
}

func (s *stubMedia) Transcribe(_ context.Context, mediaURL string, kind domain.SourceKind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.url = mediaURL
	s.kind = kind

	return s.text, s.err
}

type stubCaptions struct {
	mu      sync.Mutex
	calls   int
	videoID string
	text    string
}

func (s *stubCaptions) Transcript(_ context.Context, videoID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.videoID = videoID

	return s.text, nil
}

type stubGenerator struct {
	mu          sync.Mutex
	calls       int
	userPrompt  string
	temperature float64
	content     string
	cost        float64
	err         error
}

func (s *stubGenerator) Generate(_ context.Context, _ string, userPrompt string, temperature float64) (*llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.userPrompt = userPrompt
	s.temperature = temperature

	if s.err != nil {
		return nil, s.err
	}

	return &llm.Response{Content: s.content, Cost: s.cost}, nil
}

func (s *stubGenerator) GenerateStructured(
	ctx context.Context,
	systemPrompt string,
	userPrompt string,
	temperature float64,
	out any,
) (*llm.Response, error) {
	resp, err := s.Generate(ctx, systemPrompt, userPrompt, temperature)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal([]byte(resp.Content), out); err != nil {
		return nil, err
	}

	return resp, nil
}

func newExtractor(deps extractor.Deps) *extractor.Extractor {
	return extractor.New(deps, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtractArticleWithModel(t *testing.T) {
	meta := &stubMetadata{article: domain.ArticleMetadata{Title: "Go Memory Model"}}
	article := &stubGenerator{content: "# Go Memory Model\n\n\n\nBody text.\n", cost: 1.5}

	e := newExtractor(extractor.Deps{
		HTML:     &stubHTML{html: "<h1>Go Memory Model</h1><p>Body text.</p>"},
		Metadata: meta,
		Article:  article,
	})

	content, err := e.Extract(context.Background(), "https://go.dev/ref/mem")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if content.Kind != domain.KindArticle {
		t.Fatalf("Kind = %v, want article", content.Kind)
	}

	if content.Markdown != "# Go Memory Model\n\nBody text." {
		t.Fatalf("Markdown = %q", content.Markdown)
	}

	if content.Cost != 1.5 {
		t.Fatalf("Cost = %v, want 1.5", content.Cost)
	}

	if article.temperature != extractor.ArticleTemperature {
		t.Fatalf("temperature = %v, want %v", article.temperature, extractor.ArticleTemperature)
	}

	if !strings.Contains(article.userPrompt, "https://go.dev/ref/mem") ||
		!strings.Contains(article.userPrompt, "<p>Body text.</p>") {
		t.Fatalf("user prompt misses url or html: %q", article.userPrompt)
	}

	if content.Metadata.DisplayTitle() != "Go Memory Model" {
		t.Fatalf("title = %q", content.Metadata.DisplayTitle())
	}
}

func TestExtractArticleLocally(t *testing.T) {
	e := newExtractor(extractor.Deps{
		HTML:     &stubHTML{html: "<h1>Hello</h1>\n<p>World</p>"},
		Metadata: &stubMetadata{article: domain.ArticleMetadata{Title: "Hello"}},
	})

	content, err := e.Extract(context.Background(), "https://example.com/hello")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if content.Markdown != "# Hello\n\nWorld" {
		t.Fatalf("Markdown = %q", content.Markdown)
	}

	if content.Cost != 0 {
		t.Fatalf("Cost = %v, want 0", content.Cost)
	}
}

func TestExtractYouTubeWithCaptions(t *testing.T) {
	captions := &stubCaptions{text: "so um today we talk about go"}
	media := &stubMedia{}
	readability := &stubGenerator{content: "Today we talk about Go.", cost: 0.25}
	meta := &stubMetadata{video: domain.VideoMetadata{Title: "Go talk", Channel: "gophers"}}

	e := newExtractor(extractor.Deps{
		Metadata:    meta,
		Media:       media,
		Captions:    captions,
		Readability: readability,
	})

	content, err := e.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if captions.videoID != "dQw4w9WgXcQ" {
		t.Fatalf("videoID = %q", captions.videoID)
	}

	if media.calls != 0 {
		t.Fatalf("media calls = %d, want 0", media.calls)
	}

	if readability.temperature != extractor.ReadabilityTemperature {
		t.Fatalf("temperature = %v, want %v", readability.temperature, extractor.ReadabilityTemperature)
	}

	if readability.userPrompt != "Improve the readability of the following video transcript: so um today we talk about go" {
		t.Fatalf("user prompt = %q", readability.userPrompt)
	}

	if content.Markdown != "Today we talk about Go." || content.Kind != domain.KindYouTube {
		t.Fatalf("content = %+v", content)
	}

	if meta.youTubeCalls != 1 || meta.articleCalls != 0 {
		t.Fatalf("metadata calls youtube=%d article=%d", meta.youTubeCalls, meta.articleCalls)
	}
}

func TestExtractYouTubeWithSpeech(t *testing.T) {
	media := &stubMedia{text: "hello"}

	e := newExtractor(extractor.Deps{
		Metadata:    &stubMetadata{video: domain.VideoMetadata{Title: "t"}},
		Media:       media,
		Readability: &stubGenerator{content: "Hello."},
	})

	if _, err := e.Extract(context.Background(), "https://www.youtube.com/shorts/dQw4w9WgXcQ?feature=share"); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if media.url != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("media url = %q", media.url)
	}

	if media.kind != domain.KindYouTube {
		t.Fatalf("media kind = %v", media.kind)
	}
}

func TestExtractDirectAudio(t *testing.T) {
	media := &stubMedia{text: "episode text"}
	meta := &stubMetadata{}

	e := newExtractor(extractor.Deps{
		Metadata:    meta,
		Media:       media,
		Readability: &stubGenerator{content: "Episode text."},
	})

	content, err := e.Extract(context.Background(), "https://cdn.example.com/pod/Episode-12.MP3")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if content.Kind != domain.KindDirectAudio || media.kind != domain.KindDirectAudio {
		t.Fatalf("kind = %v, media kind = %v", content.Kind, media.kind)
	}

	if content.Metadata.DisplayTitle() != "Episode-12.MP3" {
		t.Fatalf("title = %q", content.Metadata.DisplayTitle())
	}

	if meta.articleCalls != 0 || meta.youTubeCalls != 0 {
		t.Fatal("metadata source must not be called for direct media")
	}
}

func TestExtractFetchFailureAborts(t *testing.T) {
	article := &stubGenerator{content: "unused"}
	fetchErr := &fetch.Error{URL: "https://example.com", StatusCode: 404}

	e := newExtractor(extractor.Deps{
		HTML:     &stubHTML{err: fetchErr},
		Metadata: &stubMetadata{article: domain.ArticleMetadata{Title: "t"}},
		Article:  article,
	})

	content, err := e.Extract(context.Background(), "https://example.com")
	if !errors.Is(err, fetch.ErrFetch) {
		t.Fatalf("error = %v, want ErrFetch", err)
	}

	if content != nil {
		t.Fatalf("content = %+v, want nil", content)
	}

	if article.calls != 0 {
		t.Fatalf("article calls = %d, want 0", article.calls)
	}
}

func TestExtractMetadataFailureAborts(t *testing.T) {
	e := newExtractor(extractor.Deps{
		HTML:     &stubHTML{html: "<p>x</p>"},
		Metadata: &stubMetadata{err: fetch.ErrFetch},
	})

	if _, err := e.Extract(context.Background(), "https://example.com"); !errors.Is(err, fetch.ErrFetch) {
		t.Fatalf("error = %v, want ErrFetch", err)
	}
}

func TestExtractGenerationFailureAborts(t *testing.T) {
	e := newExtractor(extractor.Deps{
		Metadata:    &stubMetadata{},
		Media:       &stubMedia{text: "x"},
		Readability: &stubGenerator{err: llm.ErrGenerationFailed},
	})

	if _, err := e.Extract(context.Background(), "https://example.com/a.wav"); !errors.Is(err, llm.ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}
}

func TestExtractFillsMissingTitleFromModel(t *testing.T) {
	model := &stubGenerator{
		content: `{"title":"Recovered","author":"Ann","published_date":"2024-03-01","favicon":"","meta_image":""}`,
		cost:    0.1,
	}

	e := newExtractor(extractor.Deps{
		HTML:          &stubHTML{html: "<p>x</p>"},
		Metadata:      &stubMetadata{article: domain.ArticleMetadata{Author: "Page Author"}},
		MetadataModel: model,
	})

	content, err := e.Extract(context.Background(), "https://example.com/post")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	meta, ok := content.Metadata.(domain.ArticleMetadata)
	if !ok {
		t.Fatalf("metadata type = %T", content.Metadata)
	}

	if meta.Title != "Recovered" {
		t.Fatalf("Title = %q", meta.Title)
	}

	if meta.Author != "Page Author" {
		t.Fatalf("Author = %q, page value must win", meta.Author)
	}

	if meta.PublishedDate == nil || meta.PublishedDate.Year() != 2024 {
		t.Fatalf("PublishedDate = %v", meta.PublishedDate)
	}

	if content.Cost != 0.1 {
		t.Fatalf("Cost = %v, want 0.1", content.Cost)
	}
}

func TestExtractFillsMissingAuthorWhenTitleIsDeclared(t *testing.T) {
	published := time.Date(2023, time.May, 4, 0, 0, 0, 0, time.UTC)
	model := &stubGenerator{
		content: `{"title":"Model Title","author":"Ann","published_date":"","favicon":"","meta_image":""}`,
		cost:    0.2,
	}

	e := newExtractor(extractor.Deps{
		HTML: &stubHTML{html: "<p>x</p>"},
		Metadata: &stubMetadata{article: domain.ArticleMetadata{
			Title:         "Page Title",
			PublishedDate: &published,
			MetaImage:     "https://example.com/cover.png",
		}},
		MetadataModel: model,
	})

	content, err := e.Extract(context.Background(), "https://example.com/post")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	meta := content.Metadata.(domain.ArticleMetadata)

	if model.calls != 1 {
		t.Fatalf("metadata model calls = %d, want 1", model.calls)
	}

	if meta.Title != "Page Title" {
		t.Fatalf("Title = %q, page value must win", meta.Title)
	}

	if meta.Author != "Ann" {
		t.Fatalf("Author = %q, want %q", meta.Author, "Ann")
	}

	if meta.PublishedDate == nil || !meta.PublishedDate.Equal(published) {
		t.Fatalf("PublishedDate = %v, want %v", meta.PublishedDate, published)
	}

	if content.Cost != 0.2 {
		t.Fatalf("Cost = %v, want 0.2", content.Cost)
	}
}

func TestExtractSkipsModelForCompleteMetadata(t *testing.T) {
	published := time.Date(2023, time.May, 4, 0, 0, 0, 0, time.UTC)
	model := &stubGenerator{content: `{"title":"Model Title"}`}

	e := newExtractor(extractor.Deps{
		HTML: &stubHTML{html: "<p>x</p>"},
		Metadata: &stubMetadata{article: domain.ArticleMetadata{
			Title:         "Page Title",
			Author:        "Page Author",
			PublishedDate: &published,
			MetaImage:     "https://example.com/cover.png",
		}},
		MetadataModel: model,
	})

	content, err := e.Extract(context.Background(), "https://example.com/post")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if model.calls != 0 {
		t.Fatalf("metadata model calls = %d, want 0", model.calls)
	}

	if content.Cost != 0 {
		t.Fatalf("Cost = %v, want 0", content.Cost)
	}
}

func TestExtractTitleFallsBackToURL(t *testing.T) {
	e := newExtractor(extractor.Deps{
		HTML:          &stubHTML{html: "<p>x</p>"},
		Metadata:      &stubMetadata{},
		MetadataModel: &stubGenerator{err: llm.ErrUnsupportedForProvider},
	})

	content, err := e.Extract(context.Background(), "https://example.com/post")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if content.Metadata.DisplayTitle() != "https://example.com/post" {
		t.Fatalf("title = %q", content.Metadata.DisplayTitle())
	}
}
