package prompts

import (
	"embed"
	"strings"
)

//go:embed files/*.md
var files embed.FS

//nolint:gochecknoglobals // Loaded once from the embedded files.
var (
	// Summarize extracts a lead, ideas, recommendations and quotes.
	Summarize = mustRead("summarize.md")
	// ArticleToMarkdown converts sanitized article HTML to Markdown.
	ArticleToMarkdown = mustRead("article-to-markdown.md")
	// ImproveTranscript adds section headers to a transcript without rewording it.
	ImproveTranscript = mustRead("improve-transcript.md")
	// ArticleMetadata extracts structured metadata from article HTML.
	ArticleMetadata = mustRead("article-metadata.md")
)

func mustRead(name string) string {
	data, err := files.ReadFile("files/" + name)
	if err != nil {
		panic(err)
	}

	return strings.TrimSpace(string(data))
}
