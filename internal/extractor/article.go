package extractor

import (
	"context"
	"fmt"
	"strings"

	"smrz/internal/domain"
	"smrz/internal/llm"
	"smrz/internal/metadata"
	"smrz/internal/prompts"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

// modelArticleMetadata is the answer schema of the metadata model.
type modelArticleMetadata struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	PublishedDate string `json:"published_date"`
	Favicon       string `json:"favicon"`
	MetaImage     string `json:"meta_image"`
}

// ConvertLocally converts sanitized HTML to Markdown without a model.
func ConvertLocally(html string, pageURL string) (string, error) {
	md, err := htmltomarkdown.ConvertString(html, converter.WithDomain(pageURL))
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}

	return md, nil
}

// completeArticleMetadata asks the metadata model for the fields a page does
// not declare. Page values always win. Failures leave the fields empty and the
// title falls back to the URL.
func (e *Extractor) completeArticleMetadata(
	ctx context.Context,
	pageURL string,
	html string,
	meta domain.ArticleMetadata,
) (domain.ArticleMetadata, float64) {
	var cost float64

	if e.deps.MetadataModel != nil && html != "" && incomplete(meta) {
		var extracted modelArticleMetadata

		resp, err := e.deps.MetadataModel.GenerateStructured(
			ctx,
			prompts.ArticleMetadata,
			fmt.Sprintf("Extract metadata from the following article.\n\nURL: %s\n\n%s", pageURL, html),
			llm.DefaultTemperature,
			&extracted,
		)
		if err != nil {
			e.log.WarnContext(ctx, "Failed to extract article metadata with model",
				"error", err,
				"url", pageURL)
		} else {
			cost = resp.Cost
			meta = mergeArticleMetadata(meta, extracted)
		}
	}

	if meta.Title == "" {
		meta.Title = pageURL
	}

	return meta, cost
}

func incomplete(meta domain.ArticleMetadata) bool {
	return meta.Title == "" || meta.Author == "" || meta.PublishedDate == nil || meta.MetaImage == ""
}

func mergeArticleMetadata(meta domain.ArticleMetadata, extracted modelArticleMetadata) domain.ArticleMetadata {
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(extracted.Title)
	}

	if meta.Author == "" {
		meta.Author = strings.TrimSpace(extracted.Author)
	}

	if meta.PublishedDate == nil {
		if published, ok := metadata.ParseDate(extracted.PublishedDate); ok {
			meta.PublishedDate = &published
		}
	}

	if meta.Favicon == "" {
		meta.Favicon = strings.TrimSpace(extracted.Favicon)
	}

	if meta.MetaImage == "" {
		meta.MetaImage = strings.TrimSpace(extracted.MetaImage)
	}

	return meta
}
