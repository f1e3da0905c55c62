package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"smrz/internal/domain"
	"smrz/internal/source"
)

type oEmbed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// YouTube reads video metadata through oEmbed. The published date comes from
// the watch page and is left empty when that page cannot be read.
func (c *Client) YouTube(ctx context.Context, videoURL string) (domain.VideoMetadata, error) {
	id, err := source.VideoID(videoURL)
	if err != nil {
		return domain.VideoMetadata{}, err
	}

	watchURL := "https://www.youtube.com/watch?v=" + id
	endpoint := fmt.Sprintf("%s/oembed?url=%s&format=json", c.youTubeBaseURL, url.QueryEscape(watchURL))

	var embed oEmbed
	if err = c.fetcher.JSON(ctx, endpoint, &embed); err != nil {
		return domain.VideoMetadata{}, err
	}

	meta := domain.VideoMetadata{
		Title:     strings.TrimSpace(embed.Title),
		Channel:   strings.TrimSpace(embed.AuthorName),
		Thumbnail: strings.TrimSpace(embed.ThumbnailURL),
	}

	pageURL := c.youTubeBaseURL + "/watch?v=" + id

	doc, err := c.fetcher.Document(ctx, pageURL)
	if err != nil {
		c.log.WarnContext(ctx, "Failed to fetch video page",
			"error", err,
			"videoID", id)

		return meta, nil
	}

	if published, ok := ParseDate(doc.Find("meta[itemprop='datePublished']").First().AttrOr("content", "")); ok {
		meta.PublishedDate = &published
	}

	return meta, nil
}
