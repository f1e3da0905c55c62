package metadata

import (
	"log/slog"
	"strings"

	"smrz/internal/fetch"
)

const defaultYouTubeBaseURL = "https://www.youtube.com"

// Client reads article and video metadata.
type Client struct {
	fetcher        *fetch.Fetcher
	youTubeBaseURL string
	log            *slog.Logger
}

type Option func(*Client)

// WithYouTubeBaseURL replaces the YouTube origin used for oEmbed and watch
// page lookups.
func WithYouTubeBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.youTubeBaseURL = strings.TrimRight(baseURL, "/")
	}
}

func New(fetcher *fetch.Fetcher, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		fetcher:        fetcher,
		youTubeBaseURL: defaultYouTubeBaseURL,
		log:            log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
