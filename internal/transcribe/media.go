package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"smrz/internal/fetch"

	"github.com/kkdai/youtube/v2"
)

const defaultMediaName = "media"

// DirectSource downloads plain audio and video files.
type DirectSource struct {
	fetcher *fetch.Fetcher
}

func NewDirectSource(fetcher *fetch.Fetcher) *DirectSource {
	return &DirectSource{fetcher: fetcher}
}

func (s *DirectSource) Fetch(ctx context.Context, mediaURL string, dir string) (string, error) {
	dst := filepath.Join(dir, mediaFileName(mediaURL))

	if err := s.fetcher.Download(ctx, mediaURL, dst); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	return dst, nil
}

// YouTubeSource downloads the best audio stream of a YouTube video.
type YouTubeSource struct {
	client *youtube.Client
}

func NewYouTubeSource(client *youtube.Client) *YouTubeSource {
	return &YouTubeSource{client: client}
}

func (s *YouTubeSource) Fetch(ctx context.Context, videoURL string, dir string) (string, error) {
	video, err := s.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return "", fmt.Errorf("get video: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", errors.New("no audio formats available")
	}

	best := formats[0]
	for _, f := range formats {
		if f.Bitrate > best.Bitrate {
			best = f
		}
	}

	stream, _, err := s.client.GetStreamContext(ctx, video, &best)
	if err != nil {
		return "", fmt.Errorf("get stream: %w", err)
	}
	defer stream.Close()

	dst := filepath.Join(dir, "youtube_"+video.ID)

	file, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err = io.Copy(file, stream); err != nil {
		return "", errors.Join(fmt.Errorf("copy stream: %w", err), file.Close())
	}

	if err = file.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return dst, nil
}

func mediaFileName(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return defaultMediaName
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return defaultMediaName
	}

	return name
}
