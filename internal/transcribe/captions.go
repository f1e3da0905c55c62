package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smrz/internal/retry"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
)

// CaptionAttempts bounds the calls to the captions service for one video.
const CaptionAttempts = 7

var errEmptyCaptions = errors.New("caption track is empty")

// Segment is one caption line.
type Segment struct {
	Text string
}

// CaptionSource returns the caption track of a video in order.
type CaptionSource interface {
	Captions(ctx context.Context, videoID string) ([]Segment, error)
}

// YouTubeCaptions reads captions through the public transcript endpoints.
type YouTubeCaptions struct {
	api       *ytapi.YouTubeTranscriptApi
	languages []string
}

func NewYouTubeCaptions() *YouTubeCaptions {
	return &YouTubeCaptions{
		api:       ytapi.NewYouTubeTranscriptApi(),
		languages: []string{"en", "en-US", "en-GB"},
	}
}

func (c *YouTubeCaptions) Captions(_ context.Context, videoID string) ([]Segment, error) {
	transcript, err := c.api.GetTranscript(videoID, c.languages)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}

	segments := make([]Segment, 0, len(transcript.Entries))
	for _, entry := range transcript.Entries {
		segments = append(segments, Segment{Text: entry.Text})
	}

	return segments, nil
}

// CaptionFetcher joins caption tracks into transcripts, retrying the flaky
// captions service a bounded number of times.
type CaptionFetcher struct {
	source   CaptionSource
	attempts int
}

func NewCaptionFetcher(source CaptionSource) *CaptionFetcher {
	return &CaptionFetcher{source: source, attempts: CaptionAttempts}
}

// Transcript returns the captions of the video as one line of text.
func (f *CaptionFetcher) Transcript(ctx context.Context, videoID string) (string, error) {
	text, err := retry.Do(ctx, f.attempts, func(ctx context.Context) (string, error) {
		segments, err := f.source.Captions(ctx, videoID)
		if err != nil {
			return "", err
		}

		text := JoinSegments(segments)
		if text == "" {
			return "", errEmptyCaptions
		}

		return text, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: video %s: %w", ErrTranscriptUnavailable, videoID, err)
	}

	return text, nil
}

// JoinSegments joins caption texts with single spaces.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))

	for _, s := range segments {
		text := strings.Join(strings.Fields(s.Text), " ")
		if text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " ")
}
