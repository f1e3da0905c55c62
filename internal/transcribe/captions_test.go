package transcribe_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"smrz/internal/retry"
	"smrz/internal/transcribe"
)

type flakySource struct {
	mu       sync.Mutex
	calls    int
	failures int
	segments []transcribe.Segment
}

func (s *flakySource) Captions(context.Context, string) ([]transcribe.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("captions service hiccup")
	}

	return s.segments, nil
}

func TestCaptionFetcherRetries(t *testing.T) {
	src := &flakySource{
		failures: 6,
		segments: []transcribe.Segment{{Text: "hello\nthere"}, {Text: " "}, {Text: "general  kenobi"}},
	}

	got, err := transcribe.NewCaptionFetcher(src).Transcript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "hello there general kenobi" {
		t.Fatalf("unexpected transcript: %q", got)
	}

	if src.calls != 7 {
		t.Fatalf("expected 7 calls, got %d", src.calls)
	}
}

func TestCaptionFetcherExhausted(t *testing.T) {
	src := &flakySource{failures: 100}

	_, err := transcribe.NewCaptionFetcher(src).Transcript(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, transcribe.ErrTranscriptUnavailable) {
		t.Fatalf("expected ErrTranscriptUnavailable, got %v", err)
	}

	if !errors.Is(err, retry.ErrExhausted) {
		t.Fatalf("expected retry.ErrExhausted, got %v", err)
	}

	if src.calls != transcribe.CaptionAttempts {
		t.Fatalf("expected %d calls, got %d", transcribe.CaptionAttempts, src.calls)
	}
}

func TestCaptionFetcherEmptyTrackIsRetried(t *testing.T) {
	src := &flakySource{segments: []transcribe.Segment{{Text: "  "}}}

	_, err := transcribe.NewCaptionFetcher(src).Transcript(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, transcribe.ErrTranscriptUnavailable) {
		t.Fatalf("expected ErrTranscriptUnavailable, got %v", err)
	}

	if src.calls != transcribe.CaptionAttempts {
		t.Fatalf("expected %d calls, got %d", transcribe.CaptionAttempts, src.calls)
	}
}
