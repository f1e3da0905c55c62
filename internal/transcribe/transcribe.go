package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"smrz/internal/domain"
)

const (
	Language = "en"

	audioFileName = "audio.wav"
)

var (
	ErrTranscription         = errors.New("transcription failed")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
)

// MediaSource stores the media behind a URL inside dir and returns the file
// path.
type MediaSource interface {
	Fetch(ctx context.Context, mediaURL string, dir string) (string, error)
}

// AudioExtractor converts any media file to mono 16 kHz PCM16 WAV.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, inPath string, outPath string) error
}

// SpeechToText turns an audio file into text.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string, language string) (string, error)
}

// Transcriber turns audio and video URLs into raw transcripts.
type Transcriber struct {
	direct  MediaSource
	youTube MediaSource
	audio   AudioExtractor
	speech  SpeechToText
	tempDir string
	log     *slog.Logger
}

// New creates a Transcriber. Temporary files live below tempDir, or the
// system default when tempDir is empty.
func New(
	direct MediaSource,
	youTube MediaSource,
	audio AudioExtractor,
	speech SpeechToText,
	tempDir string,
	log *slog.Logger,
) *Transcriber {
	return &Transcriber{
		direct:  direct,
		youTube: youTube,
		audio:   audio,
		speech:  speech,
		tempDir: tempDir,
		log:     log,
	}
}

// Transcribe downloads the media, extracts its audio track and runs speech
// to text. Every temporary file is removed before Transcribe returns.
func (t *Transcriber) Transcribe(ctx context.Context, mediaURL string, kind domain.SourceKind) (string, error) {
	var src MediaSource

	switch kind {
	case domain.KindYouTube:
		src = t.youTube
	case domain.KindDirectAudio, domain.KindDirectVideo:
		src = t.direct
	default:
		return "", fmt.Errorf("%w: %s is not a media source", ErrTranscription, kind)
	}

	dir, err := os.MkdirTemp(t.tempDir, "smrz-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp dir: %w", ErrTranscription, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			t.log.ErrorContext(ctx, "Failed to remove temp dir",
				"error", err,
				"dir", dir)
		}
	}()

	mediaPath, err := src.Fetch(ctx, mediaURL, dir)
	if err != nil {
		return "", fmt.Errorf("%w: fetch media: %w", ErrTranscription, err)
	}

	audioPath := filepath.Join(dir, audioFileName)
	if err = t.audio.ExtractAudio(ctx, mediaPath, audioPath); err != nil {
		return "", fmt.Errorf("%w: extract audio: %w", ErrTranscription, err)
	}

	text, err := t.speech.Transcribe(ctx, audioPath, Language)
	if err != nil {
		return "", fmt.Errorf("%w: speech to text: %w", ErrTranscription, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: speech to text returned no text", ErrTranscription)
	}

	t.log.InfoContext(ctx, "Media is transcribed",
		"url", mediaURL,
		"kind", kind.String(),
		"characters", len(text))

	return text, nil
}
