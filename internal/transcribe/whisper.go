package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Whisper runs speech to text through the OpenAI transcription API.
type Whisper struct {
	client openai.Client
}

func NewWhisper(apiKey string, httpClient *http.Client, opts ...option.RequestOption) *Whisper {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}, opts...)

	return &Whisper{client: openai.NewClient(opts...)}
}

func (w *Whisper) Transcribe(ctx context.Context, audioPath string, language string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     file,
		Model:    openai.AudioModelWhisper1,
		Language: openai.String(language),
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	return resp.Text, nil
}
